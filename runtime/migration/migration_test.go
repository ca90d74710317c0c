package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStrategy struct {
	name  string
	err   error
	order *[]string
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Migrate(context.Context) error {
	*f.order = append(*f.order, f.name)
	return f.err
}

func TestRunner_RunsInOrder(t *testing.T) {
	var order []string
	r := NewRunner(nil,
		&fakeStrategy{name: "schema", order: &order},
		&fakeStrategy{name: "seed", order: &order},
	)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, []string{"schema", "seed"}, order)
}

func TestRunner_StopsOnFailure(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	r := NewRunner(nil,
		&fakeStrategy{name: "schema", err: boom, order: &order},
		&fakeStrategy{name: "seed", order: &order},
	)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"schema"}, order)
}

func TestRunner_NilSafe(t *testing.T) {
	var r *Runner
	require.NoError(t, r.Run(context.Background()))
	require.NoError(t, NewRunner(nil).Run(context.Background()))
}

func TestEntStrategy_NilFn(t *testing.T) {
	require.NoError(t, NewEntStrategy(nil).Migrate(context.Background()))
}

func TestRunner_HonorsContext(t *testing.T) {
	var order []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(nil, &fakeStrategy{name: "schema", order: &order})
	require.Error(t, r.Run(ctx))
	require.Empty(t, order)
}
