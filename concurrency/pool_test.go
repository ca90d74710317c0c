package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(4, 16)
	var done int64

	for i := 0; i < 10; i++ {
		err := p.SubmitWait(context.Background(), func(ctx context.Context) error {
			atomic.AddInt64(&done, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("SubmitWait: %v", err)
		}
	}

	p.Close()
	if got := atomic.LoadInt64(&done); got != 10 {
		t.Errorf("done = %d, want 10", got)
	}
}

func TestPool_CollectsErrors(t *testing.T) {
	p := NewPool(2, 8)
	fail := errors.New("resize failed")

	p.SubmitWait(context.Background(), func(ctx context.Context) error { return fail })
	p.SubmitWait(context.Background(), func(ctx context.Context) error { return nil })
	p.Close()

	errs := p.Errors()
	if len(errs) != 1 || !errors.Is(errs[0], fail) {
		t.Errorf("errs = %v", errs)
	}
	if leftover := p.Errors(); len(leftover) != 0 {
		t.Errorf("Errors must drain, got %v", leftover)
	}
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := NewPool(1, 1)
	p.Close()

	if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("err = %v, want ErrPoolClosed", err)
	}
}

func TestPool_QueueFull(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Close()

	block := make(chan struct{})
	// Occupy the single worker, then fill the single queue slot.
	p.Submit(func(ctx context.Context) error { <-block; return nil })

	var queued error
	for i := 0; i < 50; i++ {
		queued = p.Submit(func(ctx context.Context) error { return nil })
		if errors.Is(queued, ErrQueueFull) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(block)

	if !errors.Is(queued, ErrQueueFull) {
		t.Errorf("err = %v, want ErrQueueFull", queued)
	}
}

func TestPool_CloseIdempotent(t *testing.T) {
	p := NewPool(1, 1)
	p.Close()
	p.Close()
}
