package utils

import (
	"fmt"
	"runtime/debug"
)

func genErr(e error, stack []byte) error {
	return fmt.Errorf("error: %v\nstack:\n%s", e, stack)
}

// Panic unwraps a (value, error) pair, panicking with a stack trace on error.
// Intended for wiring code where an error is unrecoverable.
func Panic[T any](res T, err error) T {
	if err != nil {
		panic(genErr(err, debug.Stack()))
	}
	return res
}

func PanicVoid(err error) {
	if err != nil {
		panic(genErr(err, debug.Stack()))
	}
}
