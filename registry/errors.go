package registry

import (
	"errors"
	"fmt"
)

// RouteNotFoundError reports a dispatch miss. It is expected during
// normal operation and never fatal.
type RouteNotFoundError struct {
	Method string
	Path   string
}

func (e *RouteNotFoundError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("ui route not found: %s", e.Path)
	}
	return fmt.Sprintf("route not found: %s %s", e.Method, e.Path)
}

// HandlerFailureError wraps an error raised by a plugin's handler during
// invocation, attributing the failure to the owning plugin. The registry
// never recovers it; the caller decides.
type HandlerFailureError struct {
	Plugin string
	Err    error
}

func (e *HandlerFailureError) Error() string {
	return fmt.Sprintf("plugin %q handler failed: %v", e.Plugin, e.Err)
}

func (e *HandlerFailureError) Unwrap() error {
	return e.Err
}

// MalformedPatternError reports a route pattern that could not be parsed
// into method and subpath during a rebuild. The entry is skipped; the
// rest of the rebuild proceeds.
type MalformedPatternError struct {
	Plugin  string
	Pattern string
	Reason  string
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("plugin %q: malformed route pattern %q: %s", e.Plugin, e.Pattern, e.Reason)
}

// IsNotFound reports whether err is a dispatch miss.
func IsNotFound(err error) bool {
	var nf *RouteNotFoundError
	return errors.As(err, &nf)
}

// AsHandlerFailure extracts a handler failure from err, if any.
func AsHandlerFailure(err error) (*HandlerFailureError, bool) {
	var hf *HandlerFailureError
	ok := errors.As(err, &hf)
	return hf, ok
}
