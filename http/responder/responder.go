// Package responder writes the panel's uniform JSON envelope. Every
// endpoint, including dispatched plugin routes, goes through it so
// clients see one response shape.
package responder

import (
	"net/http"

	"github.com/billforge/panel/json"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		fallback := []byte(`{"error":{"code":5000,"message":"encode failed"}}`)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(fallback)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(raw)
}

// Write sends a success response with data.
func Write(w http.ResponseWriter, r *http.Request, status int, data any, opts ...Option) {
	meta := NewMeta(opts...)
	res := &Response{
		Data: data,
		Meta: *meta,
	}
	writeJSON(w, status, res)
}

// WriteError sends an error response.
func WriteError(w http.ResponseWriter, r *http.Request, status int, err Error, opts ...Option) {
	meta := NewMeta(opts...)
	res := &Response{
		Error: &err,
		Meta:  *meta,
	}
	writeJSON(w, status, res)
}

// OK responds with 200 OK and data.
func OK(w http.ResponseWriter, r *http.Request, data any, opts ...Option) {
	Write(w, r, http.StatusOK, data, opts...)
}

// Created responds with 201 Created and data.
func Created(w http.ResponseWriter, r *http.Request, data any, opts ...Option) {
	Write(w, r, http.StatusCreated, data, opts...)
}

// NoContent responds with 204 No Content.
func NoContent(w http.ResponseWriter, r *http.Request, opts ...Option) {
	meta := NewMeta(opts...)
	if meta.TraceId != "" {
		w.Header().Set("X-Trace-ID", meta.TraceId)
	}
	w.WriteHeader(http.StatusNoContent)
}

// BadRequest responds with 400 Bad Request.
func BadRequest(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrBadRequest
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusBadRequest, err, opts...)
}

// Unauthorized responds with 401 Unauthorized.
func Unauthorized(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrUnauthorized
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusUnauthorized, err, opts...)
}

// Forbidden responds with 403 Forbidden.
func Forbidden(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrForbidden
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusForbidden, err, opts...)
}

// NotFound responds with 404 Not Found.
func NotFound(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrNotFound
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusNotFound, err, opts...)
}

// RouteNotFound responds with 404 for unresolved dispatch paths.
func RouteNotFound(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrRouteNotFound
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusNotFound, err, opts...)
}

// PluginNotFound responds with 404 for unknown plugin identifiers.
func PluginNotFound(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrPluginNotFound
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusNotFound, err, opts...)
}

// ValidationError responds with 400 Bad Request and validation details.
func ValidationError(w http.ResponseWriter, r *http.Request, details any, opts ...Option) {
	err := NewErrorWithDetails(ErrCodeValidationFailed, "Validation Failed", details)
	WriteError(w, r, http.StatusBadRequest, err, opts...)
}

// BindError responds with 400 Bad Request for binding errors.
func BindError(w http.ResponseWriter, r *http.Request, details any, opts ...Option) {
	err := NewErrorWithDetails(ErrCodeBindFailed, "Invalid Request Body", details)
	WriteError(w, r, http.StatusBadRequest, err, opts...)
}

// PluginHandlerError responds with 502 Bad Gateway, attributing the
// failure to the owning plugin without leaking its internals.
func PluginHandlerError(w http.ResponseWriter, r *http.Request, pluginID string, opts ...Option) {
	err := NewErrorWithDetails(ErrCodePluginHandler, "Plugin Handler Failed",
		map[string]string{"plugin": pluginID})
	WriteError(w, r, http.StatusBadGateway, err, opts...)
}

// InternalServerError responds with 500 Internal Server Error.
func InternalServerError(w http.ResponseWriter, r *http.Request, message string, opts ...Option) {
	err := ErrInternalServer
	if message != "" {
		err.Message = message
	}
	WriteError(w, r, http.StatusInternalServerError, err, opts...)
}

// CustomError responds with a caller-chosen status, code and message.
func CustomError(w http.ResponseWriter, r *http.Request, status int, code int, message string, details any, opts ...Option) {
	err := NewErrorWithDetails(code, message, details)
	WriteError(w, r, status, err, opts...)
}
