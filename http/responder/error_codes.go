package responder

// Stable wire error codes. 4xxx are caller mistakes, 5xxx are host or
// plugin failures.
const (
	ErrCodeBadRequest       = 4000
	ErrCodeBindFailed       = 4001
	ErrCodeValidationFailed = 4002
	ErrCodeNotFound         = 4003
	ErrCodeRouteNotFound    = 4004
	ErrCodeForbidden        = 4005
	ErrCodeUnauthorized     = 4006
	ErrCodePluginNotFound   = 4010

	ErrCodeInternalServer = 5000
	ErrCodePluginHandler  = 5007
	ErrCodeRebuildFailed  = 5008
)

var errorMessages = map[int]string{
	ErrCodeBadRequest:       "Bad Request",
	ErrCodeBindFailed:       "Invalid Request Body",
	ErrCodeValidationFailed: "Validation Failed",
	ErrCodeNotFound:         "Resource Not Found",
	ErrCodeRouteNotFound:    "Route Not Found",
	ErrCodeForbidden:        "Forbidden",
	ErrCodeUnauthorized:     "Unauthorized",
	ErrCodePluginNotFound:   "Plugin Not Found",
	ErrCodeInternalServer:   "Internal Server Error",
	ErrCodePluginHandler:    "Plugin Handler Failed",
	ErrCodeRebuildFailed:    "Route Rebuild Failed",
}

// GetErrorMessage returns the default message for an error code.
func GetErrorMessage(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Unknown Error"
}

// NewError creates a new Error with code and message.
func NewError(code int, message string) Error {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithDetails creates a new Error with code, message and details.
func NewErrorWithDetails(code int, message string, details any) Error {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return Error{
		Code:    code,
		Message: message,
		Details: details,
	}
}

var (
	ErrBadRequest     = NewError(ErrCodeBadRequest, "")
	ErrNotFound       = NewError(ErrCodeNotFound, "")
	ErrRouteNotFound  = NewError(ErrCodeRouteNotFound, "")
	ErrForbidden      = NewError(ErrCodeForbidden, "")
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "")
	ErrPluginNotFound = NewError(ErrCodePluginNotFound, "")
	ErrInternalServer = NewError(ErrCodeInternalServer, "")
)
