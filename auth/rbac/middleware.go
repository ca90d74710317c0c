package rbac

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/billforge/panel/http/responder"
)

// SubjectHeader identifies the caller on admin requests. The panel
// sits behind the tenant gateway which authenticates operators and
// stamps this header; anything without it is rejected.
const SubjectHeader = "X-Admin-Subject"

// Middleware enforces (subject, path, method) against the policy set.
// A nil enforcer disables the check entirely, which is how the
// rbac.enabled=false configuration is expressed.
func Middleware(enforcer *Enforcer, logger *zap.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enforcer == nil {
				next.ServeHTTP(w, r)
				return
			}

			subject := r.Header.Get(SubjectHeader)
			if subject == "" {
				responder.Unauthorized(w, r, "missing "+SubjectHeader+" header")
				return
			}

			allowed, err := enforcer.Allow(subject, r.URL.Path, r.Method)
			if err != nil {
				logger.Error("rbac check failed",
					zap.String("subject", subject),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				responder.InternalServerError(w, r, "")
				return
			}
			if !allowed {
				logger.Warn("admin request denied",
					zap.String("subject", subject),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				responder.Forbidden(w, r, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
