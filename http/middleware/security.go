package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls cross-origin access to the gateway. The admin UI
// is usually same-origin; CORS exists for external tooling hitting the
// registry API.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed-origins" json:"allowedOrigins" yaml:"allowed-origins"`
	AllowedMethods   []string `mapstructure:"allowed-methods" json:"allowedMethods" yaml:"allowed-methods"`
	AllowedHeaders   []string `mapstructure:"allowed-headers" json:"allowedHeaders" yaml:"allowed-headers"`
	AllowCredentials bool     `mapstructure:"allow-credentials" json:"allowCredentials" yaml:"allow-credentials"`
	MaxAge           int      `mapstructure:"max-age" json:"maxAge" yaml:"max-age" default:"600"`
}

// CORS answers preflights and stamps the allow headers. Disabled config
// returns the handler unchanged.
func CORS(cfg CORSConfig) func(next http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	if methods == "" {
		methods = "GET, POST, DELETE, OPTIONS"
	}
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	if headers == "" {
		headers = "Content-Type, X-API-Key, X-Admin-Subject, X-Trace-ID"
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(cfg.AllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// SecureHeaders sets the standard hardening headers on every response.
func SecureHeaders() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
