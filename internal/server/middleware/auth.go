package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// AuthConfig holds admin authentication configuration.
type AuthConfig struct {
	// Token is the admin bearer token. Empty disables all admin routes.
	Token string

	// ProtectedPrefix marks the path prefix requiring authentication.
	ProtectedPrefix string
}

// Auth validates the bearer token on admin routes. Everything outside the
// protected prefix is the public storefront and passes through.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, config.ProtectedPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if config.Token == "" || token == "" ||
				subtle.ConstantTimeCompare([]byte(token), []byte(config.Token)) != 1 {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("token_provided", token != "").
					Msg("Admin authentication failed")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"data":null,"error":{"code":"UNAUTHORIZED","message":"Invalid or missing admin token","details":"Provide a valid bearer token in the Authorization header"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
