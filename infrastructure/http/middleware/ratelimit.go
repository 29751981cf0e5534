package middleware

import (
	"net/http"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// RateLimit throttles the wrapped handler per authenticated principal. It
// must run after authentication.
func RateLimit(limiter inbound.RateLimitService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())
		if principal != nil {
			ok, err := limiter.Allow(r.Context(), principal.ID)
			if err == nil && !ok {
				response.TooManyRequests(w, "Submission rate limit exceeded")
				return
			}
		}
		next.ServeHTTP(w, r)
	}
}
