package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// APIKeyHeader carries the opaque credential on every authenticated request.
const APIKeyHeader = "X-API-Key"

type principalKey struct{}

// AuthMiddleware authenticates requests and enforces the role policy for
// the operation each route declares.
type AuthMiddleware struct {
	auth inbound.AuthUseCase
}

func NewAuthMiddleware(auth inbound.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Require authenticates the caller (API key header or bearer session token)
// and checks the centralized role policy for op before invoking next. Auth
// failures surface here, before any engine logic runs.
func (m *AuthMiddleware) Require(op Operation, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := m.authenticate(r)
		if !ok {
			response.Unauthorized(w, "Invalid or missing credential")
			return
		}
		if !Allowed(principal.Role, op) {
			response.Forbidden(w, "Admin access required")
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (m *AuthMiddleware) authenticate(r *http.Request) (*entity.Principal, bool) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		p, err := m.auth.AuthenticateKey(r.Context(), key)
		if err != nil {
			return nil, false
		}
		return p, true
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
		p, err := m.auth.AuthenticateToken(r.Context(), parts[1])
		if err != nil {
			return nil, false
		}
		return p, true
	}
	return nil, false
}

// PrincipalFromContext returns the authenticated principal, or nil outside
// an authenticated request.
func PrincipalFromContext(ctx context.Context) *entity.Principal {
	if p, ok := ctx.Value(principalKey{}).(*entity.Principal); ok {
		return p
	}
	return nil
}
