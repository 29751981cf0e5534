package handler

import (
	"net/http"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/middleware"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// AuthHandler exchanges an API key for a short-lived session token.
type AuthHandler struct {
	auth inbound.AuthUseCase
}

func NewAuthHandler(auth inbound.AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// IssueToken handles POST /auth/token. The caller is already authenticated
// by the middleware; this just mints the token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		response.Unauthorized(w, "Invalid or missing credential")
		return
	}

	token, err := h.auth.IssueToken(r.Context(), principal)
	if err != nil {
		response.InternalServerError(w, "Failed to issue token")
		return
	}

	response.Success(w, http.StatusOK, "Token issued", map[string]interface{}{
		"token":      token,
		"token_type": "Bearer",
	})
}
