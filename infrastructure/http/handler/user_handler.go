package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/middleware"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// UserHandler serves self-lookup and the administrative directory
// operations.
type UserHandler struct {
	users inbound.UserUseCase
}

func NewUserHandler(users inbound.UserUseCase) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	response.Success(w, http.StatusOK, "User retrieved", principal)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list users")
		return
	}
	response.Success(w, http.StatusOK, "Users retrieved", list)
}

// Create handles POST /users. The response carries the plaintext API key;
// it is never shown again after this.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.PrincipalFromContext(r.Context())

	var req inbound.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	created, err := h.users.Create(r.Context(), actor.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "User created", created)
}

type setCreditsRequest struct {
	Credits int64 `json:"credits"`
}

// SetCredits handles PUT /users/{id}/credits.
func (h *UserHandler) SetCredits(w http.ResponseWriter, r *http.Request) {
	actor := middleware.PrincipalFromContext(r.Context())
	userID := mux.Vars(r)["id"]

	var req setCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	balance, err := h.users.SetCredits(r.Context(), actor.ID, userID, req.Credits)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Credits adjusted", map[string]int64{"credits": balance})
}
