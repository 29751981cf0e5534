package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/middleware"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// CommandHandler serves command submission and the caller's own history.
type CommandHandler struct {
	admission inbound.AdmissionUseCase
}

func NewCommandHandler(admission inbound.AdmissionUseCase) *CommandHandler {
	return &CommandHandler{admission: admission}
}

type submitCommandRequest struct {
	CommandText string `json:"command_text"`
}

// Submit handles POST /commands.
func (h *CommandHandler) Submit(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	var req submitCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	decision, err := h.admission.Submit(r.Context(), principal.ID, req.CommandText)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Command "+string(decision.Status), decision)
}

// ListOwn handles GET /commands: the caller's submissions, newest first.
func (h *CommandHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	submissions, err := h.admission.ListOwn(r.Context(), principal.ID)
	if err != nil {
		response.InternalServerError(w, "Failed to list commands")
		return
	}
	response.Success(w, http.StatusOK, "Commands retrieved", submissions)
}
