package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/middleware"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
)

// RuleHandler administers the ordered admission rule set.
type RuleHandler struct {
	rules inbound.RuleUseCase
}

func NewRuleHandler(rules inbound.RuleUseCase) *RuleHandler {
	return &RuleHandler{rules: rules}
}

// List handles GET /rules, ordered by evaluation position.
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.rules.List(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list rules")
		return
	}
	response.Success(w, http.StatusOK, "Rules retrieved", list)
}

// Create handles POST /rules.
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.PrincipalFromContext(r.Context())

	var req inbound.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	rule, err := h.rules.Create(r.Context(), actor.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Rule created", rule)
}

// Delete handles DELETE /rules/{id}.
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := middleware.PrincipalFromContext(r.Context())
	ruleID := mux.Vars(r)["id"]

	if err := h.rules.Delete(r.Context(), actor.ID, ruleID); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Rule deleted", nil)
}
