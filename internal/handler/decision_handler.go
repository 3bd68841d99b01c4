package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/auth"
	"github.com/freeeve/trooper-tactics/api/internal/service"
)

// DecisionHandler exposes the planner over HTTP.
type DecisionHandler struct {
	svc *service.DecisionService
}

// NewDecisionHandler creates a DecisionHandler.
func NewDecisionHandler(svc *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{svc: svc}
}

// Decide handles POST /matches/{id}/decide.
func (h *DecisionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req service.DecideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	matchID := r.PathValue("id")
	d, err := h.svc.Decide(r.Context(), matchID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Debug().
		Str("caller", auth.CallerFromContext(r.Context())).
		Str("matchId", matchID).
		Int64("unitId", d.UnitID).
		Str("action", string(d.Action.Type)).
		Msg("Decision served")
	writeJSON(w, http.StatusOK, d)
}

// ListDecisions handles GET /matches/{id}/decisions.
func (h *DecisionHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	ds, err := h.svc.ListDecisions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// FinishMatch handles POST /matches/{id}/finish.
func (h *DecisionHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Winner string `json:"winner"`
		Turns  int    `json:"turns"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Turns < 0 {
		writeError(w, http.StatusBadRequest, "turns must not be negative")
		return
	}

	if err := h.svc.FinishMatch(r.Context(), r.PathValue("id"), req.Winner, req.Turns); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Params handles GET /params.
func (h *DecisionHandler) Params(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Params())
}
