package handlers

import (
	"net/http"

	"github.com/bowlhaus/strafenkatalog/services"
)

type PenaltyHandler struct {
	penaltyService services.PenaltyService
}

func NewPenaltyHandler(penaltyService services.PenaltyService) *PenaltyHandler {
	return &PenaltyHandler{penaltyService: penaltyService}
}

func (h *PenaltyHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.penaltyService.ListActiveRules(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"penalties": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PenaltyHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "penaltyID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rule, err := h.penaltyService.GetRule(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"penalty": rule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PenaltyHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	kinds, err := h.penaltyService.ListKinds(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"kinds": kinds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
