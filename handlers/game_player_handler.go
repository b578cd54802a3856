package handlers

import (
	"net/http"

	"github.com/bowlhaus/strafenkatalog/services"
)

type GamePlayerHandler struct {
	gamePlayerService services.GamePlayerService
}

func NewGamePlayerHandler(gamePlayerService services.GamePlayerService) *GamePlayerHandler {
	return &GamePlayerHandler{gamePlayerService: gamePlayerService}
}

func (h *GamePlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateGamePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.GameID = gameID

	gp, err := h.gamePlayerService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game_player": gp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GamePlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gamePlayerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gp, penaltyTotal, err := h.gamePlayerService.GetWithPenalties(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"game_player":   gp,
		"total":         gp.Total(),
		"penalty_total": penaltyTotal,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GamePlayerHandler) ListByGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gamePlayers, err := h.gamePlayerService.ListByGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game_players": gamePlayers}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateGamePlayerInput carries one full edit pass. Pointer fields are
// optional; absent fields keep their stored value. The errors count edits
// its mirroring penalty row via the session, so it never appears in
// Penalties.
type UpdateGamePlayerInput struct {
	Full      *int     `json:"full"`
	Clear     *int     `json:"clear"`
	Errors    *int     `json:"errors"`
	Paid      *float64 `json:"paid"`
	Played    *bool    `json:"played"`
	SumPoints *int     `json:"sum_points"`

	Penalties []PenaltyValueInput `json:"penalties"`
}

type PenaltyValueInput struct {
	PenaltyID int `json:"penalty_id"`
	Value     int `json:"value"`
}

// Update runs a whole edit session over one request: load, apply the edits,
// commit. Any rejected edit cancels the session without touching storage.
func (h *GamePlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gamePlayerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input UpdateGamePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.gamePlayerService.BeginEdit(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := applyEdits(session, input); err != nil {
		h.gamePlayerService.Cancel(session)
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.gamePlayerService.Commit(r.Context(), session); err != nil {
		// A failed commit rolled everything back; report it and let the
		// client retry with the same payload.
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"game_player":   session.GamePlayer(),
		"total":         session.Total(),
		"penalty_total": session.PenaltyTotal(),
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func applyEdits(session *services.EditSession, input UpdateGamePlayerInput) error {
	if input.Full != nil {
		if err := session.SetFull(*input.Full); err != nil {
			return err
		}
	}
	if input.Clear != nil {
		if err := session.SetClear(*input.Clear); err != nil {
			return err
		}
	}
	if input.Errors != nil {
		if err := session.SetErrors(*input.Errors); err != nil {
			return err
		}
	}
	if input.Paid != nil {
		if err := session.SetPaid(*input.Paid); err != nil {
			return err
		}
	}
	if input.Played != nil {
		if err := session.SetPlayed(*input.Played); err != nil {
			return err
		}
	}
	if input.SumPoints != nil {
		if err := session.SetSumPoints(*input.SumPoints); err != nil {
			return err
		}
	}
	for _, pv := range input.Penalties {
		if err := session.SetPenaltyValue(pv.PenaltyID, pv.Value); err != nil {
			return err
		}
	}
	return nil
}
