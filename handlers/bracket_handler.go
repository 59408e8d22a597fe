package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/event-brackets/brackets"
	"github.com/Dosada05/event-brackets/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

type generateBracketRequest struct {
	SeedMethod string `json:"seed_method"`
	Replace    bool   `json:"replace"`
}

type recordWinnerRequest struct {
	WinnerID int `json:"winner_id"`
}

// GetBracketHandler обрабатывает GET /tournaments/{tournamentID}/bracket
func (h *BracketHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracketHandler обрабатывает POST /admin/tournaments/{tournamentID}/bracket.
// Тело запроса необязательно: по умолчанию посев по порядку регистрации.
func (h *BracketHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req generateBracketRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	method, err := brackets.ParseSeedMethod(req.SeedMethod)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GenerateBracket(r.Context(), services.GenerateBracketInput{
		TournamentID: tournamentID,
		Method:       method,
		Replace:      req.Replace,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteBracketHandler обрабатывает DELETE /admin/tournaments/{tournamentID}/bracket
func (h *BracketHandler) DeleteBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleted, err := h.bracketService.DeleteBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted_matches": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PreviewSeedingHandler обрабатывает GET /admin/tournaments/{tournamentID}/seeding?method=points
func (h *BracketHandler) PreviewSeedingHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	method, err := brackets.ParseSeedMethod(r.URL.Query().Get("method"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seeding, err := h.bracketService.PreviewSeeding(r.Context(), tournamentID, method)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seeding": seeding}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordWinnerHandler обрабатывает POST /admin/matches/{matchID}/winner
func (h *BracketHandler) RecordWinnerHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req recordWinnerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.WinnerID <= 0 {
		badRequestResponse(w, r, errors.New("winner_id must be a positive participant id"))
		return
	}

	result, err := h.bracketService.RecordWinner(r.Context(), matchID, req.WinnerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
