package handlers

import (
	"net/http"
	"time"

	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(ps *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

type playerInput struct {
	Name         string `json:"name"`
	Position     string `json:"position"`
	Info         string `json:"info"`
	EntranceDate string `json:"entrance_date"` // YYYY-MM-DD
	TeamID       int    `json:"team_id"`
	Version      int    `json:"version"`
}

func (in playerInput) form(id int) (viewmodels.PlayerForm, viewmodels.FieldErrors) {
	var errs viewmodels.FieldErrors
	f := viewmodels.PlayerForm{
		ID:       id,
		Name:     in.Name,
		Position: in.Position,
		Info:     in.Info,
		Version:  in.Version,
	}
	if in.EntranceDate != "" {
		d, err := time.Parse(viewmodels.DateLayout, in.EntranceDate)
		if err != nil {
			errs.Add("EntranceDate", "The value '"+in.EntranceDate+"' is not valid for EntranceDate.")
		}
		f.EntranceDate = d
	}
	return f, errs
}

// ListTeamPlayers godoc
// @Summary Игроки команды
// @Tags players
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} map[string]interface{}
// @Router /teams/{teamID}/players [get]
func (h *PlayerHandler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.playerService.List(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"players": players})
}

// CreatePlayer godoc
// @Summary Добавить игрока в команду
// @Tags players
// @Accept json
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Команда не найдена"
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamID}/players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input playerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	form, errs := input.form(0)
	if len(errs) > 0 {
		failedValidationResponse(w, r, errs.Map())
		return
	}

	player, err := h.playerService.Create(r.Context(), teamID, form)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"player": player})
}

func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.Details(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input playerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	form, errs := input.form(playerID)
	if input.TeamID <= 0 {
		errs.Add("TeamId", "The Team field is required.")
	}
	if len(errs) > 0 {
		failedValidationResponse(w, r, errs.Map())
		return
	}

	player, err := h.playerService.Edit(r.Context(), playerID, input.TeamID, form)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.playerService.Delete(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
