package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
}

func NewTournamentHandler(ts *services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

type tournamentInput struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
	Version   int    `json:"version"`
}

func (in tournamentInput) form(id int) (viewmodels.TournamentForm, viewmodels.FieldErrors) {
	var errs viewmodels.FieldErrors
	parse := func(field, raw string) time.Time {
		if raw == "" {
			return time.Time{}
		}
		t, err := time.Parse(viewmodels.DateLayout, raw)
		if err != nil {
			errs.Add(field, "The value '"+raw+"' is not valid for "+field+".")
		}
		return t
	}
	f := viewmodels.TournamentForm{
		ID:        id,
		Name:      in.Name,
		StartDate: parse("StartDate", in.StartDate),
		EndDate:   parse("EndDate", in.EndDate),
		Version:   in.Version,
	}
	return f, errs
}

// ListTournaments godoc
// @Summary Список турниров
// @Tags tournaments
// @Produce json
// @Param status query string false "soon | active | completed"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListTournamentsFilter

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.TournamentStatus(statusStr)
		switch status {
		case models.StatusSoon, models.StatusActive, models.StatusCompleted:
		default:
			badRequestResponse(w, r, errors.New("invalid status query parameter"))
			return
		}
		filter.Status = &status
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournaments, err := h.tournamentService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournaments": tournaments})
}

func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	details, err := h.tournamentService.Details(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{
		"tournament":      details.Tournament,
		"available_games": details.AvailableGames,
	})
}

func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	var input tournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	form, errs := input.form(0)
	if len(errs) > 0 {
		failedValidationResponse(w, r, errs.Map())
		return
	}
	t, err := h.tournamentService.Create(r.Context(), form)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament": t})
}

func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input tournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	form, errs := input.form(id)
	if len(errs) > 0 {
		failedValidationResponse(w, r, errs.Map())
		return
	}
	t, err := h.tournamentService.Edit(r.Context(), id, form)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"tournament": t})
}

func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTournamentGame godoc
// @Summary Добавить игру в турнир
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Турнир или игра не найдены"
// @Failure 409 {object} map[string]string "Игра уже в турнире"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/games [post]
func (h *TournamentHandler) AddTournamentGame(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		GameID int `json:"game_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.GameID <= 0 {
		failedValidationResponse(w, r, map[string]string{"GameId": "The Game field is required."})
		return
	}

	link, err := h.tournamentService.AddGame(r.Context(), id, input.GameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"tournament_game": link})
}

func (h *TournamentHandler) RemoveTournamentGame(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.RemoveGame(r.Context(), id, gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
