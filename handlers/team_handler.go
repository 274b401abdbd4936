package handlers

import (
	"net/http"

	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(ts *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

type teamInput struct {
	Name      string `json:"name"`
	GameID    int    `json:"game_id"`
	SponsorID *int   `json:"sponsor_id"`
	Version   int    `json:"version"`
}

// ListGameTeams godoc
// @Summary Команды игры
// @Tags teams
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Router /games/{gameID}/teams [get]
func (h *TeamHandler) ListGameTeams(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.teamService.List(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}

// CreateTeam godoc
// @Summary Создать команду в игре
// @Description game_id берётся только из пути.
// @Tags teams
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Игра не найдена"
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /games/{gameID}/teams [post]
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input teamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), gameID, viewmodels.TeamForm{
		Name:      input.Name,
		SponsorID: input.SponsorID,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"team": team})
}

// DeleteGameTeams godoc
// @Summary Удалить все команды игры
// @Description Игроки удалённых команд не удаляются.
// @Tags teams
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /games/{gameID}/teams [delete]
func (h *TeamHandler) DeleteGameTeams(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	n, err := h.teamService.DeleteAll(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"deleted": n})
}

func (h *TeamHandler) GetTeamByID(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, err := h.teamService.Details(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

// UpdateTeam godoc
// @Summary Обновить команду
// @Tags teams
// @Accept json
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/{teamID} [put]
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input teamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.Edit(r.Context(), teamID, input.GameID, viewmodels.TeamForm{
		ID:        teamID,
		Name:      input.Name,
		SponsorID: input.SponsorID,
		Version:   input.Version,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

// DeleteTeam godoc
// @Summary Удалить команду вместе с игроками
// @Tags teams
// @Param teamID path int true "Team ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /teams/{teamID} [delete]
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.teamService.Delete(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
