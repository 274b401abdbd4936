package handlers

import (
	"net/http"

	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
)

type GameHandler struct {
	gameService *services.GameService
}

func NewGameHandler(gs *services.GameService) *GameHandler {
	return &GameHandler{gameService: gs}
}

type gameInput struct {
	Name    string `json:"name"`
	Info    string `json:"info"`
	Version int    `json:"version"`
}

// ListGames godoc
// @Summary Список игр
// @Tags games
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /games [get]
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"games": games})
}

// GetGame godoc
// @Summary Игра с командами
// @Tags games
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /games/{gameID} [get]
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	game, err := h.gameService.Details(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"game": game})
}

// CreateGame godoc
// @Summary Создать игру
// @Tags games
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Ошибки валидации по полям"
// @Security BearerAuth
// @Router /games [post]
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input gameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	game, err := h.gameService.Create(r.Context(), viewmodels.GameForm{Name: input.Name, Info: input.Info})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"game": game})
}

// UpdateGame godoc
// @Summary Обновить игру
// @Description version из тела используется для оптимистичной блокировки; 0 отключает проверку.
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Запись изменена другим пользователем"
// @Security BearerAuth
// @Router /games/{gameID} [put]
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input gameInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.Edit(r.Context(), gameID, viewmodels.GameForm{
		ID:      gameID,
		Name:    input.Name,
		Info:    input.Info,
		Version: input.Version,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"game": game})
}

// DeleteGame godoc
// @Summary Удалить игру
// @Tags games
// @Param gameID path int true "Game ID"
// @Success 204
// @Failure 409 {object} map[string]string "У игры есть команды"
// @Security BearerAuth
// @Router /games/{gameID} [delete]
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.gameService.Delete(r.Context(), gameID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
