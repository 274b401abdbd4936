package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/Dosada05/mytournaments/views"
)

// PlayerController отдаёт страницы игроков одной команды. Как и у команд,
// create и edit всегда возвращают к списку.
type PlayerController struct {
	base
	players *services.PlayerService
}

func NewPlayerController(v *views.Renderer, players *services.PlayerService) *PlayerController {
	return &PlayerController{base: base{views: v}, players: players}
}

type playerListView struct {
	TeamID   int
	TeamName string
	Players  []models.Player
}

type playerFormView struct {
	Action   string
	IsEdit   bool
	TeamID   int
	TeamName string
	Form     viewmodels.PlayerForm
}

// List handles GET /Players?id={teamId}&name={teamName}.
func (c *PlayerController) List(w http.ResponseWriter, r *http.Request) {
	teamID, ok := queryID(r, "id")
	if !ok {
		http.Redirect(w, r, "/Games", http.StatusFound)
		return
	}
	players, err := c.players.List(r.Context(), teamID)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	name := r.URL.Query().Get("name")
	c.render(w, r, http.StatusOK, "players/index", "Players of "+name, playerListView{
		TeamID:   teamID,
		TeamName: name,
		Players:  players,
	})
}

func (c *PlayerController) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	player, err := c.players.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "players/details", player.Name, player)
}

func (c *PlayerController) CreateForm(w http.ResponseWriter, r *http.Request) {
	teamID, ok := queryID(r, "teamId")
	if !ok {
		c.notFound(w, r)
		return
	}
	team, err := c.players.Team(r.Context(), teamID)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "players/form", "Create player", playerFormView{
		Action:   "/Players/Create?teamId=" + strconv.Itoa(teamID),
		TeamID:   teamID,
		TeamName: team.Name,
	})
}

func (c *PlayerController) Create(w http.ResponseWriter, r *http.Request) {
	teamID, ok := queryID(r, "teamId")
	if !ok {
		c.notFound(w, r)
		return
	}
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindPlayerForm(values, viewmodels.PlayerCreateFields)
	if len(bindErrs) > 0 {
		logInvalid(r, "create player", bindErrs)
	} else if _, err := c.players.Create(r.Context(), teamID, form); err != nil {
		if !errors.Is(err, services.ErrValidationFailed) {
			c.handleServiceError(w, r, err)
			return
		}
		logInvalid(r, "create player", err)
	}
	c.redirectToList(w, r, teamID)
}

func (c *PlayerController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	player, err := c.players.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	teamID, ok := queryID(r, "teamId")
	if !ok {
		teamID = player.TeamID
	}
	teamName := ""
	if player.Team != nil {
		teamName = player.Team.Name
	}
	c.render(w, r, http.StatusOK, "players/form", "Edit player", playerFormView{
		Action:   "/Players/Edit/" + strconv.Itoa(id) + "?teamId=" + strconv.Itoa(teamID),
		IsEdit:   true,
		TeamID:   teamID,
		TeamName: teamName,
		Form: viewmodels.PlayerForm{
			ID:           player.ID,
			Name:         player.Name,
			Position:     player.Position,
			Info:         player.Info,
			EntranceDate: player.EntranceDate,
			TeamID:       player.TeamID,
			Version:      player.Version,
		},
	})
}

func (c *PlayerController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	teamID, ok := queryID(r, "teamId")
	if !ok {
		c.notFound(w, r)
		return
	}
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindPlayerForm(values, viewmodels.PlayerEditFields)
	if form.ID != id {
		c.notFound(w, r)
		return
	}
	if len(bindErrs) > 0 {
		logInvalid(r, "edit player", bindErrs)
	} else if _, err := c.players.Edit(r.Context(), id, teamID, form); err != nil {
		if !errors.Is(err, services.ErrValidationFailed) {
			c.handleServiceError(w, r, err)
			return
		}
		logInvalid(r, "edit player", err)
	}
	c.redirectToList(w, r, teamID)
}

func (c *PlayerController) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	player, err := c.players.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "players/delete", "Delete player", player)
}

func (c *PlayerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	player, err := c.players.Delete(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	// Игрок мог остаться без команды после DeleteAllTeams.
	if player.Team == nil {
		http.Redirect(w, r, "/Games", http.StatusFound)
		return
	}
	redirect(w, r, "/Players", idQuery(player.TeamID, player.Team.Name))
}

func (c *PlayerController) redirectToList(w http.ResponseWriter, r *http.Request, teamID int) {
	team, err := c.players.Team(r.Context(), teamID)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	redirect(w, r, "/Players", idQuery(team.ID, team.Name))
}
