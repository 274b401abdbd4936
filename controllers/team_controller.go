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

// TeamController отдаёт HTML-страницы команд одной игры.
type TeamController struct {
	base
	teams *services.TeamService
	games *services.GameService
}

func NewTeamController(v *views.Renderer, teams *services.TeamService, games *services.GameService) *TeamController {
	return &TeamController{base: base{views: v}, teams: teams, games: games}
}

type teamListView struct {
	GameID   int
	GameName string
	Teams    []models.Team
}

type teamFormView struct {
	Action   string
	IsEdit   bool
	GameID   int
	GameName string
	Form     viewmodels.TeamForm
	Sponsors []models.Sponsor
}

// List handles GET /Teams?id={gameId}&name={gameName}.
func (c *TeamController) List(w http.ResponseWriter, r *http.Request) {
	gameID, ok := queryID(r, "id")
	if !ok {
		http.Redirect(w, r, "/Games", http.StatusFound)
		return
	}

	teams, err := c.teams.List(r.Context(), gameID)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	name := r.URL.Query().Get("name")
	c.render(w, r, http.StatusOK, "teams/index", "Teams of "+name, teamListView{
		GameID:   gameID,
		GameName: name,
		Teams:    teams,
	})
}

func (c *TeamController) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	team, err := c.teams.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "teams/details", team.Name, team)
}

// CreateForm handles GET /Teams/Create?gameId=.
func (c *TeamController) CreateForm(w http.ResponseWriter, r *http.Request) {
	gameID, ok := queryID(r, "gameId")
	if !ok {
		c.notFound(w, r)
		return
	}
	data, err := c.teams.CreateFormData(r.Context(), gameID)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "teams/form", "Create team", teamFormView{
		Action:   "/Teams/Create?gameId=" + strconv.Itoa(gameID),
		GameID:   gameID,
		GameName: data.Game.Name,
		Sponsors: data.Sponsors,
	})
}

// Create handles POST /Teams/Create?gameId=. It redirects to the team list
// whether or not the submission was valid; rejected input is only logged.
func (c *TeamController) Create(w http.ResponseWriter, r *http.Request) {
	gameID, ok := queryID(r, "gameId")
	if !ok {
		c.notFound(w, r)
		return
	}
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindTeamForm(values, viewmodels.TeamCreateFields)
	if len(bindErrs) > 0 {
		logInvalid(r, "create team", bindErrs)
	} else if _, err := c.teams.Create(r.Context(), gameID, form); err != nil {
		if !errors.Is(err, services.ErrValidationFailed) {
			c.handleServiceError(w, r, err)
			return
		}
		logInvalid(r, "create team", err)
	}
	c.redirectToList(w, r, gameID)
}

// EditForm handles GET /Teams/Edit/{id}?gameId=.
func (c *TeamController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	data, err := c.teams.EditFormData(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	gameID, ok := queryID(r, "gameId")
	if !ok {
		gameID = data.Team.GameID
	}
	c.render(w, r, http.StatusOK, "teams/form", "Edit team", teamFormView{
		Action:   "/Teams/Edit/" + strconv.Itoa(id) + "?gameId=" + strconv.Itoa(gameID),
		IsEdit:   true,
		GameID:   gameID,
		GameName: data.Game.Name,
		Sponsors: data.Sponsors,
		Form: viewmodels.TeamForm{
			ID:        data.Team.ID,
			Name:      data.Team.Name,
			GameID:    data.Team.GameID,
			SponsorID: data.Team.SponsorID,
			Version:   data.Team.Version,
		},
	})
}

// Edit handles POST /Teams/Edit/{id}?gameId=. The body Id must match the
// route id; the game always comes from the query string.
func (c *TeamController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	gameID, ok := queryID(r, "gameId")
	if !ok {
		c.notFound(w, r)
		return
	}
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindTeamForm(values, viewmodels.TeamEditFields)
	if form.ID != id {
		c.notFound(w, r)
		return
	}
	if len(bindErrs) > 0 {
		logInvalid(r, "edit team", bindErrs)
	} else if _, err := c.teams.Edit(r.Context(), id, gameID, form); err != nil {
		if !errors.Is(err, services.ErrValidationFailed) {
			c.handleServiceError(w, r, err)
			return
		}
		logInvalid(r, "edit team", err)
	}
	c.redirectToList(w, r, gameID)
}

// DeleteConfirm handles GET /Teams/Delete/{id}.
func (c *TeamController) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	team, err := c.teams.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "teams/delete", "Delete team", team)
}

// Delete handles POST /Teams/Delete/{id}: players first, then the team.
func (c *TeamController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	team, err := c.teams.Delete(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}

	name := ""
	if team.Game != nil {
		name = team.Game.Name
	}
	redirect(w, r, "/Teams", idQuery(team.GameID, name))
}

// DeleteAllTeams handles GET /Teams/DeleteAllTeams?id={gameId}. Players of
// the removed teams are kept. The redirect carries no id, so /Teams sends
// the browser on to /Games.
func (c *TeamController) DeleteAllTeams(w http.ResponseWriter, r *http.Request) {
	if gameID, ok := queryID(r, "id"); ok {
		if _, err := c.teams.DeleteAll(r.Context(), gameID); err != nil {
			c.handleServiceError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/Teams", http.StatusFound)
}

func (c *TeamController) redirectToList(w http.ResponseWriter, r *http.Request, gameID int) {
	game, err := c.games.Get(r.Context(), gameID)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	redirect(w, r, "/Teams", idQuery(game.ID, game.Name))
}
