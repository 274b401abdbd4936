package controllers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/Dosada05/mytournaments/views"
)

type TournamentController struct {
	base
	tournaments *services.TournamentService
}

func NewTournamentController(v *views.Renderer, tournaments *services.TournamentService) *TournamentController {
	return &TournamentController{base: base{views: v}, tournaments: tournaments}
}

type tournamentFormView struct {
	Action string
	IsEdit bool
	Form   viewmodels.TournamentForm
}

// parseStatus проверяет значение ?status=. Пустая строка означает "все".
func parseStatus(raw string) (*models.TournamentStatus, bool) {
	if raw == "" {
		return nil, true
	}
	status := models.TournamentStatus(raw)
	switch status {
	case models.StatusSoon, models.StatusActive, models.StatusCompleted:
		return &status, true
	}
	return nil, false
}

// List handles GET /Tournaments?status=.
func (c *TournamentController) List(w http.ResponseWriter, r *http.Request) {
	status, ok := parseStatus(r.URL.Query().Get("status"))
	if !ok {
		c.badRequest(w, r, "Unknown tournament status.")
		return
	}
	tournaments, err := c.tournaments.List(r.Context(), repositories.ListTournamentsFilter{Status: status})
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "tournaments/index", "Tournaments", tournaments)
}

func (c *TournamentController) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	details, err := c.tournaments.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "tournaments/details", details.Tournament.Name, details)
}

func (c *TournamentController) CreateForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "tournaments/form", "Create tournament", tournamentFormView{Action: "/Tournaments/Create"})
}

func (c *TournamentController) Create(w http.ResponseWriter, r *http.Request) {
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindTournamentForm(values, viewmodels.TournamentCreateFields)
	view := tournamentFormView{Action: "/Tournaments/Create", Form: form}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "tournaments/form", "Create tournament", view, bindErrs)
		return
	}
	t, err := c.tournaments.Create(r.Context(), form)
	if err != nil {
		c.formError(w, r, "tournaments/form", "Create tournament", view, err)
		return
	}
	http.Redirect(w, r, "/Tournaments/Details/"+strconv.Itoa(t.ID), http.StatusFound)
}

func (c *TournamentController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	t, err := c.tournaments.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "tournaments/form", "Edit tournament", tournamentFormView{
		Action: "/Tournaments/Edit/" + strconv.Itoa(id),
		IsEdit: true,
		Form: viewmodels.TournamentForm{
			ID:        t.ID,
			Name:      t.Name,
			StartDate: t.StartDate,
			EndDate:   t.EndDate,
			Version:   t.Version,
		},
	})
}

func (c *TournamentController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindTournamentForm(values, viewmodels.TournamentEditFields)
	if form.ID != id {
		c.notFound(w, r)
		return
	}
	view := tournamentFormView{Action: "/Tournaments/Edit/" + strconv.Itoa(id), IsEdit: true, Form: form}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "tournaments/form", "Edit tournament", view, bindErrs)
		return
	}
	if _, err := c.tournaments.Edit(r.Context(), id, form); err != nil {
		c.formError(w, r, "tournaments/form", "Edit tournament", view, err)
		return
	}
	http.Redirect(w, r, "/Tournaments/Details/"+strconv.Itoa(id), http.StatusFound)
}

func (c *TournamentController) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	t, err := c.tournaments.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "tournaments/delete", "Delete tournament", t)
}

func (c *TournamentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	if err := c.tournaments.Delete(r.Context(), id); err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/Tournaments", http.StatusFound)
}

// AddGame handles POST /Tournaments/AddGame/{id} with form field GameId.
func (c *TournamentController) AddGame(w http.ResponseWriter, r *http.Request) {
	c.changeGames(w, r, func(id, gameID int) error {
		_, err := c.tournaments.AddGame(r.Context(), id, gameID)
		return err
	})
}

// RemoveGame handles POST /Tournaments/RemoveGame/{id} with form field GameId.
func (c *TournamentController) RemoveGame(w http.ResponseWriter, r *http.Request) {
	c.changeGames(w, r, func(id, gameID int) error {
		return c.tournaments.RemoveGame(r.Context(), id, gameID)
	})
}

func (c *TournamentController) changeGames(w http.ResponseWriter, r *http.Request, apply func(id, gameID int) error) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}
	gameID, err := strconv.Atoi(values.Get("GameId"))
	if err != nil || gameID <= 0 {
		c.badRequest(w, r, "Choose a game.")
		return
	}

	if err := apply(id, gameID); err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/Tournaments/Details/"+strconv.Itoa(id), http.StatusFound)
}
