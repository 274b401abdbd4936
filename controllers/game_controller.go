package controllers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/Dosada05/mytournaments/views"
)

type GameController struct {
	base
	games *services.GameService
}

func NewGameController(v *views.Renderer, games *services.GameService) *GameController {
	return &GameController{base: base{views: v}, games: games}
}

type gameFormView struct {
	Action string
	IsEdit bool
	Form   viewmodels.GameForm
}

func (c *GameController) List(w http.ResponseWriter, r *http.Request) {
	games, err := c.games.List(r.Context())
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "games/index", "Games", games)
}

func (c *GameController) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	game, err := c.games.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "games/details", game.Name, game)
}

func (c *GameController) CreateForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "games/form", "Create game", gameFormView{Action: "/Games/Create"})
}

func (c *GameController) Create(w http.ResponseWriter, r *http.Request) {
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindGameForm(values, viewmodels.GameCreateFields)
	view := gameFormView{Action: "/Games/Create", Form: form}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "games/form", "Create game", view, bindErrs)
		return
	}
	if _, err := c.games.Create(r.Context(), form); err != nil {
		c.formError(w, r, "games/form", "Create game", view, err)
		return
	}
	http.Redirect(w, r, "/Games", http.StatusFound)
}

func (c *GameController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	game, err := c.games.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "games/form", "Edit game", gameFormView{
		Action: "/Games/Edit/" + strconv.Itoa(id),
		IsEdit: true,
		Form:   viewmodels.GameForm{ID: game.ID, Name: game.Name, Info: game.Info, Version: game.Version},
	})
}

func (c *GameController) Edit(w http.ResponseWriter, r *http.Request) {
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

	form, bindErrs := viewmodels.BindGameForm(values, viewmodels.GameEditFields)
	if form.ID != id {
		c.notFound(w, r)
		return
	}
	view := gameFormView{Action: "/Games/Edit/" + strconv.Itoa(id), IsEdit: true, Form: form}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "games/form", "Edit game", view, bindErrs)
		return
	}
	if _, err := c.games.Edit(r.Context(), id, form); err != nil {
		c.formError(w, r, "games/form", "Edit game", view, err)
		return
	}
	http.Redirect(w, r, "/Games", http.StatusFound)
}

func (c *GameController) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	game, err := c.games.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "games/delete", "Delete game", game)
}

// Delete refuses with 409 while the game still has teams.
func (c *GameController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	if err := c.games.Delete(r.Context(), id); err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/Games", http.StatusFound)
}
