package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dosada05/mytournaments/middleware"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/Dosada05/mytournaments/views"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// maxFormBytes ограничивает размер обычной (не multipart) формы.
const maxFormBytes = 1 << 20

// base собирает то, что нужно каждому контроллеру: рендер страниц и
// общие ответы.
type base struct {
	views *views.Renderer
}

type errorView struct {
	Status  int
	Message string
}

func (b base) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	b.views.Render(w, r, status, name, views.Page{
		Title:       title,
		CurrentUser: currentUser(r),
		Data:        data,
	})
}

func (b base) renderInvalid(w http.ResponseWriter, r *http.Request, name, title string, data any, errs viewmodels.FieldErrors) {
	b.views.Render(w, r, http.StatusUnprocessableEntity, name, views.Page{
		Title:       title,
		CurrentUser: currentUser(r),
		Data:        data,
		Errors:      errs,
	})
}

func (b base) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	b.render(w, r, status, "shared/error", http.StatusText(status), errorView{Status: status, Message: message})
}

func (b base) notFound(w http.ResponseWriter, r *http.Request) {
	b.errorPage(w, r, http.StatusNotFound, "The requested page could not be found.")
}

func (b base) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	b.errorPage(w, r, http.StatusBadRequest, message)
}

// handleServiceError maps service errors onto error pages.
// Конфликт версий отдаётся как 500: запись существует, но была изменена.
func (b base) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, services.ErrTeamNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrSponsorNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrTournamentGameNotFound):
		b.notFound(w, r)
	case errors.Is(err, services.ErrGameInUse),
		errors.Is(err, services.ErrGameNameConflict),
		errors.Is(err, services.ErrSponsorNameConflict),
		errors.Is(err, services.ErrTournamentNameConflict),
		errors.Is(err, services.ErrTournamentGameConflict),
		errors.Is(err, services.ErrUserEmailConflict):
		b.errorPage(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidUpload):
		b.errorPage(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrStorageDisabled):
		b.errorPage(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		b.errorPage(w, r, http.StatusInternalServerError, "An error occurred while processing your request.")
	}
}

func currentUser(r *http.Request) string {
	email, _ := middleware.GetUserEmailFromContext(r.Context())
	return email
}

// pathID читает {id} из маршрута.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID reads a positive integer query parameter. ok is false when the
// parameter is absent or malformed.
func queryID(r *http.Request, key string) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

func redirect(w http.ResponseWriter, r *http.Request, path string, query url.Values) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func idQuery(id int, name string) url.Values {
	q := url.Values{"id": {strconv.Itoa(id)}}
	if name != "" {
		q.Set("name", name)
	}
	return q
}

// logInvalid records a validation failure that the page does not show
// because the action redirects regardless.
func logInvalid(r *http.Request, op string, err error) {
	log.Ctx(r.Context()).Warn().
		Str("op", op).
		Interface("fields", services.FieldErrorsOf(err).Map()).
		Msg("form submission rejected")
}

// formError redisplays the form when err carries field errors and falls
// back to handleServiceError otherwise.
func (b base) formError(w http.ResponseWriter, r *http.Request, name, title string, data any, err error) {
	if fields := services.FieldErrorsOf(err); len(fields) > 0 {
		b.renderInvalid(w, r, name, title, data, fields)
		return
	}
	b.handleServiceError(w, r, err)
}
