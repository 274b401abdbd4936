package controllers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/storage"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/Dosada05/mytournaments/views"
)

type SponsorController struct {
	base
	sponsors *services.SponsorService
}

func NewSponsorController(v *views.Renderer, sponsors *services.SponsorService) *SponsorController {
	return &SponsorController{base: base{views: v}, sponsors: sponsors}
}

type sponsorFormView struct {
	Action string
	IsEdit bool
	Form   viewmodels.SponsorForm
}

func (c *SponsorController) List(w http.ResponseWriter, r *http.Request) {
	sponsors, err := c.sponsors.List(r.Context())
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "sponsors/index", "Sponsors", sponsors)
}

func (c *SponsorController) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	sponsor, err := c.sponsors.Details(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "sponsors/details", sponsor.Name, sponsor)
}

func (c *SponsorController) CreateForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "sponsors/form", "Create sponsor", sponsorFormView{Action: "/Sponsors/Create"})
}

func (c *SponsorController) Create(w http.ResponseWriter, r *http.Request) {
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	form, bindErrs := viewmodels.BindSponsorForm(values, viewmodels.SponsorCreateFields)
	view := sponsorFormView{Action: "/Sponsors/Create", Form: form}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "sponsors/form", "Create sponsor", view, bindErrs)
		return
	}
	if _, err := c.sponsors.Create(r.Context(), form); err != nil {
		c.formError(w, r, "sponsors/form", "Create sponsor", view, err)
		return
	}
	http.Redirect(w, r, "/Sponsors", http.StatusFound)
}

func (c *SponsorController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	sponsor, err := c.sponsors.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "sponsors/form", "Edit sponsor", sponsorFormView{
		Action: "/Sponsors/Edit/" + strconv.Itoa(id),
		IsEdit: true,
		Form:   viewmodels.SponsorForm{ID: sponsor.ID, Name: sponsor.Name, Version: sponsor.Version},
	})
}

func (c *SponsorController) Edit(w http.ResponseWriter, r *http.Request) {
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

	form, bindErrs := viewmodels.BindSponsorForm(values, viewmodels.SponsorEditFields)
	if form.ID != id {
		c.notFound(w, r)
		return
	}
	view := sponsorFormView{Action: "/Sponsors/Edit/" + strconv.Itoa(id), IsEdit: true, Form: form}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "sponsors/form", "Edit sponsor", view, bindErrs)
		return
	}
	if _, err := c.sponsors.Edit(r.Context(), id, form); err != nil {
		c.formError(w, r, "sponsors/form", "Edit sponsor", view, err)
		return
	}
	http.Redirect(w, r, "/Sponsors", http.StatusFound)
}

func (c *SponsorController) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	sponsor, err := c.sponsors.Get(r.Context(), id)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.render(w, r, http.StatusOK, "sponsors/delete", "Delete sponsor", sponsor)
}

func (c *SponsorController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}
	if err := c.sponsors.Delete(r.Context(), id); err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/Sponsors", http.StatusFound)
}

// UploadLogo handles POST /Sponsors/Logo/{id} with a multipart "logo" file.
func (c *SponsorController) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		c.notFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxLogoSize+maxFormBytes)
	if err := r.ParseMultipartForm(storage.MaxLogoSize); err != nil {
		c.badRequest(w, r, "The logo could not be read. Logos must not exceed 2 MB.")
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		c.badRequest(w, r, "Choose a logo file to upload.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, err := c.sponsors.UploadLogo(r.Context(), id, contentType, header.Size, file); err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/Sponsors/Details/"+strconv.Itoa(id), http.StatusFound)
}
