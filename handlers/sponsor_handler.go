package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/storage"
	"github.com/Dosada05/mytournaments/viewmodels"
)

type SponsorHandler struct {
	sponsorService *services.SponsorService
}

func NewSponsorHandler(ss *services.SponsorService) *SponsorHandler {
	return &SponsorHandler{sponsorService: ss}
}

type sponsorInput struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

func (h *SponsorHandler) ListSponsors(w http.ResponseWriter, r *http.Request) {
	sponsors, err := h.sponsorService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"sponsors": sponsors})
}

func (h *SponsorHandler) GetSponsor(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sponsor, err := h.sponsorService.Details(r.Context(), sponsorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"sponsor": sponsor})
}

func (h *SponsorHandler) CreateSponsor(w http.ResponseWriter, r *http.Request) {
	var input sponsorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sponsor, err := h.sponsorService.Create(r.Context(), viewmodels.SponsorForm{Name: input.Name})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"sponsor": sponsor})
}

func (h *SponsorHandler) UpdateSponsor(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input sponsorInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	sponsor, err := h.sponsorService.Edit(r.Context(), sponsorID, viewmodels.SponsorForm{
		ID:      sponsorID,
		Name:    input.Name,
		Version: input.Version,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"sponsor": sponsor})
}

// DeleteSponsor godoc
// @Summary Удалить спонсора
// @Description Команды спонсора остаются без спонсора, логотип удаляется из хранилища.
// @Tags sponsors
// @Param sponsorID path int true "Sponsor ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /sponsors/{sponsorID} [delete]
func (h *SponsorHandler) DeleteSponsor(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.sponsorService.Delete(r.Context(), sponsorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadSponsorLogo godoc
// @Summary Загрузить логотип спонсора
// @Tags sponsors
// @Accept multipart/form-data
// @Produce json
// @Param sponsorID path int true "Sponsor ID"
// @Param logo formData file true "Logo (png, jpeg, webp, svg; до 2 МБ)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /sponsors/{sponsorID}/logo [put]
func (h *SponsorHandler) UploadSponsorLogo(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := getIDFromURL(r, "sponsorID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxLogoSize+maxBodyBytes)
	if err := r.ParseMultipartForm(storage.MaxLogoSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	sponsor, err := h.sponsorService.UploadLogo(r.Context(), sponsorID, contentType, header.Size, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"sponsor": sponsor})
}
