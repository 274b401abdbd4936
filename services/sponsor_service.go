package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/storage"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/rs/zerolog/log"
)

type SponsorService struct {
	stores   repositories.StoreFactory
	uploader storage.FileUploader
}

// NewSponsorService creates the service. uploader may be nil when file storage
// is not configured; logo uploads then fail with ErrStorageDisabled.
func NewSponsorService(stores repositories.StoreFactory, uploader storage.FileUploader) *SponsorService {
	return &SponsorService{stores: stores, uploader: uploader}
}

func (s *SponsorService) populateLogoURL(sponsor *models.Sponsor) {
	if sponsor == nil || sponsor.LogoKey == nil || s.uploader == nil {
		return
	}
	if u := s.uploader.GetPublicURL(*sponsor.LogoKey); u != "" {
		sponsor.LogoURL = &u
	}
}

func (s *SponsorService) List(ctx context.Context) ([]models.Sponsor, error) {
	sponsors, err := s.stores().Sponsors.GetAll(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list sponsors")
	}
	for i := range sponsors {
		s.populateLogoURL(&sponsors[i])
	}
	return sponsors, nil
}

func (s *SponsorService) Get(ctx context.Context, id int) (*models.Sponsor, error) {
	sponsor, err := s.stores().Sponsors.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get sponsor")
	}
	s.populateLogoURL(sponsor)
	return sponsor, nil
}

// Details returns the sponsor with the teams it sponsors.
func (s *SponsorService) Details(ctx context.Context, id int) (*models.Sponsor, error) {
	store := s.stores()
	sponsor, err := store.Sponsors.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get sponsor")
	}
	teams, err := store.Teams.ListBySponsor(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "list sponsor teams")
	}
	sponsor.Teams = teams
	s.populateLogoURL(sponsor)
	return sponsor, nil
}

func (s *SponsorService) Create(ctx context.Context, form viewmodels.SponsorForm) (*models.Sponsor, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	store := s.stores()
	sponsor := &models.Sponsor{Name: form.Name}
	store.Sponsors.Add(sponsor)
	if _, err := store.SaveChanges(ctx); err != nil {
		return nil, handleRepositoryError(err, "create sponsor")
	}
	return sponsor, nil
}

func (s *SponsorService) Edit(ctx context.Context, id int, form viewmodels.SponsorForm) (*models.Sponsor, error) {
	if form.ID != id {
		return nil, ErrSponsorNotFound
	}
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	store := s.stores()
	// logo_key is not part of the form, keep the stored one.
	current, err := store.Sponsors.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get sponsor")
	}
	sponsor := &models.Sponsor{ID: id, Name: form.Name, LogoKey: current.LogoKey, Version: form.Version}
	store.Sponsors.Update(sponsor)
	err = saveOrResolveConflict(ctx, store, "update sponsor", func(ctx context.Context) (bool, error) {
		return store.Sponsors.Exists(ctx, id)
	}, ErrSponsorNotFound)
	if err != nil {
		return nil, err
	}
	s.populateLogoURL(sponsor)
	return sponsor, nil
}

// Delete removes the sponsor; its teams keep existing without a sponsor.
func (s *SponsorService) Delete(ctx context.Context, id int) error {
	store := s.stores()
	sponsor, err := store.Sponsors.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err, "get sponsor")
	}

	store.Sponsors.Remove(sponsor)
	err = saveOrResolveConflict(ctx, store, "delete sponsor", func(ctx context.Context) (bool, error) {
		return store.Sponsors.Exists(ctx, id)
	}, ErrSponsorNotFound)
	if err != nil {
		return err
	}

	if sponsor.LogoKey != nil && s.uploader != nil {
		s.deleteObject(ctx, *sponsor.LogoKey)
	}
	return nil
}

// UploadLogo stores a new logo and replaces the sponsor's logo key.
// The previous object is deleted after the new key is saved.
func (s *SponsorService) UploadLogo(ctx context.Context, id int, contentType string, size int64, body io.Reader) (*models.Sponsor, error) {
	if s.uploader == nil {
		return nil, ErrStorageDisabled
	}
	if size <= 0 || size > storage.MaxLogoSize {
		return nil, fmt.Errorf("%w: logo must be between 1 byte and %d bytes", ErrInvalidUpload, storage.MaxLogoSize)
	}

	store := s.stores()
	sponsor, err := store.Sponsors.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get sponsor")
	}

	key, err := storage.SponsorLogoKey(id, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
		}
		return nil, err
	}
	if _, err := s.uploader.Upload(ctx, key, contentType, io.LimitReader(body, storage.MaxLogoSize)); err != nil {
		return nil, fmt.Errorf("upload sponsor logo: %w", err)
	}

	oldKey := sponsor.LogoKey
	sponsor.LogoKey = &key
	store.Sponsors.Update(sponsor)
	if _, err := store.SaveChanges(ctx); err != nil {
		s.deleteObject(ctx, key)
		return nil, handleRepositoryError(err, "save sponsor logo")
	}
	if oldKey != nil {
		s.deleteObject(ctx, *oldKey)
	}

	s.populateLogoURL(sponsor)
	return sponsor, nil
}

func (s *SponsorService) deleteObject(ctx context.Context, key string) {
	if err := s.uploader.Delete(ctx, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to delete stored object")
	}
}
