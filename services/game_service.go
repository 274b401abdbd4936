package services

import (
	"context"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/rs/zerolog/log"
)

type GameService struct {
	stores   repositories.StoreFactory
	notifier realtime.Notifier
}

func NewGameService(stores repositories.StoreFactory, notifier realtime.Notifier) *GameService {
	return &GameService{stores: stores, notifier: notifierOrNop(notifier)}
}

func (s *GameService) List(ctx context.Context) ([]models.Game, error) {
	games, err := s.stores().Games.GetAll(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list games")
	}
	return games, nil
}

func (s *GameService) Get(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.stores().Games.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get game")
	}
	return game, nil
}

// Details returns the game with its teams loaded.
func (s *GameService) Details(ctx context.Context, id int) (*models.Game, error) {
	store := s.stores()
	game, err := store.Games.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get game")
	}
	teams, err := store.Teams.ListByGame(ctx, id, false)
	if err != nil {
		return nil, handleRepositoryError(err, "list game teams")
	}
	game.Teams = teams
	return game, nil
}

func (s *GameService) Create(ctx context.Context, form viewmodels.GameForm) (*models.Game, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	store := s.stores()
	game := &models.Game{Name: form.Name, Info: form.Info}
	store.Games.Add(game)
	if _, err := store.SaveChanges(ctx); err != nil {
		return nil, handleRepositoryError(err, "create game")
	}

	log.Ctx(ctx).Info().Int("game_id", game.ID).Msg("game created")
	return game, nil
}

func (s *GameService) Edit(ctx context.Context, id int, form viewmodels.GameForm) (*models.Game, error) {
	if form.ID != id {
		return nil, ErrGameNotFound
	}
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	store := s.stores()
	game := &models.Game{ID: id, Name: form.Name, Info: form.Info, Version: form.Version}
	store.Games.Update(game)
	err := saveOrResolveConflict(ctx, store, "update game", func(ctx context.Context) (bool, error) {
		return store.Games.Exists(ctx, id)
	}, ErrGameNotFound)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, realtime.EventGameUpdated, id, game)
	return game, nil
}

// Delete removes a game. A game that still has teams cannot be deleted.
func (s *GameService) Delete(ctx context.Context, id int) error {
	store := s.stores()
	game, err := store.Games.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err, "get game")
	}

	store.Games.Remove(game)
	err = saveOrResolveConflict(ctx, store, "delete game", func(ctx context.Context) (bool, error) {
		return store.Games.Exists(ctx, id)
	}, ErrGameNotFound)
	if err != nil {
		return err
	}

	log.Ctx(ctx).Info().Int("game_id", id).Msg("game deleted")
	publish(ctx, s.notifier, realtime.EventGameDeleted, id, map[string]int{"id": id})
	return nil
}
