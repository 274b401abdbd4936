package services

import (
	"context"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/rs/zerolog/log"
)

type PlayerService struct {
	stores   repositories.StoreFactory
	notifier realtime.Notifier
}

func NewPlayerService(stores repositories.StoreFactory, notifier realtime.Notifier) *PlayerService {
	return &PlayerService{stores: stores, notifier: notifierOrNop(notifier)}
}

func (s *PlayerService) List(ctx context.Context, teamID int) ([]models.Player, error) {
	players, err := s.stores().Players.ListByTeam(ctx, teamID, true)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	return players, nil
}

func (s *PlayerService) Details(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.stores().Players.GetByID(ctx, id, true)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}
	return player, nil
}

// Team returns the team a player form is rendered for.
func (s *PlayerService) Team(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.stores().Teams.GetByID(ctx, teamID, false)
	if err != nil {
		return nil, handleRepositoryError(err, "get team")
	}
	return team, nil
}

// Create adds a player to the team from the route; any TeamID in the form is ignored.
func (s *PlayerService) Create(ctx context.Context, teamID int, form viewmodels.PlayerForm) (*models.Player, error) {
	form.TeamID = teamID
	store := s.stores()

	team, err := store.Teams.GetByID(ctx, teamID, false)
	if err != nil {
		return nil, handleRepositoryError(err, "get team")
	}
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	player := &models.Player{
		Name:         form.Name,
		Position:     form.Position,
		Info:         form.Info,
		TeamID:       team.ID,
		EntranceDate: form.EntranceDate,
	}
	store.Players.Add(player)
	if _, err := store.SaveChanges(ctx); err != nil {
		return nil, handleRepositoryError(err, "create player")
	}

	log.Ctx(ctx).Info().Int("player_id", player.ID).Int("team_id", team.ID).Msg("player created")
	publish(ctx, s.notifier, realtime.EventPlayerCreated, team.GameID, player)
	return player, nil
}

func (s *PlayerService) Edit(ctx context.Context, id, teamID int, form viewmodels.PlayerForm) (*models.Player, error) {
	if form.ID != id {
		return nil, ErrPlayerNotFound
	}
	form.TeamID = teamID
	store := s.stores()

	team, err := store.Teams.GetByID(ctx, teamID, false)
	if err != nil {
		return nil, handleRepositoryError(err, "get team")
	}
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	player := &models.Player{
		ID:           id,
		Name:         form.Name,
		Position:     form.Position,
		Info:         form.Info,
		TeamID:       team.ID,
		EntranceDate: form.EntranceDate,
		Version:      form.Version,
	}
	store.Players.Update(player)
	err = saveOrResolveConflict(ctx, store, "update player", func(ctx context.Context) (bool, error) {
		return store.Players.Exists(ctx, id)
	}, ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, realtime.EventPlayerUpdated, team.GameID, player)
	return player, nil
}

// Delete removes a player and returns it so callers can redirect to its team.
func (s *PlayerService) Delete(ctx context.Context, id int) (*models.Player, error) {
	store := s.stores()
	player, err := store.Players.GetByID(ctx, id, true)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}

	store.Players.Remove(player)
	err = saveOrResolveConflict(ctx, store, "delete player", func(ctx context.Context) (bool, error) {
		return store.Players.Exists(ctx, id)
	}, ErrPlayerNotFound)
	if err != nil {
		return nil, err
	}

	if player.Team != nil {
		publish(ctx, s.notifier, realtime.EventPlayerDeleted, player.Team.GameID, map[string]int{"id": id})
	}
	return player, nil
}
