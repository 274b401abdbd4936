package services

import (
	"context"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type TeamService struct {
	stores   repositories.StoreFactory
	notifier realtime.Notifier
}

func NewTeamService(stores repositories.StoreFactory, notifier realtime.Notifier) *TeamService {
	return &TeamService{stores: stores, notifier: notifierOrNop(notifier)}
}

// TeamFormData is what the create and edit forms need to render.
type TeamFormData struct {
	Team     *models.Team
	Game     *models.Game
	Sponsors []models.Sponsor
}

// List returns the teams of a game with Game and Sponsor loaded.
// A game without teams yields an empty slice.
func (s *TeamService) List(ctx context.Context, gameID int) ([]models.Team, error) {
	teams, err := s.stores().Teams.ListByGame(ctx, gameID, true)
	if err != nil {
		return nil, handleRepositoryError(err, "list teams")
	}
	return teams, nil
}

// Details returns a team with Game, Sponsor and Players loaded.
func (s *TeamService) Details(ctx context.Context, id int) (*models.Team, error) {
	store := s.stores()
	team, err := store.Teams.GetByID(ctx, id, true)
	if err != nil {
		return nil, handleRepositoryError(err, "get team")
	}
	players, err := store.Players.ListByTeam(ctx, id, false)
	if err != nil {
		return nil, handleRepositoryError(err, "list team players")
	}
	team.Players = players
	return team, nil
}

// CreateFormData loads the game and the sponsor select list concurrently.
func (s *TeamService) CreateFormData(ctx context.Context, gameID int) (*TeamFormData, error) {
	store := s.stores()
	data := &TeamFormData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		game, err := store.Games.GetByID(gctx, gameID)
		if err != nil {
			return handleRepositoryError(err, "get game")
		}
		data.Game = game
		return nil
	})
	g.Go(func() error {
		sponsors, err := store.Sponsors.GetAll(gctx)
		if err != nil {
			return handleRepositoryError(err, "list sponsors")
		}
		data.Sponsors = sponsors
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// EditFormData loads the team, then its game and the sponsor select list.
func (s *TeamService) EditFormData(ctx context.Context, id int) (*TeamFormData, error) {
	team, err := s.stores().Teams.GetByID(ctx, id, false)
	if err != nil {
		return nil, handleRepositoryError(err, "get team")
	}
	data, err := s.CreateFormData(ctx, team.GameID)
	if err != nil {
		return nil, err
	}
	data.Team = team
	return data, nil
}

// Create adds a team to the game from the route; any GameID in the form is ignored.
func (s *TeamService) Create(ctx context.Context, gameID int, form viewmodels.TeamForm) (*models.Team, error) {
	form.GameID = gameID
	store := s.stores()

	game, err := store.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, handleRepositoryError(err, "get game")
	}

	errs := form.Validate()
	if err := s.checkSponsor(ctx, store, form.SponsorID, &errs); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, validationError(errs)
	}

	team := &models.Team{
		Name:      form.Name,
		GameID:    game.ID,
		SponsorID: form.SponsorID,
	}
	store.Teams.Add(team)
	if _, err := store.SaveChanges(ctx); err != nil {
		return nil, handleRepositoryError(err, "create team")
	}

	log.Ctx(ctx).Info().Int("team_id", team.ID).Int("game_id", team.GameID).Msg("team created")
	publish(ctx, s.notifier, realtime.EventTeamCreated, team.GameID, team)
	return team, nil
}

// Edit updates team id. The form Id must match id, and GameID always comes from the route.
func (s *TeamService) Edit(ctx context.Context, id, gameID int, form viewmodels.TeamForm) (*models.Team, error) {
	if form.ID != id {
		return nil, ErrTeamNotFound
	}
	form.GameID = gameID
	store := s.stores()

	errs := form.Validate()
	if err := s.checkSponsor(ctx, store, form.SponsorID, &errs); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, validationError(errs)
	}

	team := &models.Team{
		ID:        form.ID,
		Name:      form.Name,
		GameID:    form.GameID,
		SponsorID: form.SponsorID,
		Version:   form.Version,
	}
	store.Teams.Update(team)
	err := saveOrResolveConflict(ctx, store, "update team", func(ctx context.Context) (bool, error) {
		return store.Teams.Exists(ctx, id)
	}, ErrTeamNotFound)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.notifier, realtime.EventTeamUpdated, team.GameID, team)
	return team, nil
}

// Delete removes the team's players and then the team in one transaction.
// It returns the deleted team so callers can redirect to its game.
func (s *TeamService) Delete(ctx context.Context, id int) (*models.Team, error) {
	store := s.stores()
	team, err := store.Teams.GetByID(ctx, id, true)
	if err != nil {
		return nil, handleRepositoryError(err, "get team")
	}
	players, err := store.Players.ListByTeam(ctx, id, false)
	if err != nil {
		return nil, handleRepositoryError(err, "list team players")
	}

	for i := range players {
		store.Players.Remove(&players[i])
	}
	store.Teams.Remove(team)

	err = saveOrResolveConflict(ctx, store, "delete team", func(ctx context.Context) (bool, error) {
		return store.Teams.Exists(ctx, id)
	}, ErrTeamNotFound)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Int("team_id", id).Int("players", len(players)).Msg("team deleted")
	publish(ctx, s.notifier, realtime.EventTeamDeleted, team.GameID, map[string]int{"id": id})
	return team, nil
}

// DeleteAll removes every team of the game in one save. Players of those
// teams are left in place.
func (s *TeamService) DeleteAll(ctx context.Context, gameID int) (int, error) {
	store := s.stores()
	teams, err := store.Teams.ListByGame(ctx, gameID, false)
	if err != nil {
		return 0, handleRepositoryError(err, "list teams")
	}
	for i := range teams {
		store.Teams.Remove(&teams[i])
	}
	n, err := store.SaveChanges(ctx)
	if err != nil {
		return 0, handleRepositoryError(err, "delete teams")
	}

	if n > 0 {
		log.Ctx(ctx).Info().Int("game_id", gameID).Int("teams", n).Msg("all teams of game deleted")
		publish(ctx, s.notifier, realtime.EventTeamsDeleted, gameID, map[string]int{"count": n})
	}
	return n, nil
}

func (s *TeamService) checkSponsor(ctx context.Context, store *repositories.Store, sponsorID *int, errs *viewmodels.FieldErrors) error {
	if sponsorID == nil || *sponsorID <= 0 {
		return nil
	}
	found, err := store.Sponsors.Exists(ctx, *sponsorID)
	if err != nil {
		return handleRepositoryError(err, "check sponsor")
	}
	if !found {
		errs.Add("SponsorId", "The selected sponsor does not exist.")
	}
	return nil
}
