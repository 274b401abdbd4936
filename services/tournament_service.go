package services

import (
	"context"
	"errors"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	stores   repositories.StoreFactory
	notifier realtime.Notifier
	clock    clockwork.Clock
}

func NewTournamentService(stores repositories.StoreFactory, notifier realtime.Notifier, clock clockwork.Clock) *TournamentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TournamentService{stores: stores, notifier: notifierOrNop(notifier), clock: clock}
}

// TournamentDetails is a tournament with its games and the games that can still be added.
type TournamentDetails struct {
	Tournament     *models.Tournament
	AvailableGames []models.Game
}

func (s *TournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.stores().Tournaments.List(ctx, filter)
	if err != nil {
		return nil, handleRepositoryError(err, "list tournaments")
	}
	return tournaments, nil
}

func (s *TournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.stores().Tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get tournament")
	}
	return t, nil
}

func (s *TournamentService) Details(ctx context.Context, id int) (*TournamentDetails, error) {
	store := s.stores()
	t, err := store.Tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get tournament")
	}

	var allGames []models.Game
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		links, err := store.Tournaments.ListGames(gctx, id)
		if err != nil {
			return handleRepositoryError(err, "list tournament games")
		}
		t.TournamentGames = links
		return nil
	})
	g.Go(func() error {
		games, err := store.Games.GetAll(gctx)
		if err != nil {
			return handleRepositoryError(err, "list games")
		}
		allGames = games
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	linked := make(map[int]bool, len(t.TournamentGames))
	for _, link := range t.TournamentGames {
		linked[link.GameID] = true
	}
	available := make([]models.Game, 0, len(allGames))
	for _, game := range allGames {
		if !linked[game.ID] {
			available = append(available, game)
		}
	}
	return &TournamentDetails{Tournament: t, AvailableGames: available}, nil
}

// Create stores a tournament; its status is derived from the dates.
func (s *TournamentService) Create(ctx context.Context, form viewmodels.TournamentForm) (*models.Tournament, error) {
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	store := s.stores()
	t := &models.Tournament{
		Name:      form.Name,
		StartDate: form.StartDate,
		EndDate:   form.EndDate,
	}
	t.Status = t.StatusAt(s.clock.Now())
	store.Tournaments.Add(t)
	if _, err := store.SaveChanges(ctx); err != nil {
		return nil, handleRepositoryError(err, "create tournament")
	}

	log.Ctx(ctx).Info().Int("tournament_id", t.ID).Str("status", string(t.Status)).Msg("tournament created")
	return t, nil
}

func (s *TournamentService) Edit(ctx context.Context, id int, form viewmodels.TournamentForm) (*models.Tournament, error) {
	if form.ID != id {
		return nil, ErrTournamentNotFound
	}
	if errs := form.Validate(); len(errs) > 0 {
		return nil, validationError(errs)
	}

	store := s.stores()
	t := &models.Tournament{
		ID:        id,
		Name:      form.Name,
		StartDate: form.StartDate,
		EndDate:   form.EndDate,
		Version:   form.Version,
	}
	t.Status = t.StatusAt(s.clock.Now())
	store.Tournaments.Update(t)
	err := saveOrResolveConflict(ctx, store, "update tournament", func(ctx context.Context) (bool, error) {
		_, err := store.Tournaments.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return false, nil
		}
		return err == nil, err
	}, ErrTournamentNotFound)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a tournament together with its game links.
func (s *TournamentService) Delete(ctx context.Context, id int) error {
	store := s.stores()
	t, err := store.Tournaments.GetByID(ctx, id)
	if err != nil {
		return handleRepositoryError(err, "get tournament")
	}
	store.Tournaments.Remove(t)
	if _, err := store.SaveChanges(ctx); err != nil {
		return handleRepositoryError(err, "delete tournament")
	}
	return nil
}

func (s *TournamentService) AddGame(ctx context.Context, tournamentID, gameID int) (*models.TournamentGame, error) {
	store := s.stores()
	if _, err := store.Tournaments.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "get tournament")
	}
	if _, err := store.Games.GetByID(ctx, gameID); err != nil {
		return nil, handleRepositoryError(err, "get game")
	}

	link := &models.TournamentGame{TournamentID: tournamentID, GameID: gameID}
	store.Tournaments.AddGame(link)
	if _, err := store.SaveChanges(ctx); err != nil {
		return nil, handleRepositoryError(err, "add tournament game")
	}

	publish(ctx, s.notifier, realtime.EventTournamentLinked, gameID, link)
	return link, nil
}

func (s *TournamentService) RemoveGame(ctx context.Context, tournamentID, gameID int) error {
	store := s.stores()
	link, err := store.Tournaments.FindGameLink(ctx, tournamentID, gameID)
	if err != nil {
		return handleRepositoryError(err, "find tournament game")
	}
	store.Tournaments.RemoveGame(link)
	if _, err := store.SaveChanges(ctx); err != nil {
		return handleRepositoryError(err, "remove tournament game")
	}

	publish(ctx, s.notifier, realtime.EventTournamentUnlinked, gameID, link)
	return nil
}

// UpdateStatuses moves tournaments to the status their dates call for and
// returns how many were changed. Tournaments edited concurrently are skipped.
func (s *TournamentService) UpdateStatuses(ctx context.Context) (int, error) {
	now := s.clock.Now().UTC()
	store := s.stores()

	due, err := store.Tournaments.ListForStatusUpdate(ctx, now)
	if err != nil {
		return 0, handleRepositoryError(err, "list tournaments for status update")
	}

	updated := 0
	for i := range due {
		t := &due[i]
		next := t.StatusAt(now)
		if next == t.Status {
			continue
		}
		prev := t.Status
		t.Status = next

		// Отдельное сохранение на турнир: конфликт по одному не откатывает остальные.
		single := s.stores()
		single.Tournaments.Update(t)
		if _, err := single.SaveChanges(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Int("tournament_id", t.ID).Msg("tournament status update skipped")
			continue
		}
		log.Ctx(ctx).Info().
			Int("tournament_id", t.ID).
			Str("from", string(prev)).
			Str("to", string(next)).
			Msg("tournament status updated")
		updated++
	}
	return updated, nil
}
