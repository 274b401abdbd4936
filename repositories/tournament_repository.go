package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/mytournaments/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
	ErrTournamentGameNotFound = errors.New("game is not part of the tournament")
	ErrTournamentGameConflict = errors.New("game is already part of the tournament")
	ErrTournamentGameInvalid  = errors.New("tournament or game does not exist")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// ListGames returns the tournament's game links with Game loaded.
	ListGames(ctx context.Context, tournamentID int) ([]models.TournamentGame, error)
	FindGameLink(ctx context.Context, tournamentID, gameID int) (*models.TournamentGame, error)
	// ListForStatusUpdate returns tournaments whose status is not completed
	// and whose dates say it should have moved on at currentTime.
	ListForStatusUpdate(ctx context.Context, currentTime time.Time) ([]models.Tournament, error)
	Add(t *models.Tournament)
	Update(t *models.Tournament)
	Remove(t *models.Tournament)
	AddGame(link *models.TournamentGame)
	RemoveGame(link *models.TournamentGame)
}

type tournamentRepository struct {
	db    *sql.DB
	store *Store
}

const tournamentColumnsSQL = `id, name, start_date, end_date, status, version`

func scanTournament(row rowScanner) (models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.Status, &t.Version)
	return t, err
}

func (r *tournamentRepository) queryTournaments(ctx context.Context, query string, args ...any) ([]models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *tournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumnsSQL + ` FROM tournaments WHERE 1=1`
	args := []any{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_date DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.queryTournaments(ctx, query, args...)
}

func (r *tournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumnsSQL + ` FROM tournaments WHERE id = $1`

	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament by id %d: %w", id, err)
	}
	return &t, nil
}

func (r *tournamentRepository) ListGames(ctx context.Context, tournamentID int) ([]models.TournamentGame, error) {
	query := `
		SELECT tg.id, tg.tournament_id, tg.game_id, g.id, g.name, g.info, g.version
		FROM tournament_games tg
		JOIN games g ON g.id = tg.game_id
		WHERE tg.tournament_id = $1
		ORDER BY g.name ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games of tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	links := make([]models.TournamentGame, 0)
	for rows.Next() {
		var (
			link models.TournamentGame
			g    models.Game
		)
		if err := rows.Scan(&link.ID, &link.TournamentID, &link.GameID, &g.ID, &g.Name, &g.Info, &g.Version); err != nil {
			return nil, fmt.Errorf("failed to scan tournament game row: %w", err)
		}
		link.Game = &g
		links = append(links, link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament game rows: %w", err)
	}
	return links, nil
}

func (r *tournamentRepository) FindGameLink(ctx context.Context, tournamentID, gameID int) (*models.TournamentGame, error) {
	query := `SELECT id, tournament_id, game_id FROM tournament_games WHERE tournament_id = $1 AND game_id = $2`

	var link models.TournamentGame
	err := r.db.QueryRowContext(ctx, query, tournamentID, gameID).Scan(&link.ID, &link.TournamentID, &link.GameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentGameNotFound
		}
		return nil, fmt.Errorf("failed to find tournament game link: %w", err)
	}
	return &link, nil
}

func (r *tournamentRepository) ListForStatusUpdate(ctx context.Context, currentTime time.Time) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumnsSQL + `
		FROM tournaments
		WHERE (status = $1 AND start_date <= $2)
		   OR (status IN ($1, $3) AND end_date <= $2)`

	return r.queryTournaments(ctx, query, models.StatusSoon, currentTime, models.StatusActive)
}

func (r *tournamentRepository) Add(t *models.Tournament) {
	r.store.track(changeAdded, "tournament", func(ctx context.Context, ex Executor) error {
		query := `
			INSERT INTO tournaments (name, start_date, end_date, status)
			VALUES ($1, $2, $3, $4)
			RETURNING id, version`

		err := ex.QueryRowContext(ctx, query, t.Name, t.StartDate, t.EndDate, t.Status).Scan(&t.ID, &t.Version)
		return handleTournamentError(err)
	})
}

func (r *tournamentRepository) Update(t *models.Tournament) {
	r.store.track(changeModified, "tournament", func(ctx context.Context, ex Executor) error {
		query := `
			UPDATE tournaments
			SET name = $1, start_date = $2, end_date = $3, status = $4, version = version + 1
			WHERE id = $5`
		clause, extra := versionClause(t.Version, 6)
		args := append([]any{t.Name, t.StartDate, t.EndDate, t.Status, t.ID}, extra...)

		err := ex.QueryRowContext(ctx, query+clause+` RETURNING version`, args...).Scan(&t.Version)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConcurrencyConflict
		}
		return handleTournamentError(err)
	})
}

func (r *tournamentRepository) Remove(t *models.Tournament) {
	r.store.track(changeDeleted, "tournament", func(ctx context.Context, ex Executor) error {
		clause, extra := versionClause(t.Version, 2)
		result, err := ex.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`+clause, append([]any{t.ID}, extra...)...)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrConcurrencyConflict)
	})
}

func (r *tournamentRepository) AddGame(link *models.TournamentGame) {
	r.store.track(changeAdded, "tournament game", func(ctx context.Context, ex Executor) error {
		query := `INSERT INTO tournament_games (tournament_id, game_id) VALUES ($1, $2) RETURNING id`

		err := ex.QueryRowContext(ctx, query, link.TournamentID, link.GameID).Scan(&link.ID)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return ErrTournamentGameConflict
			case isForeignKeyViolation(err):
				return ErrTournamentGameInvalid
			}
			return err
		}
		return nil
	})
}

func (r *tournamentRepository) RemoveGame(link *models.TournamentGame) {
	r.store.track(changeDeleted, "tournament game", func(ctx context.Context, ex Executor) error {
		query := `DELETE FROM tournament_games WHERE tournament_id = $1 AND game_id = $2`

		result, err := ex.ExecContext(ctx, query, link.TournamentID, link.GameID)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrTournamentGameNotFound)
	})
}

// handleTournamentError переводит ошибки ограничений таблицы tournaments в ошибки репозитория.
func handleTournamentError(err error) error {
	if err != nil && isUniqueViolation(err) {
		return ErrTournamentNameConflict
	}
	return err
}
