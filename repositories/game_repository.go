package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/mytournaments/models"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNameConflict = errors.New("game name conflict")
	ErrGameInUse        = errors.New("game cannot be deleted as it is in use") // FK teams.game_id ON DELETE RESTRICT
)

type GameRepository interface {
	GetAll(ctx context.Context) ([]models.Game, error)
	GetByID(ctx context.Context, id int) (*models.Game, error)
	Exists(ctx context.Context, id int) (bool, error)
	Add(game *models.Game)
	Update(game *models.Game)
	Remove(game *models.Game)
}

type gameRepository struct {
	db    *sql.DB
	store *Store
}

func (r *gameRepository) GetAll(ctx context.Context) ([]models.Game, error) {
	query := `SELECT id, name, info, version FROM games ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Info, &g.Version); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}
	return games, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT id, name, info, version FROM games WHERE id = $1`

	var g models.Game
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Name, &g.Info, &g.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game by id %d: %w", id, err)
	}
	return &g, nil
}

func (r *gameRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, id)
}

func (r *gameRepository) Add(game *models.Game) {
	r.store.track(changeAdded, "game", func(ctx context.Context, ex Executor) error {
		query := `INSERT INTO games (name, info) VALUES ($1, $2) RETURNING id, version`

		err := ex.QueryRowContext(ctx, query, game.Name, game.Info).Scan(&game.ID, &game.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrGameNameConflict
			}
			return err
		}
		return nil
	})
}

func (r *gameRepository) Update(game *models.Game) {
	r.store.track(changeModified, "game", func(ctx context.Context, ex Executor) error {
		query := `UPDATE games SET name = $1, info = $2, version = version + 1 WHERE id = $3`
		clause, extra := versionClause(game.Version, 4)
		args := append([]any{game.Name, game.Info, game.ID}, extra...)

		err := ex.QueryRowContext(ctx, query+clause+` RETURNING version`, args...).Scan(&game.Version)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrConcurrencyConflict
			case isUniqueViolation(err):
				return ErrGameNameConflict
			}
			return err
		}
		return nil
	})
}

func (r *gameRepository) Remove(game *models.Game) {
	r.store.track(changeDeleted, "game", func(ctx context.Context, ex Executor) error {
		clause, extra := versionClause(game.Version, 2)
		result, err := ex.ExecContext(ctx, `DELETE FROM games WHERE id = $1`+clause, append([]any{game.ID}, extra...)...)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrGameInUse
			}
			return err
		}
		return checkAffectedRows(result, ErrConcurrencyConflict)
	})
}
