package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/mytournaments/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	ListByTeam(ctx context.Context, teamID int, includeNested bool) ([]models.Player, error)
	GetByID(ctx context.Context, id int, includeNested bool) (*models.Player, error)
	Exists(ctx context.Context, id int) (bool, error)
	CountByTeam(ctx context.Context, teamID int) (int, error)
	Add(player *models.Player)
	Update(player *models.Player)
	Remove(player *models.Player)
}

type playerRepository struct {
	db    *sql.DB
	store *Store
}

const playerColumnsSQL = `p.id, p.name, p.position, p.info, p.team_id, p.entrance_date, p.version`

// Игрок может ссылаться на удалённую команду, поэтому LEFT JOIN.
func joinPlayerNestedFieldsSQL(includeNested bool) string {
	if !includeNested {
		return ""
	}
	return ` LEFT JOIN teams t ON t.id = p.team_id`
}

func selectPlayerNestedFieldsSQL(includeNested bool) string {
	if !includeNested {
		return ""
	}
	return `, t.id, t.name, t.game_id, t.sponsor_id, t.version`
}

func scanPlayer(row rowScanner, includeNested bool) (models.Player, error) {
	var p models.Player
	dest := []any{&p.ID, &p.Name, &p.Position, &p.Info, &p.TeamID, &p.EntranceDate, &p.Version}

	var (
		teamID    sql.NullInt64
		teamName  sql.NullString
		gameID    sql.NullInt64
		sponsorID sql.NullInt64
		version   sql.NullInt64
	)
	if includeNested {
		dest = append(dest, &teamID, &teamName, &gameID, &sponsorID, &version)
	}

	if err := row.Scan(dest...); err != nil {
		return p, err
	}

	if includeNested && teamID.Valid {
		p.Team = &models.Team{
			ID:      int(teamID.Int64),
			Name:    teamName.String,
			GameID:  int(gameID.Int64),
			Version: int(version.Int64),
		}
		if sponsorID.Valid {
			id := int(sponsorID.Int64)
			p.Team.SponsorID = &id
		}
	}
	return p, nil
}

func (r *playerRepository) ListByTeam(ctx context.Context, teamID int, includeNested bool) ([]models.Player, error) {
	query := `SELECT ` + playerColumnsSQL + selectPlayerNestedFieldsSQL(includeNested) +
		` FROM players p` + joinPlayerNestedFieldsSQL(includeNested) +
		` WHERE p.team_id = $1 ORDER BY p.name ASC, p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players of team %d: %w", teamID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows, includeNested)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *playerRepository) GetByID(ctx context.Context, id int, includeNested bool) (*models.Player, error) {
	query := `SELECT ` + playerColumnsSQL + selectPlayerNestedFieldsSQL(includeNested) +
		` FROM players p` + joinPlayerNestedFieldsSQL(includeNested) +
		` WHERE p.id = $1`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id), includeNested)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player by id %d: %w", id, err)
	}
	return &p, nil
}

func (r *playerRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM players WHERE id = $1)`, id)
}

func (r *playerRepository) CountByTeam(ctx context.Context, teamID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE team_id = $1`, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players of team %d: %w", teamID, err)
	}
	return count, nil
}

func (r *playerRepository) Add(player *models.Player) {
	r.store.track(changeAdded, "player", func(ctx context.Context, ex Executor) error {
		query := `
			INSERT INTO players (name, position, info, team_id, entrance_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, version`

		return ex.QueryRowContext(ctx, query,
			player.Name,
			player.Position,
			player.Info,
			player.TeamID,
			player.EntranceDate,
		).Scan(&player.ID, &player.Version)
	})
}

func (r *playerRepository) Update(player *models.Player) {
	r.store.track(changeModified, "player", func(ctx context.Context, ex Executor) error {
		query := `
			UPDATE players
			SET name = $1, position = $2, info = $3, team_id = $4, entrance_date = $5, version = version + 1
			WHERE id = $6`
		clause, extra := versionClause(player.Version, 7)
		args := append([]any{player.Name, player.Position, player.Info, player.TeamID, player.EntranceDate, player.ID}, extra...)

		err := ex.QueryRowContext(ctx, query+clause+` RETURNING version`, args...).Scan(&player.Version)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConcurrencyConflict
		}
		return err
	})
}

func (r *playerRepository) Remove(player *models.Player) {
	r.store.track(changeDeleted, "player", func(ctx context.Context, ex Executor) error {
		clause, extra := versionClause(player.Version, 2)
		result, err := ex.ExecContext(ctx, `DELETE FROM players WHERE id = $1`+clause, append([]any{player.ID}, extra...)...)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrConcurrencyConflict)
	})
}
