package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/mytournaments/models"
)

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrTeamReferenceInvalid = errors.New("team references a game or sponsor that does not exist")
)

type TeamRepository interface {
	// ListByGame returns the teams of a game. With includeNested the Game and
	// Sponsor associations are loaded in the same query.
	ListByGame(ctx context.Context, gameID int, includeNested bool) ([]models.Team, error)
	ListBySponsor(ctx context.Context, sponsorID int) ([]models.Team, error)
	GetByID(ctx context.Context, id int, includeNested bool) (*models.Team, error)
	Exists(ctx context.Context, id int) (bool, error)
	Add(team *models.Team)
	Update(team *models.Team)
	Remove(team *models.Team)
}

type teamRepository struct {
	db    *sql.DB
	store *Store
}

const teamColumnsSQL = `t.id, t.name, t.game_id, t.sponsor_id, t.version`

func selectTeamNestedFieldsSQL(includeNested bool) string {
	if !includeNested {
		return ""
	}
	return `, g.id, g.name, g.info, g.version, s.id, s.name, s.logo_key, s.version`
}

func joinTeamNestedFieldsSQL(includeNested bool) string {
	if !includeNested {
		return ""
	}
	return ` JOIN games g ON g.id = t.game_id LEFT JOIN sponsors s ON s.id = t.sponsor_id`
}

func scanTeam(row rowScanner, includeNested bool) (models.Team, error) {
	var t models.Team
	dest := []any{&t.ID, &t.Name, &t.GameID, &t.SponsorID, &t.Version}

	var (
		g         models.Game
		sponsorID sql.NullInt64
		name      sql.NullString
		logoKey   sql.NullString
		version   sql.NullInt64
	)
	if includeNested {
		dest = append(dest, &g.ID, &g.Name, &g.Info, &g.Version, &sponsorID, &name, &logoKey, &version)
	}

	if err := row.Scan(dest...); err != nil {
		return t, err
	}

	if includeNested {
		t.Game = &g
		if sponsorID.Valid {
			t.Sponsor = &models.Sponsor{
				ID:      int(sponsorID.Int64),
				Name:    name.String,
				Version: int(version.Int64),
			}
			if logoKey.Valid {
				key := logoKey.String
				t.Sponsor.LogoKey = &key
			}
		}
	}
	return t, nil
}

func (r *teamRepository) list(ctx context.Context, includeNested bool, where string, args ...any) ([]models.Team, error) {
	query := `SELECT ` + teamColumnsSQL + selectTeamNestedFieldsSQL(includeNested) +
		` FROM teams t` + joinTeamNestedFieldsSQL(includeNested) +
		` WHERE ` + where + ` ORDER BY t.name ASC, t.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows, includeNested)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *teamRepository) ListByGame(ctx context.Context, gameID int, includeNested bool) ([]models.Team, error) {
	return r.list(ctx, includeNested, `t.game_id = $1`, gameID)
}

func (r *teamRepository) ListBySponsor(ctx context.Context, sponsorID int) ([]models.Team, error) {
	return r.list(ctx, true, `t.sponsor_id = $1`, sponsorID)
}

func (r *teamRepository) GetByID(ctx context.Context, id int, includeNested bool) (*models.Team, error) {
	query := `SELECT ` + teamColumnsSQL + selectTeamNestedFieldsSQL(includeNested) +
		` FROM teams t` + joinTeamNestedFieldsSQL(includeNested) +
		` WHERE t.id = $1`

	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id), includeNested)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team by id %d: %w", id, err)
	}
	return &t, nil
}

func (r *teamRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`, id)
}

func (r *teamRepository) Add(team *models.Team) {
	r.store.track(changeAdded, "team", func(ctx context.Context, ex Executor) error {
		query := `INSERT INTO teams (name, game_id, sponsor_id) VALUES ($1, $2, $3) RETURNING id, version`

		err := ex.QueryRowContext(ctx, query, team.Name, team.GameID, team.SponsorID).Scan(&team.ID, &team.Version)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrTeamReferenceInvalid
			}
			return err
		}
		return nil
	})
}

func (r *teamRepository) Update(team *models.Team) {
	r.store.track(changeModified, "team", func(ctx context.Context, ex Executor) error {
		query := `UPDATE teams SET name = $1, game_id = $2, sponsor_id = $3, version = version + 1 WHERE id = $4`
		clause, extra := versionClause(team.Version, 5)
		args := append([]any{team.Name, team.GameID, team.SponsorID, team.ID}, extra...)

		err := ex.QueryRowContext(ctx, query+clause+` RETURNING version`, args...).Scan(&team.Version)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrConcurrencyConflict
			case isForeignKeyViolation(err):
				return ErrTeamReferenceInvalid
			}
			return err
		}
		return nil
	})
}

func (r *teamRepository) Remove(team *models.Team) {
	r.store.track(changeDeleted, "team", func(ctx context.Context, ex Executor) error {
		clause, extra := versionClause(team.Version, 2)
		result, err := ex.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`+clause, append([]any{team.ID}, extra...)...)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrConcurrencyConflict)
	})
}
