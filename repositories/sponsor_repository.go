package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/mytournaments/models"
)

var (
	ErrSponsorNotFound     = errors.New("sponsor not found")
	ErrSponsorNameConflict = errors.New("sponsor name conflict")
)

type SponsorRepository interface {
	GetAll(ctx context.Context) ([]models.Sponsor, error)
	GetByID(ctx context.Context, id int) (*models.Sponsor, error)
	Exists(ctx context.Context, id int) (bool, error)
	Add(sponsor *models.Sponsor)
	Update(sponsor *models.Sponsor)
	Remove(sponsor *models.Sponsor)
}

type sponsorRepository struct {
	db    *sql.DB
	store *Store
}

func (r *sponsorRepository) GetAll(ctx context.Context) ([]models.Sponsor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, logo_key, version FROM sponsors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	defer rows.Close()

	sponsors := make([]models.Sponsor, 0)
	for rows.Next() {
		var s models.Sponsor
		if err := rows.Scan(&s.ID, &s.Name, &s.LogoKey, &s.Version); err != nil {
			return nil, fmt.Errorf("failed to scan sponsor row: %w", err)
		}
		sponsors = append(sponsors, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sponsor rows: %w", err)
	}
	return sponsors, nil
}

func (r *sponsorRepository) GetByID(ctx context.Context, id int) (*models.Sponsor, error) {
	var s models.Sponsor
	err := r.db.QueryRowContext(ctx, `SELECT id, name, logo_key, version FROM sponsors WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.LogoKey, &s.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSponsorNotFound
		}
		return nil, fmt.Errorf("failed to get sponsor by id %d: %w", id, err)
	}
	return &s, nil
}

func (r *sponsorRepository) Exists(ctx context.Context, id int) (bool, error) {
	return exists(ctx, r.db, `SELECT EXISTS (SELECT 1 FROM sponsors WHERE id = $1)`, id)
}

func (r *sponsorRepository) Add(sponsor *models.Sponsor) {
	r.store.track(changeAdded, "sponsor", func(ctx context.Context, ex Executor) error {
		query := `INSERT INTO sponsors (name, logo_key) VALUES ($1, $2) RETURNING id, version`

		err := ex.QueryRowContext(ctx, query, sponsor.Name, sponsor.LogoKey).Scan(&sponsor.ID, &sponsor.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrSponsorNameConflict
			}
			return err
		}
		return nil
	})
}

func (r *sponsorRepository) Update(sponsor *models.Sponsor) {
	r.store.track(changeModified, "sponsor", func(ctx context.Context, ex Executor) error {
		query := `UPDATE sponsors SET name = $1, logo_key = $2, version = version + 1 WHERE id = $3`
		clause, extra := versionClause(sponsor.Version, 4)
		args := append([]any{sponsor.Name, sponsor.LogoKey, sponsor.ID}, extra...)

		err := ex.QueryRowContext(ctx, query+clause+` RETURNING version`, args...).Scan(&sponsor.Version)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return ErrConcurrencyConflict
			case isUniqueViolation(err):
				return ErrSponsorNameConflict
			}
			return err
		}
		return nil
	})
}

// Remove удаляет спонсора; у его команд sponsor_id становится NULL (ON DELETE SET NULL).
func (r *sponsorRepository) Remove(sponsor *models.Sponsor) {
	r.store.track(changeDeleted, "sponsor", func(ctx context.Context, ex Executor) error {
		clause, extra := versionClause(sponsor.Version, 2)
		result, err := ex.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`+clause, append([]any{sponsor.ID}, extra...)...)
		if err != nil {
			return err
		}
		return checkAffectedRows(result, ErrConcurrencyConflict)
	})
}
