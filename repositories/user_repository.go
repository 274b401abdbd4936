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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Add(user *models.User)
}

type userRepository struct {
	db    *sql.DB
	store *Store
}

func (r *userRepository) get(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT id, email, birth_year, password_hash, created_at FROM users WHERE ` + where

	var u models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.BirthYear, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.get(ctx, `id = $1`, id)
}

// GetByEmail ожидает уже нормализованный email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, `email = $1`, email)
}

func (r *userRepository) Add(user *models.User) {
	r.store.track(changeAdded, "user", func(ctx context.Context, ex Executor) error {
		if user.CreatedAt.IsZero() {
			user.CreatedAt = time.Now().UTC()
		}
		query := `
			INSERT INTO users (email, birth_year, password_hash, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`

		err := ex.QueryRowContext(ctx, query, user.Email, user.BirthYear, user.PasswordHash, user.CreatedAt).Scan(&user.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrUserEmailConflict
			}
			return err
		}
		return nil
	})
}
