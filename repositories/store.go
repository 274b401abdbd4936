package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ErrConcurrencyConflict is returned by SaveChanges when an update or delete
// matched no row: the record was changed (version mismatch) or removed since it was read.
var ErrConcurrencyConflict = errors.New("record was modified or deleted since it was loaded")

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type changeKind int

const (
	changeAdded changeKind = iota + 1
	changeModified
	changeDeleted
)

func (k changeKind) String() string {
	switch k {
	case changeAdded:
		return "insert"
	case changeModified:
		return "update"
	case changeDeleted:
		return "delete"
	default:
		return "unknown"
	}
}

type change struct {
	kind   changeKind
	entity string
	apply  func(ctx context.Context, ex Executor) error
}

// Store is the persistence context of one request. Reads go straight to the
// database; Add/Update/Remove on a collection only record a change, and
// SaveChanges applies the recorded changes, in order, in a single transaction.
// A Store must not be shared between goroutines that mutate it.
type Store struct {
	db      *sql.DB
	changes []change

	Games       GameRepository
	Teams       TeamRepository
	Players     PlayerRepository
	Sponsors    SponsorRepository
	Tournaments TournamentRepository
	Users       UserRepository
}

// StoreFactory creates a fresh Store; services call it once per operation.
type StoreFactory func() *Store

func NewStoreFactory(db *sql.DB) StoreFactory {
	return func() *Store {
		return NewStore(db)
	}
}

func NewStore(db *sql.DB) *Store {
	s := &Store{db: db}
	s.Games = &gameRepository{db: db, store: s}
	s.Teams = &teamRepository{db: db, store: s}
	s.Players = &playerRepository{db: db, store: s}
	s.Sponsors = &sponsorRepository{db: db, store: s}
	s.Tournaments = &tournamentRepository{db: db, store: s}
	s.Users = &userRepository{db: db, store: s}
	return s
}

func (s *Store) track(kind changeKind, entity string, apply func(ctx context.Context, ex Executor) error) {
	s.changes = append(s.changes, change{kind: kind, entity: entity, apply: apply})
}

// HasChanges reports whether there are changes waiting for SaveChanges.
func (s *Store) HasChanges() bool {
	return len(s.changes) > 0
}

// SaveChanges writes all pending changes and returns how many were applied.
// On error the transaction is rolled back and the pending changes are kept.
func (s *Store) SaveChanges(ctx context.Context) (int, error) {
	if len(s.changes) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, c := range s.changes {
		if err := c.apply(ctx, tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Ctx(ctx).Error().Err(rbErr).Msg("failed to roll back SaveChanges")
			}
			return 0, fmt.Errorf("%s %s: %w", c.kind, c.entity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	applied := len(s.changes)
	s.changes = nil
	return applied, nil
}
