package models

import "time"

// TournamentStatus mirrors the CHECK constraint on tournaments.status.
type TournamentStatus string

const (
	StatusSoon      TournamentStatus = "soon"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	StartDate time.Time        `json:"start_date" db:"start_date"`
	EndDate   time.Time        `json:"end_date" db:"end_date"`
	Status    TournamentStatus `json:"status" db:"status"`
	Version   int              `json:"version" db:"version"`

	TournamentGames []TournamentGame `json:"tournament_games,omitempty" db:"-"`
}

// StatusAt returns the status a tournament should have at the given moment.
func (t Tournament) StatusAt(now time.Time) TournamentStatus {
	switch {
	case !now.Before(t.EndDate):
		return StatusCompleted
	case !now.Before(t.StartDate):
		return StatusActive
	default:
		return StatusSoon
	}
}

// TournamentGame is the join row between tournaments and games.
type TournamentGame struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	GameID       int `json:"game_id" db:"game_id"`

	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
	Game       *Game       `json:"game,omitempty" db:"-"`
}
