package models

import "time"

type Player struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Position     string    `json:"position" db:"position"`
	Info         string    `json:"info" db:"info"`
	TeamID       int       `json:"team_id" db:"team_id"`
	EntranceDate time.Time `json:"entrance_date" db:"entrance_date"`
	Version      int       `json:"version" db:"version"`

	Team *Team `json:"team,omitempty" db:"-"`
}
