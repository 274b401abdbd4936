package models

// Game is a discipline teams compete in (chess, football, Dota 2, ...).
type Game struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Info    string `json:"info" db:"info"`
	Version int    `json:"version" db:"version"`

	Teams           []Team           `json:"teams,omitempty" db:"-"`
	TournamentGames []TournamentGame `json:"tournament_games,omitempty" db:"-"`
}
