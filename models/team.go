package models

type Team struct {
	ID        int    `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	GameID    int    `json:"game_id" db:"game_id"`
	SponsorID *int   `json:"sponsor_id,omitempty" db:"sponsor_id"`
	Version   int    `json:"version" db:"version"`

	// Связанные сущности, заполняются только при явной загрузке
	Game    *Game    `json:"game,omitempty" db:"-"`
	Sponsor *Sponsor `json:"sponsor,omitempty" db:"-"`
	Players []Player `json:"players,omitempty" db:"-"`
}
