package models

// Sponsor финансирует одну или несколько команд.
type Sponsor struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Version int    `json:"version" db:"version"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}
