package viewmodels

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 100

// Allow-lists for team submissions. GameId is accepted on edit only to be
// overwritten by the route value.
var (
	TeamCreateFields = []string{"Id", "Name", "SponsorId"}
	TeamEditFields   = []string{"Id", "Name", "SponsorId", "GameId", "Version"}
)

type TeamForm struct {
	ID        int
	Name      string
	GameID    int
	SponsorID *int
	Version   int
}

// BindTeamForm builds a TeamForm from the allow-listed keys of values.
// Conversion failures are returned as field errors.
func BindTeamForm(values url.Values, allowed []string) (TeamForm, FieldErrors) {
	b := newBinder(values, allowed)
	f := TeamForm{
		ID:        b.integer("Id"),
		Name:      b.str("Name"),
		GameID:    b.integer("GameId"),
		SponsorID: b.optionalInt("SponsorId"),
		Version:   b.integer("Version"),
	}
	return f, b.errs
}

func (f TeamForm) Validate() FieldErrors {
	var errs FieldErrors
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs.Add("Name", required("Name"))
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.Add("Name", maxLength("Name", maxNameLength))
	}
	if f.GameID <= 0 {
		errs.Add("GameId", required("Game"))
	}
	if f.SponsorID != nil && *f.SponsorID <= 0 {
		errs.Add("SponsorId", "The Sponsor field is invalid.")
	}
	return errs
}
