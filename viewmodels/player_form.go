package viewmodels

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	PlayerCreateFields = []string{"Id", "Name", "Position", "Info", "EntranceDate"}
	PlayerEditFields   = []string{"Id", "Name", "Position", "Info", "EntranceDate", "TeamId", "Version"}
)

const (
	maxPositionLength = 50
	maxInfoLength     = 2000
)

type PlayerForm struct {
	ID           int
	Name         string
	Position     string
	Info         string
	EntranceDate time.Time
	TeamID       int
	Version      int
}

func BindPlayerForm(values url.Values, allowed []string) (PlayerForm, FieldErrors) {
	b := newBinder(values, allowed)
	f := PlayerForm{
		ID:           b.integer("Id"),
		Name:         b.str("Name"),
		Position:     b.str("Position"),
		Info:         b.str("Info"),
		EntranceDate: b.date("EntranceDate"),
		TeamID:       b.integer("TeamId"),
		Version:      b.integer("Version"),
	}
	return f, b.errs
}

func (f PlayerForm) Validate() FieldErrors {
	var errs FieldErrors
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs.Add("Name", required("Name"))
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.Add("Name", maxLength("Name", maxNameLength))
	}
	if utf8.RuneCountInString(f.Position) > maxPositionLength {
		errs.Add("Position", maxLength("Position", maxPositionLength))
	}
	if utf8.RuneCountInString(f.Info) > maxInfoLength {
		errs.Add("Info", maxLength("Info", maxInfoLength))
	}
	if f.EntranceDate.IsZero() {
		errs.Add("EntranceDate", required("Entrance date"))
	}
	if f.TeamID <= 0 {
		errs.Add("TeamId", required("Team"))
	}
	return errs
}
