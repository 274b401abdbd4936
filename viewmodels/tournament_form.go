package viewmodels

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	TournamentCreateFields = []string{"Id", "Name", "StartDate", "EndDate"}
	TournamentEditFields   = []string{"Id", "Name", "StartDate", "EndDate", "Version"}
)

type TournamentForm struct {
	ID        int
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Version   int
}

func BindTournamentForm(values url.Values, allowed []string) (TournamentForm, FieldErrors) {
	b := newBinder(values, allowed)
	return TournamentForm{
		ID:        b.integer("Id"),
		Name:      b.str("Name"),
		StartDate: b.date("StartDate"),
		EndDate:   b.date("EndDate"),
		Version:   b.integer("Version"),
	}, b.errs
}

func (f TournamentForm) Validate() FieldErrors {
	var errs FieldErrors
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs.Add("Name", required("Name"))
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.Add("Name", maxLength("Name", maxNameLength))
	}
	if f.StartDate.IsZero() {
		errs.Add("StartDate", required("Start date"))
	}
	if f.EndDate.IsZero() {
		errs.Add("EndDate", required("End date"))
	}
	if !f.StartDate.IsZero() && !f.EndDate.IsZero() && !f.StartDate.Before(f.EndDate) {
		errs.Add("EndDate", "End date must be after start date.")
	}
	return errs
}
