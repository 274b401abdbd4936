package viewmodels

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

var (
	GameCreateFields = []string{"Id", "Name", "Info"}
	GameEditFields   = []string{"Id", "Name", "Info", "Version"}
)

type GameForm struct {
	ID      int
	Name    string
	Info    string
	Version int
}

func BindGameForm(values url.Values, allowed []string) (GameForm, FieldErrors) {
	b := newBinder(values, allowed)
	return GameForm{
		ID:      b.integer("Id"),
		Name:    b.str("Name"),
		Info:    b.str("Info"),
		Version: b.integer("Version"),
	}, b.errs
}

func (f GameForm) Validate() FieldErrors {
	var errs FieldErrors
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs.Add("Name", required("Name"))
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.Add("Name", maxLength("Name", maxNameLength))
	}
	if utf8.RuneCountInString(f.Info) > maxInfoLength {
		errs.Add("Info", maxLength("Info", maxInfoLength))
	}
	return errs
}
