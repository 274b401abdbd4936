package viewmodels

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

var (
	SponsorCreateFields = []string{"Id", "Name"}
	SponsorEditFields   = []string{"Id", "Name", "Version"}
)

type SponsorForm struct {
	ID      int
	Name    string
	Version int
}

func BindSponsorForm(values url.Values, allowed []string) (SponsorForm, FieldErrors) {
	b := newBinder(values, allowed)
	return SponsorForm{
		ID:      b.integer("Id"),
		Name:    b.str("Name"),
		Version: b.integer("Version"),
	}, b.errs
}

func (f SponsorForm) Validate() FieldErrors {
	var errs FieldErrors
	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs.Add("Name", required("Name"))
	case utf8.RuneCountInString(name) > maxNameLength:
		errs.Add("Name", maxLength("Name", maxNameLength))
	}
	return errs
}
