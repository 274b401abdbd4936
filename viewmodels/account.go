package viewmodels

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/mytournaments/utils"
)

const minPasswordLength = 6

var (
	RegisterFields = []string{"Email", "Year", "Password", "PasswordConfirm"}
	LoginFields    = []string{"Email", "Password", "ReturnUrl"}
)

// RegisterViewModel is the registration form. It is not an entity: the
// service turns it into a models.User.
type RegisterViewModel struct {
	Email           string `json:"email"`
	Year            int    `json:"year"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func BindRegister(values url.Values) (RegisterViewModel, FieldErrors) {
	b := newBinder(values, RegisterFields)
	return RegisterViewModel{
		Email:           b.str("Email"),
		Year:            b.integer("Year"),
		Password:        b.secret("Password"),
		PasswordConfirm: b.secret("PasswordConfirm"),
	}, b.errs
}

// Validate checks the form; now bounds the birth year.
func (m RegisterViewModel) Validate(now time.Time) FieldErrors {
	var errs FieldErrors
	email := strings.TrimSpace(m.Email)
	switch {
	case email == "":
		errs.Add("Email", required("Email"))
	case !utils.IsValidEmail(email):
		errs.Add("Email", "The Email field is not a valid e-mail address.")
	}
	switch {
	case m.Year == 0:
		errs.Add("Year", required("Birth date"))
	case m.Year < 1900 || m.Year > now.Year():
		errs.Add("Year", "The field Birth date must be between 1900 and "+itoa(now.Year())+".")
	}
	switch {
	case m.Password == "":
		errs.Add("Password", required("Password"))
	case utf8.RuneCountInString(m.Password) < minPasswordLength:
		errs.Add("Password", "The Password must be at least "+itoa(minPasswordLength)+" characters long.")
	}
	switch {
	case m.PasswordConfirm == "":
		errs.Add("PasswordConfirm", required("Password confirmation"))
	case m.PasswordConfirm != m.Password:
		errs.Add("PasswordConfirm", "Passwords are different")
	}
	return errs
}

type LoginViewModel struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	ReturnURL string `json:"-"`
}

func BindLogin(values url.Values) (LoginViewModel, FieldErrors) {
	b := newBinder(values, LoginFields)
	return LoginViewModel{
		Email:     b.str("Email"),
		Password:  b.secret("Password"),
		ReturnURL: b.str("ReturnUrl"),
	}, b.errs
}

func (m LoginViewModel) Validate() FieldErrors {
	var errs FieldErrors
	if strings.TrimSpace(m.Email) == "" {
		errs.Add("Email", required("Email"))
	}
	if m.Password == "" {
		errs.Add("Password", required("Password"))
	}
	return errs
}
