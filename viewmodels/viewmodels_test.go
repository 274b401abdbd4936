package viewmodels

import (
	"net/url"
	"testing"
	"time"
)

func TestRegisterViewModelValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	valid := RegisterViewModel{
		Email:           "player@example.com",
		Year:            1995,
		Password:        "hunter22",
		PasswordConfirm: "hunter22",
	}

	tests := []struct {
		name       string
		mutate     func(m *RegisterViewModel)
		wantFields []string
	}{
		{"valid", func(m *RegisterViewModel) {}, nil},
		{"missing email", func(m *RegisterViewModel) { m.Email = "" }, []string{"Email"}},
		{"bad email", func(m *RegisterViewModel) { m.Email = "not-an-email" }, []string{"Email"}},
		{"missing year", func(m *RegisterViewModel) { m.Year = 0 }, []string{"Year"}},
		{"year in the future", func(m *RegisterViewModel) { m.Year = 2025 }, []string{"Year"}},
		{"current year", func(m *RegisterViewModel) { m.Year = 2024 }, nil},
		{"year before 1900", func(m *RegisterViewModel) { m.Year = 1899 }, []string{"Year"}},
		{"three runes in six bytes", func(m *RegisterViewModel) {
			m.Password = "пар"
			m.PasswordConfirm = m.Password
		}, []string{"Password"}},
		{"six runes in twelve bytes", func(m *RegisterViewModel) {
			m.Password = "пароль"
			m.PasswordConfirm = "пароль"
		}, nil},
		{"missing password", func(m *RegisterViewModel) { m.Password = "" }, []string{"Password", "PasswordConfirm"}},
		{"short password", func(m *RegisterViewModel) {
			m.Password = "abc"
			m.PasswordConfirm = "abc"
		}, []string{"Password"}},
		{"confirmation differs", func(m *RegisterViewModel) { m.PasswordConfirm = "hunter23" }, []string{"PasswordConfirm"}},
		{"everything missing", func(m *RegisterViewModel) { *m = RegisterViewModel{} },
			[]string{"Email", "Year", "Password", "PasswordConfirm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			errs := m.Validate(now)
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("got %d errors (%v), want fields %v", len(errs), errs, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if !errs.Has(f) {
					t.Errorf("missing error for %s in %v", f, errs)
				}
			}
		})
	}
}

func TestRegisterPasswordMismatchMessage(t *testing.T) {
	m := RegisterViewModel{Email: "a@b.io", Year: 2000, Password: "secret1", PasswordConfirm: "secret2"}
	if got := m.Validate(time.Now()).For("PasswordConfirm"); got != "Passwords are different" {
		t.Fatalf("message = %q", got)
	}
}

func TestBindTeamFormIgnoresFieldsOutsideAllowList(t *testing.T) {
	values := url.Values{
		"Id":        {"4"},
		"Name":      {"  Red Rooks "},
		"SponsorId": {"2"},
		"GameId":    {"99"},
		"Version":   {"3"},
	}

	f, errs := BindTeamForm(values, TeamCreateFields)
	if len(errs) != 0 {
		t.Fatalf("unexpected bind errors: %v", errs)
	}
	if f.ID != 4 || f.Name != "Red Rooks" {
		t.Fatalf("unexpected form: %+v", f)
	}
	if f.SponsorID == nil || *f.SponsorID != 2 {
		t.Fatalf("sponsor not bound: %+v", f.SponsorID)
	}
	if f.GameID != 0 {
		t.Fatalf("GameId must not be bound on create, got %d", f.GameID)
	}
	if f.Version != 0 {
		t.Fatalf("Version must not be bound on create, got %d", f.Version)
	}

	f, _ = BindTeamForm(values, TeamEditFields)
	if f.GameID != 99 || f.Version != 3 {
		t.Fatalf("edit allow-list should bind GameId and Version: %+v", f)
	}
}

func TestBindTeamFormConversionErrors(t *testing.T) {
	_, errs := BindTeamForm(url.Values{"Id": {"x"}, "SponsorId": {"abc"}}, TeamCreateFields)
	if !errs.Has("Id") || !errs.Has("SponsorId") {
		t.Fatalf("expected conversion errors, got %v", errs)
	}
}

func TestBindTeamFormEmptySponsorIsNil(t *testing.T) {
	f, errs := BindTeamForm(url.Values{"Name": {"A"}, "SponsorId": {""}}, TeamCreateFields)
	if len(errs) != 0 || f.SponsorID != nil {
		t.Fatalf("empty SponsorId should bind to nil: %+v %v", f, errs)
	}
}

func TestTeamFormValidate(t *testing.T) {
	f := TeamForm{Name: "", GameID: 0}
	errs := f.Validate()
	if !errs.Has("Name") || !errs.Has("GameId") {
		t.Fatalf("expected Name and GameId errors, got %v", errs)
	}

	long := make([]rune, maxNameLength+1)
	for i := range long {
		long[i] = 'я'
	}
	f = TeamForm{Name: string(long), GameID: 1}
	if !f.Validate().Has("Name") {
		t.Fatal("expected max length error")
	}

	f = TeamForm{Name: "Ok", GameID: 1}
	if errs := f.Validate(); errs.Err() != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestBindPlayerForm(t *testing.T) {
	values := url.Values{
		"Name":         {"Magnus"},
		"Position":     {"Board 1"},
		"EntranceDate": {"2024-03-15"},
		"TeamId":       {"7"},
	}
	f, errs := BindPlayerForm(values, PlayerCreateFields)
	if len(errs) != 0 {
		t.Fatalf("bind errors: %v", errs)
	}
	if f.TeamID != 0 {
		t.Fatalf("TeamId is not in the create allow-list, got %d", f.TeamID)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !f.EntranceDate.Equal(want) {
		t.Fatalf("EntranceDate = %v, want %v", f.EntranceDate, want)
	}

	_, errs = BindPlayerForm(url.Values{"EntranceDate": {"15/03/2024"}}, PlayerCreateFields)
	if !errs.Has("EntranceDate") {
		t.Fatalf("expected date conversion error, got %v", errs)
	}
}

func TestPlayerFormValidate(t *testing.T) {
	errs := PlayerForm{}.Validate()
	for _, field := range []string{"Name", "EntranceDate", "TeamId"} {
		if !errs.Has(field) {
			t.Errorf("expected error for %s", field)
		}
	}
}

func TestTournamentFormValidateDates(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	f := TournamentForm{Name: "Spring Cup", StartDate: start, EndDate: start}
	if !f.Validate().Has("EndDate") {
		t.Fatal("end date equal to start date must be rejected")
	}
	f.EndDate = start.AddDate(0, 0, 3)
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestLoginViewModelValidate(t *testing.T) {
	errs := LoginViewModel{}.Validate()
	if !errs.Has("Email") || !errs.Has("Password") {
		t.Fatalf("expected required errors, got %v", errs)
	}
}

func TestFieldErrorsMapKeepsFirstMessage(t *testing.T) {
	var errs FieldErrors
	errs.Add("Name", "first")
	errs.Add("Name", "second")
	if got := errs.Map()["Name"]; got != "first" {
		t.Fatalf("Map()[Name] = %q", got)
	}
	var empty FieldErrors
	if empty.Err() != nil {
		t.Fatal("empty FieldErrors must convert to a nil error")
	}
}
