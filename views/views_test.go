package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/mytournaments/viewmodels"
)

func TestNewParsesAllPages(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pages := []string{
		"shared/error",
		"account/login", "account/register",
	}
	for _, section := range []string{"games", "teams", "players", "sponsors", "tournaments"} {
		for _, page := range []string{"index", "details", "form", "delete"} {
			pages = append(pages, section+"/"+page)
		}
	}
	for _, name := range pages {
		if !r.Has(name) {
			t.Errorf("page %q not parsed", name)
		}
	}
	if r.Has("layout") {
		t.Error("layout must not be registered as a page")
	}
}

func TestRenderWritesStatusAndErrors(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var errs viewmodels.FieldErrors
	errs.Add("Email", "The Email field is required.")

	req := httptest.NewRequest(http.MethodGet, "/Account/Register", nil)
	rec := httptest.NewRecorder()
	r.Render(rec, req, http.StatusUnprocessableEntity, "account/register", Page{
		Title:  "Register",
		Data:   viewmodels.RegisterViewModel{Email: "<b>x</b>"},
		Errors: errs,
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The Email field is required.") {
		t.Error("field error missing from page")
	}
	if strings.Contains(body, "<b>x</b>") {
		t.Error("form value was not escaped")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.Render(rec, req, http.StatusOK, "nope/index", Page{})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
