package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/mytournaments/services"
	"github.com/go-chi/chi/v5"
)

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"Chess"}`, ""},
		{"empty", ``, "body must not be empty"},
		{"unknown field", `{"name":"Chess","extra":1}`, "unknown key"},
		{"wrong type", `{"name":5}`, `incorrect JSON type for field "name"`},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
		{"broken", `{"name":`, "badly-formed JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst struct {
				Name string `json:"name"`
			}
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := readJSON(httptest.NewRecorder(), r, &dst)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrTeamNotFound, http.StatusNotFound},
		{fmt.Errorf("edit game: %w", services.ErrConcurrencyConflict), http.StatusConflict},
		{services.ErrGameInUse, http.StatusConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrStorageDisabled, http.StatusServiceUnavailable},
		{services.ErrInvalidUpload, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetIDFromURL(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("teamID", tt.raw)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

		got, err := getIDFromURL(r, "teamID")
		if (err == nil) != tt.wantOK || got != tt.want {
			t.Errorf("getIDFromURL(%q) = %d, %v", tt.raw, got, err)
		}
	}
}
