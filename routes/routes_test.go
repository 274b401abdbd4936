package routes_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/mytournaments/controllers"
	"github.com/Dosada05/mytournaments/handlers"
	"github.com/Dosada05/mytournaments/middleware"
	"github.com/Dosada05/mytournaments/realtime"
	"github.com/Dosada05/mytournaments/repositories"
	"github.com/Dosada05/mytournaments/routes"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/testutil"
	"github.com/Dosada05/mytournaments/views"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const testSecret = "routes-test-secret"

type app struct {
	t       *testing.T
	db      *sql.DB
	handler http.Handler
}

func newApp(t *testing.T) *app {
	t.Helper()

	conn := testutil.NewTestDB(t)
	stores := repositories.NewStoreFactory(conn)
	hub := realtime.NewHub()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	games := services.NewGameService(stores, hub)
	teams := services.NewTeamService(stores, hub)
	players := services.NewPlayerService(stores, hub)
	sponsors := services.NewSponsorService(stores, nil)
	tournaments := services.NewTournamentService(stores, hub, clock)
	auth := services.NewAuthService(stores, testSecret, time.Hour, clockwork.NewRealClock())

	renderer, err := views.New()
	if err != nil {
		t.Fatalf("views.New: %v", err)
	}

	h := routes.SetupRoutes(
		routes.Controllers{
			Games:       controllers.NewGameController(renderer, games),
			Teams:       controllers.NewTeamController(renderer, teams, games),
			Players:     controllers.NewPlayerController(renderer, players),
			Sponsors:    controllers.NewSponsorController(renderer, sponsors),
			Tournaments: controllers.NewTournamentController(renderer, tournaments),
			Account:     controllers.NewAccountController(renderer, auth, false),
		},
		routes.Handlers{
			Games:       handlers.NewGameHandler(games),
			Teams:       handlers.NewTeamHandler(teams),
			Players:     handlers.NewPlayerHandler(players),
			Sponsors:    handlers.NewSponsorHandler(sponsors),
			Tournaments: handlers.NewTournamentHandler(tournaments),
			Auth:        handlers.NewAuthHandler(auth),
			WebSocket:   handlers.NewWebSocketHandler(hub, games, []string{"*"}),
		},
		routes.Options{
			Logger:             zerolog.Nop(),
			Auth:               middleware.NewAuthenticator(testSecret),
			CORSAllowedOrigins: []string{"*"},
			Health:             conn.PingContext,
		},
	)
	return &app{t: t, db: conn, handler: h}
}

func (a *app) exec(query string, args ...any) int {
	a.t.Helper()
	return testutil.MustExec(a.t, a.db, query, args...)
}

func (a *app) count(query string, args ...any) int {
	a.t.Helper()
	var n int
	if err := a.db.QueryRow(query, args...).Scan(&n); err != nil {
		a.t.Fatalf("count %q: %v", query, err)
	}
	return n
}

func (a *app) get(target string) *httptest.ResponseRecorder {
	a.t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (a *app) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *app) sendJSON(method, target, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// seed creates Football (id 1) with two teams and a player, Hockey (id 2)
// with one team, and Chess (id 5) without teams.
func (a *app) seed() (teamA, playerA int) {
	a.exec(`INSERT INTO games (id, name, info) VALUES (1, 'Football', '')`)
	a.exec(`INSERT INTO games (id, name, info) VALUES (2, 'Hockey', '')`)
	a.exec(`INSERT INTO games (id, name, info) VALUES (5, 'Chess', '')`)
	teamA = a.exec(`INSERT INTO teams (name, game_id) VALUES ('Arsenal', 1)`)
	a.exec(`INSERT INTO teams (name, game_id) VALUES ('Barcelona', 1)`)
	a.exec(`INSERT INTO teams (name, game_id) VALUES ('Bruins', 2)`)
	playerA = a.exec(`INSERT INTO players (name, team_id, entrance_date) VALUES ('Saka', ?, '2020-01-01')`, teamA)
	return teamA, playerA
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, status, rec.Body.String())
	}
}

func wantRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	wantStatus(t, rec, http.StatusFound)
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("Location = %q, want %q", got, location)
	}
}

func TestRootRedirectsToGames(t *testing.T) {
	a := newApp(t)
	wantRedirect(t, a.get("/"), "/Games")
}

func TestTeamsListShowsOnlyTeamsOfGame(t *testing.T) {
	a := newApp(t)
	a.seed()

	rec := a.get("/Teams?id=1&name=Football")
	wantStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	for _, name := range []string{"Arsenal", "Barcelona"} {
		if !strings.Contains(body, name) {
			t.Errorf("list misses %s", name)
		}
	}
	if strings.Contains(body, "Bruins") {
		t.Error("list contains a team of another game")
	}

	rec = a.get("/Teams?id=5&name=Chess")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "No teams for this game.") {
		t.Error("empty game should render an empty list")
	}

	wantRedirect(t, a.get("/Teams"), "/Games")
}

func TestTeamCreateTakesGameFromRoute(t *testing.T) {
	a := newApp(t)
	a.seed()

	rec := a.postForm("/Teams/Create?gameId=5", url.Values{
		"Name":   {"Magnus Club"},
		"GameId": {"1"},
	})
	wantRedirect(t, rec, "/Teams?id=5&name=Chess")

	if n := a.count(`SELECT COUNT(*) FROM teams WHERE name = 'Magnus Club' AND game_id = 5`); n != 1 {
		t.Fatalf("team stored under route game: got %d rows", n)
	}
}

func TestTeamCreateInvalidStillRedirects(t *testing.T) {
	a := newApp(t)
	a.seed()

	rec := a.postForm("/Teams/Create?gameId=1", url.Values{"Name": {"   "}})
	wantRedirect(t, rec, "/Teams?id=1&name=Football")

	if n := a.count(`SELECT COUNT(*) FROM teams WHERE game_id = 1`); n != 2 {
		t.Fatalf("teams of game 1 = %d, want 2", n)
	}
}

func TestTeamEditRouteIDMismatch(t *testing.T) {
	a := newApp(t)
	teamA, _ := a.seed()

	rec := a.postForm("/Teams/Edit/"+itoa(teamA)+"?gameId=1", url.Values{
		"Id":   {itoa(teamA + 1)},
		"Name": {"Renamed"},
	})
	wantStatus(t, rec, http.StatusNotFound)

	if n := a.count(`SELECT COUNT(*) FROM teams WHERE name = 'Renamed'`); n != 0 {
		t.Fatal("team was renamed despite id mismatch")
	}
}

func TestTeamEditMovesTeamToRouteGame(t *testing.T) {
	a := newApp(t)
	teamA, _ := a.seed()

	rec := a.postForm("/Teams/Edit/"+itoa(teamA)+"?gameId=2", url.Values{
		"Id":     {itoa(teamA)},
		"Name":   {"Arsenal HC"},
		"GameId": {"1"},
	})
	wantRedirect(t, rec, "/Teams?id=2&name=Hockey")

	if n := a.count(`SELECT COUNT(*) FROM teams WHERE id = ? AND game_id = 2 AND name = 'Arsenal HC'`, teamA); n != 1 {
		t.Fatal("team was not moved to the route game")
	}
}

func TestTeamDeleteRemovesPlayers(t *testing.T) {
	a := newApp(t)
	teamA, _ := a.seed()

	wantStatus(t, a.get("/Teams/Delete/"+itoa(teamA)), http.StatusOK)
	wantRedirect(t, a.postForm("/Teams/Delete/"+itoa(teamA), nil), "/Teams?id=1&name=Football")

	wantStatus(t, a.get("/Teams/Details/"+itoa(teamA)), http.StatusNotFound)
	if n := a.count(`SELECT COUNT(*) FROM players WHERE team_id = ?`, teamA); n != 0 {
		t.Fatalf("players left after team delete: %d", n)
	}
}

func TestDeleteAllTeamsKeepsPlayers(t *testing.T) {
	a := newApp(t)
	_, playerA := a.seed()

	wantRedirect(t, a.get("/Teams/DeleteAllTeams?id=1"), "/Teams")

	if n := a.count(`SELECT COUNT(*) FROM teams WHERE game_id = 1`); n != 0 {
		t.Fatalf("teams left: %d", n)
	}
	if n := a.count(`SELECT COUNT(*) FROM teams WHERE game_id = 2`); n != 1 {
		t.Fatal("teams of another game were removed")
	}
	if n := a.count(`SELECT COUNT(*) FROM players`); n != 1 {
		t.Fatalf("players = %d, want the orphan kept", n)
	}

	// Удаление осиротевшего игрока ведёт на список игр.
	wantRedirect(t, a.postForm("/Players/Delete/"+itoa(playerA), nil), "/Games")
}

func TestGameCreateInvalidRedisplays(t *testing.T) {
	a := newApp(t)

	rec := a.postForm("/Games/Create", url.Values{"Name": {""}})
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	if !strings.Contains(rec.Body.String(), `data-field="Name"`) {
		t.Error("missing Name field error")
	}
}

func TestAccountRegister(t *testing.T) {
	a := newApp(t)

	rec := a.postForm("/Account/Register", url.Values{
		"Email":           {"fan@example.com"},
		"Year":            {"1990"},
		"Password":        {"secret1"},
		"PasswordConfirm": {"secret2"},
	})
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	if !strings.Contains(rec.Body.String(), "Passwords are different") {
		t.Error("missing password mismatch message")
	}
	if strings.Contains(rec.Body.String(), "secret1") {
		t.Error("password echoed back into the form")
	}

	valid := url.Values{
		"Email":           {"fan@example.com"},
		"Year":            {"1990"},
		"Password":        {"secret1"},
		"PasswordConfirm": {"secret1"},
	}
	rec = a.postForm("/Account/Register", valid)
	wantRedirect(t, rec, "/Games")
	if !hasCookie(rec, middleware.AuthCookieName) {
		t.Error("register did not sign the user in")
	}

	rec = a.postForm("/Account/Register", valid)
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	if !strings.Contains(rec.Body.String(), "This email address is already registered.") {
		t.Error("missing email conflict message")
	}
}

func TestAccountLogin(t *testing.T) {
	a := newApp(t)
	a.postForm("/Account/Register", url.Values{
		"Email":           {"fan@example.com"},
		"Year":            {"1990"},
		"Password":        {"secret1"},
		"PasswordConfirm": {"secret1"},
	})

	rec := a.postForm("/Account/Login", url.Values{"Email": {"fan@example.com"}, "Password": {"wrong-pass"}})
	wantStatus(t, rec, http.StatusUnauthorized)
	if !strings.Contains(rec.Body.String(), "Invalid login attempt.") {
		t.Error("missing login failure message")
	}

	rec = a.postForm("/Account/Login", url.Values{
		"Email":     {"fan@example.com"},
		"Password":  {"secret1"},
		"ReturnUrl": {"//evil.example"},
	})
	wantRedirect(t, rec, "/Games")
	if !hasCookie(rec, middleware.AuthCookieName) {
		t.Error("login did not set the auth cookie")
	}
}

func TestAPIWritesRequireToken(t *testing.T) {
	a := newApp(t)

	rec := a.sendJSON(http.MethodPost, "/api/v1/games", "", map[string]any{"name": "Go"})
	wantStatus(t, rec, http.StatusUnauthorized)

	wantStatus(t, a.get("/api/v1/games"), http.StatusOK)
}

func TestAPIGameLifecycle(t *testing.T) {
	a := newApp(t)
	token := a.apiToken()

	rec := a.sendJSON(http.MethodPost, "/api/v1/games", token, map[string]any{"name": ""})
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	var invalid struct {
		Error map[string]string `json:"error"`
	}
	decode(t, rec, &invalid)
	if invalid.Error["Name"] == "" {
		t.Fatalf("expected a Name field error, got %v", invalid.Error)
	}

	rec = a.sendJSON(http.MethodPost, "/api/v1/games", token, map[string]any{"name": "Go", "info": "board"})
	wantStatus(t, rec, http.StatusCreated)
	var created struct {
		Game struct {
			ID      int `json:"id"`
			Version int `json:"version"`
		} `json:"game"`
	}
	decode(t, rec, &created)

	target := "/api/v1/games/" + itoa(created.Game.ID)
	update := map[string]any{"name": "Go (Baduk)", "info": "board", "version": created.Game.Version}
	wantStatus(t, a.sendJSON(http.MethodPut, target, token, update), http.StatusOK)
	// Та же версия во второй раз уже устарела.
	wantStatus(t, a.sendJSON(http.MethodPut, target, token, update), http.StatusConflict)

	wantStatus(t, a.sendJSON(http.MethodDelete, target, token, nil), http.StatusNoContent)
	wantStatus(t, a.get(target), http.StatusNotFound)
}

func TestAPIRegisterEmailConflict(t *testing.T) {
	a := newApp(t)
	body := map[string]any{
		"email": "api@example.com", "year": 1995,
		"password": "secret1", "password_confirm": "secret1",
	}
	wantStatus(t, a.sendJSON(http.MethodPost, "/api/v1/auth/register", "", body), http.StatusCreated)
	wantStatus(t, a.sendJSON(http.MethodPost, "/api/v1/auth/register", "", body), http.StatusConflict)

	rec := a.sendJSON(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "api@example.com", "password": "nope-nope"})
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	rec := a.get("/health")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func (a *app) apiToken() string {
	a.t.Helper()
	reg := map[string]any{
		"email": "admin@example.com", "year": 1985,
		"password": "secret1", "password_confirm": "secret1",
	}
	wantStatus(a.t, a.sendJSON(http.MethodPost, "/api/v1/auth/register", "", reg), http.StatusCreated)

	rec := a.sendJSON(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "admin@example.com", "password": "secret1"})
	wantStatus(a.t, rec, http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	decode(a.t, rec, &out)
	if out.Token == "" {
		a.t.Fatal("login returned no token")
	}
	return out.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func hasCookie(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.Value != "" {
			return true
		}
	}
	return false
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func TestGameDeleteWithTeamsIsConflict(t *testing.T) {
	a := newApp(t)
	a.seed()

	wantStatus(t, a.postForm("/Games/Delete/1", nil), http.StatusConflict)
	if n := a.count(`SELECT COUNT(*) FROM games WHERE id = 1`); n != 1 {
		t.Fatal("game with teams was deleted")
	}

	token := a.apiToken()
	wantStatus(t, a.sendJSON(http.MethodDelete, "/api/v1/games/2", token, nil), http.StatusConflict)

	// Игра без команд удаляется.
	wantRedirect(t, a.postForm("/Games/Delete/5", nil), "/Games")
}
