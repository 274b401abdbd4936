package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/mytournaments/models"
	"github.com/Dosada05/mytournaments/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSaveChangesAppliesInOrder(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	store := NewStore(conn)

	game := &models.Game{Name: "Dota 2", Info: "MOBA"}
	store.Games.Add(game)
	if !store.HasChanges() {
		t.Fatal("expected pending changes after Add")
	}

	n, err := store.SaveChanges(ctx)
	if err != nil {
		t.Fatalf("save game: %v", err)
	}
	if n != 1 || game.ID == 0 || game.Version != 1 {
		t.Fatalf("unexpected result: n=%d game=%+v", n, game)
	}

	team := &models.Team{Name: "Spirit", GameID: game.ID}
	store.Teams.Add(team)
	sponsor := &models.Sponsor{Name: "Parimatch"}
	store.Sponsors.Add(sponsor)

	n, err = store.SaveChanges(ctx)
	if err != nil {
		t.Fatalf("save team and sponsor: %v", err)
	}
	if n != 2 || team.ID == 0 || sponsor.ID == 0 {
		t.Fatalf("unexpected result: n=%d team=%+v sponsor=%+v", n, team, sponsor)
	}

	player := &models.Player{Name: "Yatoro", Position: "Carry", TeamID: team.ID, EntranceDate: date(2021, 3, 1)}
	store.Players.Add(player)
	if _, err := store.SaveChanges(ctx); err != nil {
		t.Fatalf("save player: %v", err)
	}
	if store.HasChanges() {
		t.Fatal("changes should be cleared after a successful save")
	}

	got, err := store.Players.GetByID(ctx, player.ID, false)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if !got.EntranceDate.Equal(player.EntranceDate) {
		t.Fatalf("entrance date = %v, want %v", got.EntranceDate, player.EntranceDate)
	}
}

func TestSaveChangesRollsBackOnError(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	store := NewStore(conn)

	store.Games.Add(&models.Game{Name: "CS2"})
	store.Games.Add(&models.Game{Name: "CS2"})

	_, err := store.SaveChanges(ctx)
	if !errors.Is(err, ErrGameNameConflict) {
		t.Fatalf("expected ErrGameNameConflict, got %v", err)
	}
	if !store.HasChanges() {
		t.Fatal("failed changes should stay pending")
	}

	games, err := store.Games.GetAll(ctx)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 0 {
		t.Fatalf("transaction was not rolled back, found %d games", len(games))
	}
}

func TestUpdateDetectsStaleVersion(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	gameID := testutil.MustExec(t, conn, `INSERT INTO games (name) VALUES ('Valorant')`)

	first := NewStore(conn)
	a, err := first.Games.GetByID(ctx, gameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	second := NewStore(conn)
	b, _ := second.Games.GetByID(ctx, gameID)

	a.Info = "tactical shooter"
	first.Games.Update(a)
	if _, err := first.SaveChanges(ctx); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if a.Version != 2 {
		t.Fatalf("version = %d, want 2", a.Version)
	}

	b.Info = "stale"
	second.Games.Update(b)
	if _, err := second.SaveChanges(ctx); !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}

	// Version 0 skips the check and only requires the row to exist.
	blind := NewStore(conn)
	blind.Games.Update(&models.Game{ID: gameID, Name: "Valorant", Info: "blind"})
	if _, err := blind.SaveChanges(ctx); err != nil {
		t.Fatalf("blind update: %v", err)
	}
	missing := NewStore(conn)
	missing.Games.Update(&models.Game{ID: gameID + 100, Name: "Ghost"})
	if _, err := missing.SaveChanges(ctx); !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict for missing row, got %v", err)
	}
}

func TestGameRemoveInUse(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	gameID := testutil.MustExec(t, conn, `INSERT INTO games (name) VALUES ('LoL')`)
	testutil.MustExec(t, conn, `INSERT INTO teams (name, game_id) VALUES ('T1', $1)`, gameID)

	store := NewStore(conn)
	store.Games.Remove(&models.Game{ID: gameID})
	if _, err := store.SaveChanges(ctx); !errors.Is(err, ErrGameInUse) {
		t.Fatalf("expected ErrGameInUse, got %v", err)
	}
}

func TestTeamsNestedLoading(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	gameID := testutil.MustExec(t, conn, `INSERT INTO games (name) VALUES ('Dota 2')`)
	sponsorID := testutil.MustExec(t, conn, `INSERT INTO sponsors (name, logo_key) VALUES ('Parimatch', 'sponsors/1/logo.png')`)
	testutil.MustExec(t, conn, `INSERT INTO teams (name, game_id, sponsor_id) VALUES ('Navi', $1, $2)`, gameID, sponsorID)
	testutil.MustExec(t, conn, `INSERT INTO teams (name, game_id) VALUES ('Liquid', $1)`, gameID)

	store := NewStore(conn)
	teams, err := store.Teams.ListByGame(ctx, gameID, true)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	// ordered by name
	if teams[0].Name != "Liquid" || teams[0].Sponsor != nil {
		t.Fatalf("unexpected first team: %+v", teams[0])
	}
	if teams[1].Sponsor == nil || teams[1].Sponsor.Name != "Parimatch" || *teams[1].Sponsor.LogoKey != "sponsors/1/logo.png" {
		t.Fatalf("sponsor not loaded: %+v", teams[1].Sponsor)
	}
	if teams[1].Game == nil || teams[1].Game.Name != "Dota 2" {
		t.Fatalf("game not loaded: %+v", teams[1].Game)
	}

	flat, err := store.Teams.ListByGame(ctx, gameID, false)
	if err != nil {
		t.Fatalf("list flat teams: %v", err)
	}
	if flat[1].Game != nil || flat[1].SponsorID == nil || *flat[1].SponsorID != sponsorID {
		t.Fatalf("unexpected flat team: %+v", flat[1])
	}

	if _, err := store.Teams.GetByID(ctx, 999, true); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("expected ErrTeamNotFound, got %v", err)
	}
}

func TestSponsorRemoveClearsTeams(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	gameID := testutil.MustExec(t, conn, `INSERT INTO games (name) VALUES ('Dota 2')`)
	sponsorID := testutil.MustExec(t, conn, `INSERT INTO sponsors (name) VALUES ('Red Bull')`)
	teamID := testutil.MustExec(t, conn, `INSERT INTO teams (name, game_id, sponsor_id) VALUES ('OG', $1, $2)`, gameID, sponsorID)

	store := NewStore(conn)
	sponsor, err := store.Sponsors.GetByID(ctx, sponsorID)
	if err != nil {
		t.Fatalf("get sponsor: %v", err)
	}
	store.Sponsors.Remove(sponsor)
	if _, err := store.SaveChanges(ctx); err != nil {
		t.Fatalf("remove sponsor: %v", err)
	}

	team, err := store.Teams.GetByID(ctx, teamID, false)
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	if team.SponsorID != nil {
		t.Fatalf("sponsor_id = %d, want NULL", *team.SponsorID)
	}
}

func TestPlayersSurviveTeamRemoval(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	gameID := testutil.MustExec(t, conn, `INSERT INTO games (name) VALUES ('Dota 2')`)
	teamID := testutil.MustExec(t, conn, `INSERT INTO teams (name, game_id) VALUES ('Secret', $1)`, gameID)
	testutil.MustExec(t, conn, `INSERT INTO players (name, team_id, entrance_date) VALUES ('Puppey', $1, $2)`, teamID, date(2015, 1, 1))

	store := NewStore(conn)
	store.Teams.Remove(&models.Team{ID: teamID})
	if _, err := store.SaveChanges(ctx); err != nil {
		t.Fatalf("remove team: %v", err)
	}

	count, err := store.Players.CountByTeam(ctx, teamID)
	if err != nil {
		t.Fatalf("count players: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected orphaned player to remain, count=%d", count)
	}
	players, err := store.Players.ListByTeam(ctx, teamID, true)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if players[0].Team != nil {
		t.Fatalf("orphaned player should have no team, got %+v", players[0].Team)
	}
}

func TestTournamentGames(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	gameID := testutil.MustExec(t, conn, `INSERT INTO games (name) VALUES ('CS2')`)

	store := NewStore(conn)
	tournament := &models.Tournament{
		Name:      "Major",
		StartDate: date(2030, 6, 1),
		EndDate:   date(2030, 6, 14),
		Status:    models.StatusSoon,
	}
	store.Tournaments.Add(tournament)
	if _, err := store.SaveChanges(ctx); err != nil {
		t.Fatalf("add tournament: %v", err)
	}

	link := &models.TournamentGame{TournamentID: tournament.ID, GameID: gameID}
	store.Tournaments.AddGame(link)
	if _, err := store.SaveChanges(ctx); err != nil {
		t.Fatalf("add game link: %v", err)
	}

	store.Tournaments.AddGame(&models.TournamentGame{TournamentID: tournament.ID, GameID: gameID})
	if _, err := store.SaveChanges(ctx); !errors.Is(err, ErrTournamentGameConflict) {
		t.Fatalf("expected ErrTournamentGameConflict, got %v", err)
	}

	other := NewStore(conn)
	other.Tournaments.AddGame(&models.TournamentGame{TournamentID: tournament.ID, GameID: 404})
	if _, err := other.SaveChanges(ctx); !errors.Is(err, ErrTournamentGameInvalid) {
		t.Fatalf("expected ErrTournamentGameInvalid, got %v", err)
	}

	links, err := other.Tournaments.ListGames(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(links) != 1 || links[0].Game == nil || links[0].Game.Name != "CS2" {
		t.Fatalf("unexpected links: %+v", links)
	}

	other = NewStore(conn)
	other.Tournaments.RemoveGame(link)
	if _, err := other.SaveChanges(ctx); err != nil {
		t.Fatalf("remove game link: %v", err)
	}
	if _, err := other.Tournaments.FindGameLink(ctx, tournament.ID, gameID); !errors.Is(err, ErrTournamentGameNotFound) {
		t.Fatalf("expected ErrTournamentGameNotFound, got %v", err)
	}
}

func TestListForStatusUpdate(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	now := date(2030, 6, 10)

	insert := `INSERT INTO tournaments (name, start_date, end_date, status) VALUES ($1, $2, $3, $4)`
	testutil.MustExec(t, conn, insert, "future", date(2030, 7, 1), date(2030, 7, 2), models.StatusSoon)
	testutil.MustExec(t, conn, insert, "starting", date(2030, 6, 1), date(2030, 6, 20), models.StatusSoon)
	testutil.MustExec(t, conn, insert, "ending", date(2030, 5, 1), date(2030, 6, 5), models.StatusActive)
	testutil.MustExec(t, conn, insert, "done", date(2030, 1, 1), date(2030, 1, 2), models.StatusCompleted)

	store := NewStore(conn)
	due, err := store.Tournaments.ListForStatusUpdate(ctx, now)
	if err != nil {
		t.Fatalf("list for status update: %v", err)
	}
	names := map[string]bool{}
	for _, tr := range due {
		names[tr.Name] = true
	}
	if len(due) != 2 || !names["starting"] || !names["ending"] {
		t.Fatalf("unexpected tournaments: %v", names)
	}

	status := models.StatusCompleted
	completed, err := store.Tournaments.List(ctx, ListTournamentsFilter{Status: &status})
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 || completed[0].Name != "done" {
		t.Fatalf("unexpected completed tournaments: %+v", completed)
	}
}

func TestUserEmailConflict(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	store := NewStore(conn)

	user := &models.User{Email: "a@example.com", BirthYear: 1990, PasswordHash: "x"}
	store.Users.Add(user)
	if _, err := store.SaveChanges(ctx); err != nil {
		t.Fatalf("add user: %v", err)
	}

	got, err := store.Users.GetByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != user.ID || got.BirthYear != 1990 {
		t.Fatalf("unexpected user: %+v", got)
	}

	dup := NewStore(conn)
	dup.Users.Add(&models.User{Email: "a@example.com", BirthYear: 2000, PasswordHash: "y"})
	if _, err := dup.SaveChanges(ctx); !errors.Is(err, ErrUserEmailConflict) {
		t.Fatalf("expected ErrUserEmailConflict, got %v", err)
	}
	if _, err := dup.Users.GetByID(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
