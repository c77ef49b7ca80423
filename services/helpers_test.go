package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories/memory"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Set(t *testing.T, value string) {
	t.Helper()
	c.now = mustTime(t, value)
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

type testEnv struct {
	store         *memory.Store
	clock         *testClock
	teams         TeamService
	tournaments   TournamentService
	registrations RegistrationService
	accounts      AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &testClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	store.SetClock(clock.Now)

	regs := NewRegistrationService(store.Registrations(), store.Teams(), store.Tournaments(), logger, clock.Now)
	return &testEnv{
		store:         store,
		clock:         clock,
		teams:         NewTeamService(store.Teams(), regs, nil, logger),
		tournaments:   NewTournamentService(store.Tournaments(), regs, nil, logger, clock.Now),
		registrations: regs,
		accounts:      NewAccountService(store.Accounts(), logger),
	}
}

func members(names ...string) []models.Member {
	out := make([]models.Member, len(names))
	for i, n := range names {
		out[i] = models.Member{FullName: n}
	}
	return out
}

func (e *testEnv) createTeam(t *testing.T, owner, name string) *models.Team {
	t.Helper()
	team, err := e.teams.CreateTeam(context.Background(), owner, CreateTeamInput{
		Name:    name,
		Members: members("Anna Kowalska", "Jan Nowak"),
	})
	if err != nil {
		t.Fatalf("CreateTeam(%s, %s): %v", owner, name, err)
	}
	return team
}

func (e *testEnv) approve(t *testing.T, team *models.Team) {
	t.Helper()
	if _, err := e.teams.SetModeration(context.Background(), team.ID, models.TeamStatusApproved, ""); err != nil {
		t.Fatalf("approve team %d: %v", team.ID, err)
	}
}

func (e *testEnv) createTournament(t *testing.T, input CreateTournamentInput) *models.Tournament {
	t.Helper()
	tournament, err := e.tournaments.Create(context.Background(), "admin-uid", input)
	if err != nil {
		t.Fatalf("create tournament %q: %v", input.Title, err)
	}
	return tournament
}

func publishedTournament(title string, limit int) CreateTournamentInput {
	return CreateTournamentInput{
		Title:        title,
		Status:       string(models.TournamentStatusPublished),
		RegStartAt:   "2025-01-01T00:00:00Z",
		RegEndAt:     "2025-01-10T00:00:00Z",
		EventStartAt: "2025-01-15T09:00:00Z",
		TeamLimit:    &limit,
	}
}

func assertCode(t *testing.T, err error, want Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	if got := ErrorCode(err); got != want {
		t.Fatalf("error code = %q (%v), want %q", got, err, want)
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func ptr[T any](v T) *T { return &v }
