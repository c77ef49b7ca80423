package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/spikezone/cache"
	"github.com/Dosada05/spikezone/models"
)

type mapCache struct {
	data map[string][]byte
	sets int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	c.sets++
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestPublicStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	past := publishedTournament("Stary", 4)
	past.RegStartAt, past.RegEndAt, past.EventStartAt = "2024-01-01T00:00:00Z", "2024-01-10T00:00:00Z", "2024-01-15T00:00:00Z"
	env.createTournament(t, past)
	env.createTournament(t, publishedTournament("Nowy", 4))
	draft := publishedTournament("Szkic", 4)
	draft.Status = "draft"
	env.createTournament(t, draft)

	approved := env.createTeam(t, "owner-1", "Orły")
	env.approve(t, approved)
	env.createTeam(t, "owner-2", "Sokoły")

	c := &mapCache{data: map[string][]byte{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := NewStatsService(env.store.Tournaments(), env.store.Teams(), c, logger, env.clock.Now)

	got, err := stats.PublicStats(ctx)
	if err != nil {
		t.Fatalf("PublicStats: %v", err)
	}
	want := models.PublicStats{TournamentsTotal: 2, TournamentsUpcoming: 1, TeamsTotal: 2, TeamsApproved: 1}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}

	env.createTeam(t, "owner-3", "Jastrzębie")
	cached, err := stats.PublicStats(ctx)
	if err != nil {
		t.Fatalf("cached PublicStats: %v", err)
	}
	if cached != want || c.sets != 1 {
		t.Errorf("cached stats = %+v (sets=%d), want %+v from cache", cached, c.sets, want)
	}
}

func TestPublicStatsInvalidatedByMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := &mapCache{data: map[string][]byte{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := NewStatsService(env.store.Tournaments(), env.store.Teams(), c, logger, env.clock.Now)
	teams := NewTeamService(env.store.Teams(), env.registrations, stats, logger)
	tournaments := NewTournamentService(env.store.Tournaments(), env.registrations, stats, logger, env.clock.Now)

	warm := func(t *testing.T) {
		t.Helper()
		if _, err := stats.PublicStats(ctx); err != nil {
			t.Fatalf("PublicStats: %v", err)
		}
		if _, ok := c.data[publicStatsCacheKey]; !ok {
			t.Fatal("stats not cached")
		}
	}
	expectDropped := func(t *testing.T, what string) {
		t.Helper()
		if _, ok := c.data[publicStatsCacheKey]; ok {
			t.Errorf("%s: cached stats not invalidated", what)
		}
	}

	warm(t)
	team, err := teams.CreateTeam(ctx, "owner-1", CreateTeamInput{Name: "Orły", Members: members("Anna Kowalska")})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	expectDropped(t, "team create")

	warm(t)
	if _, err := teams.SetModeration(ctx, team.ID, models.TeamStatusApproved, ""); err != nil {
		t.Fatalf("SetModeration: %v", err)
	}
	expectDropped(t, "moderation")

	warm(t)
	cup, err := tournaments.Create(ctx, "admin-uid", publishedTournament("Puchar", 4))
	if err != nil {
		t.Fatalf("Create tournament: %v", err)
	}
	expectDropped(t, "tournament create")

	warm(t)
	if _, err := tournaments.Update(ctx, "admin-uid", cup.ID, UpdateTournamentInput{Status: ptr("draft")}); err != nil {
		t.Fatalf("Update tournament: %v", err)
	}
	expectDropped(t, "tournament update")

	warm(t)
	if err := tournaments.Delete(ctx, cup.ID); err != nil {
		t.Fatalf("Delete tournament: %v", err)
	}
	expectDropped(t, "tournament delete")

	warm(t)
	if err := teams.DeleteSelf(ctx, "owner-1"); err != nil {
		t.Fatalf("DeleteSelf: %v", err)
	}
	expectDropped(t, "team delete")

	got, err := stats.PublicStats(ctx)
	if err != nil {
		t.Fatalf("PublicStats: %v", err)
	}
	if got != (models.PublicStats{}) {
		t.Errorf("stats after deletes = %+v, want zero", got)
	}
}
