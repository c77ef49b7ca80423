package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

func TestRegisterWindowAndCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teamA := env.createTeam(t, "owner-a", "Drużyna A")
	teamB := env.createTeam(t, "owner-b", "Drużyna B")
	env.approve(t, teamA)
	env.approve(t, teamB)
	cup := env.createTournament(t, CreateTournamentInput{
		Title:        "Puchar Styczniowy",
		Status:       "published",
		RegStartAt:   "2025-01-01T00:00:00Z",
		RegEndAt:     "2025-01-10T00:00:00Z",
		EventStartAt: "2025-01-12T00:00:00Z",
		TeamLimit:    ptr(1),
	})

	steps := []struct {
		at          string
		owner       string
		wantCode    Code
		wantCreated bool
	}{
		{"2025-01-05T00:00:00Z", "owner-a", "", true},
		{"2025-01-06T00:00:00Z", "owner-b", CodeTournamentFull, false},
		{"2025-01-07T00:00:00Z", "owner-a", "", false},
		{"2024-12-31T00:00:00Z", "owner-b", CodeRegistrationNotStarted, false},
		{"2025-01-11T00:00:00Z", "owner-b", CodeRegistrationClosed, false},
	}

	for _, step := range steps {
		env.clock.Set(t, step.at)
		res, err := env.registrations.Register(ctx, step.owner, cup.Slug)
		if step.wantCode != "" {
			assertCode(t, err, step.wantCode)
			continue
		}
		if err != nil {
			t.Fatalf("%s %s: %v", step.at, step.owner, err)
		}
		if res.Created != step.wantCreated {
			t.Errorf("%s %s: created = %v, want %v", step.at, step.owner, res.Created, step.wantCreated)
		}
	}

	if n, _ := env.store.Registrations().CountByTournament(ctx, cup.ID); n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestRegisterWindowIsInclusive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team := env.createTeam(t, "owner-a", "Drużyna A")
	env.approve(t, team)
	cup := env.createTournament(t, publishedTournament("Puchar", 4))

	for _, at := range []string{"2025-01-01T00:00:00Z", "2025-01-10T00:00:00Z"} {
		env.clock.Set(t, at)
		if _, err := env.registrations.Register(ctx, "owner-a", cup.Slug); err != nil {
			t.Errorf("Register at %s: %v", at, err)
		}
	}
}

func TestRegisterPreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createTeam(t, "owner-pending", "Oczekujący")
	cup := env.createTournament(t, publishedTournament("Puchar", 4))
	draft := publishedTournament("Szkic", 4)
	draft.Status = "draft"
	env.createTournament(t, draft)
	env.clock.Set(t, "2025-01-05T00:00:00Z")

	tests := []struct {
		name  string
		owner string
		slug  string
		want  Code
	}{
		{"unknown tournament", "owner-pending", "nope", CodeTournamentNotFound},
		{"draft tournament", "owner-pending", "szkic", CodeTournamentNotFound},
		{"no team", "owner-none", cup.Slug, CodeNeedTeam},
		{"team not approved", "owner-pending", " PUCHAR ", CodeTeamNotApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.registrations.Register(ctx, tt.owner, tt.slug)
			assertCode(t, err, tt.want)
		})
	}
}

func TestRegisterTwiceIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team := env.createTeam(t, "owner-a", "Drużyna A")
	env.approve(t, team)
	cup := env.createTournament(t, publishedTournament("Puchar", 4))
	env.clock.Set(t, "2025-01-05T00:00:00Z")

	first, err := env.registrations.Register(ctx, "owner-a", cup.Slug)
	if err != nil || !first.Created {
		t.Fatalf("first Register = (%+v, %v)", first, err)
	}
	second, err := env.registrations.Register(ctx, "owner-a", cup.Slug)
	if err != nil || second.Created {
		t.Fatalf("second Register = (%+v, %v), want updated", second, err)
	}
	if second.Registration.ID != first.Registration.ID {
		t.Errorf("second registration id = %d, want %d", second.Registration.ID, first.Registration.ID)
	}
	if n, _ := env.store.Registrations().CountByTournament(ctx, cup.ID); n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestReRegisterRefreshesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team := env.createTeam(t, "owner-a", "Drużyna A")
	env.approve(t, team)
	cup := env.createTournament(t, publishedTournament("Puchar", 4))
	env.clock.Set(t, "2025-01-05T00:00:00Z")

	if _, err := env.registrations.Register(ctx, "owner-a", cup.Slug); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := env.teams.AdminUpdate(ctx, team.ID, AdminTeamPatch{Name: ptr("Nowa Nazwa")}); err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	res, err := env.registrations.Register(ctx, "owner-a", cup.Slug)
	if err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if res.Registration.TeamName != "Nowa Nazwa" || res.Registration.TeamSlug != "nowa-nazwa" {
		t.Errorf("snapshot = %q/%q", res.Registration.TeamName, res.Registration.TeamSlug)
	}
}

func TestListRegistrations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cup := env.createTournament(t, publishedTournament("Puchar", 5))
	var teams []*models.Team
	for i, owner := range []string{"owner-1", "owner-2", "owner-3"} {
		env.clock.Set(t, []string{"2025-01-02T00:00:00Z", "2025-01-03T00:00:00Z", "2025-01-04T00:00:00Z"}[i])
		team := env.createTeam(t, owner, "Team "+owner)
		env.approve(t, team)
		if _, err := env.registrations.Register(ctx, owner, cup.Slug); err != nil {
			t.Fatalf("Register(%s): %v", owner, err)
		}
		teams = append(teams, team)
	}

	// owner-2 edits and falls back to pending, owner-3 deletes the team row
	// without the cascade, leaving an orphaned registration.
	if _, err := env.teams.UpdateSelf(ctx, "owner-2", TeamPatch{Description: ptr("nowy opis")}); err != nil {
		t.Fatalf("UpdateSelf: %v", err)
	}
	if err := env.store.Teams().Delete(ctx, teams[2].ID); err != nil {
		t.Fatalf("Delete team: %v", err)
	}

	list, err := env.registrations.ListRegistrations(ctx, cup.Slug)
	if err != nil {
		t.Fatalf("ListRegistrations: %v", err)
	}
	if list.Stats.Count != 1 || list.Stats.Limit != 5 {
		t.Errorf("stats = %+v, want {1 5}", list.Stats)
	}
	if len(list.Items) != 1 || list.Items[0].TeamSlug != "team-owner-1" {
		t.Errorf("items = %+v", list.Items)
	}

	_, err = env.registrations.ListRegistrations(ctx, "missing")
	assertCode(t, err, CodeTournamentNotFound)
}

func TestListRegistrationsKeepsRegistrationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cup := env.createTournament(t, publishedTournament("Puchar", 5))
	second := env.createTeam(t, "owner-2", "Druga")
	first := env.createTeam(t, "owner-1", "Pierwsza")
	env.approve(t, first)
	env.approve(t, second)

	env.clock.Set(t, "2025-01-02T00:00:00Z")
	env.registrations.Register(ctx, "owner-1", cup.Slug)
	env.clock.Set(t, "2025-01-03T00:00:00Z")
	env.registrations.Register(ctx, "owner-2", cup.Slug)

	list, err := env.registrations.ListRegistrations(ctx, cup.Slug)
	if err != nil {
		t.Fatalf("ListRegistrations: %v", err)
	}
	if len(list.Items) != 2 || list.Items[0].TeamSlug != "pierwsza" || list.Items[1].TeamSlug != "druga" {
		t.Errorf("items = %+v, want pierwsza then druga", list.Items)
	}
}

// staleLookupRepo не видит существующую регистрацию, как параллельный запрос
// до коммита соседнего.
type staleLookupRepo struct {
	repositories.RegistrationRepository
}

func (staleLookupRepo) FindByTournamentAndOwner(context.Context, int, string) (*models.Registration, error) {
	return nil, repositories.ErrRegistrationNotFound
}

func TestRegisterUniqueViolationIsAlreadyRegistered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.clock.Set(t, "2025-01-05T00:00:00Z")

	team := env.createTeam(t, "owner-1", "Orły")
	env.approve(t, team)
	cup := env.createTournament(t, publishedTournament("Puchar Zatoki", 8))

	if _, err := env.registrations.Register(ctx, "owner-1", cup.Slug); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	racing := NewRegistrationService(staleLookupRepo{env.store.Registrations()},
		env.store.Teams(), env.store.Tournaments(), logger, env.clock.Now)

	_, err := racing.Register(ctx, "owner-1", cup.Slug)
	assertCode(t, err, CodeAlreadyRegistered)

	if n, _ := env.store.Registrations().CountByTournament(ctx, cup.ID); n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestRegisterConcurrentSameOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.clock.Set(t, "2025-01-05T00:00:00Z")

	team := env.createTeam(t, "owner-1", "Orły")
	env.approve(t, team)
	cup := env.createTournament(t, publishedTournament("Puchar Zatoki", 8))

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.registrations.Register(ctx, "owner-1", cup.Slug)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if res.Created {
				created++
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	for _, err := range errs {
		if code := ErrorCode(err); code != CodeAlreadyRegistered {
			t.Errorf("unexpected error %v (code %q)", err, code)
		}
	}
	if n, _ := env.store.Registrations().CountByTournament(ctx, cup.ID); n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}
