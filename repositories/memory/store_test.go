package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

func newTeam(owner, name, slug string) *models.Team {
	return &models.Team{
		OwnerUID:  owner,
		Name:      name,
		NameLower: name,
		Slug:      slug,
		Status:    models.TeamStatusPending,
		Members:   []models.Member{{FullName: "Anna Kowalska"}},
	}
}

func TestTeamUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	teams := NewStore().Teams()

	if err := teams.Create(ctx, newTeam("u1", "alpha", "alpha")); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name string
		team *models.Team
		want error
	}{
		{"same owner", newTeam("u1", "beta", "beta"), repositories.ErrTeamOwnerConflict},
		{"same name", newTeam("u2", "alpha", "alpha-2"), repositories.ErrTeamNameConflict},
		{"same slug", newTeam("u3", "gamma", "alpha"), repositories.ErrTeamSlugConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := teams.Create(ctx, tt.team); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTeamCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	teams := NewStore().Teams()

	team := newTeam("u1", "alpha", "alpha")
	if err := teams.Create(ctx, team); err != nil {
		t.Fatalf("create: %v", err)
	}
	team.Members[0].FullName = "changed"

	got, err := teams.GetByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Members[0].FullName != "Anna Kowalska" {
		t.Fatalf("stored members mutated through caller slice: %+v", got.Members)
	}
}

func TestRegistrationUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	regs := NewStore().Registrations()

	first := &models.Registration{TournamentID: 1, TeamID: 10, OwnerUID: "u1"}
	if err := regs.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, reg := range []*models.Registration{
		{TournamentID: 1, TeamID: 10, OwnerUID: "u2"},
		{TournamentID: 1, TeamID: 11, OwnerUID: "u1"},
	} {
		if err := regs.Create(ctx, reg); !errors.Is(err, repositories.ErrRegistrationConflict) {
			t.Fatalf("err = %v, want ErrRegistrationConflict", err)
		}
	}

	if err := regs.Create(ctx, &models.Registration{TournamentID: 2, TeamID: 10, OwnerUID: "u1"}); err != nil {
		t.Fatalf("other tournament should be accepted: %v", err)
	}
}

func TestRegistrationsListedInCreationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	regs := store.Registrations()

	for i, owner := range []string{"c", "a", "b"} {
		if err := regs.Create(ctx, &models.Registration{TournamentID: 1, TeamID: i + 1, OwnerUID: owner}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := regs.ListByTournament(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var owners string
	for _, r := range list {
		owners += r.OwnerUID
	}
	if owners != "cab" {
		t.Fatalf("order = %q, want %q", owners, "cab")
	}

	n, err := regs.DeleteByTournament(ctx, 1)
	if err != nil || n != 3 {
		t.Fatalf("DeleteByTournament = %d, %v; want 3, nil", n, err)
	}
}
