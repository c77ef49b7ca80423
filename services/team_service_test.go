package services

import (
	"context"
	"testing"

	"github.com/Dosada05/spikezone/models"
)

func TestCreateTeamValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateTeamInput
		field string
	}{
		{"short name", CreateTeamInput{Name: " A ", Members: members("Anna Kowalska")}, "name"},
		{"no members", CreateTeamInput{Name: "Orły", Members: members("", " ")}, "members"},
		{"short member", CreateTeamInput{Name: "Orły", Members: members("Jo")}, "members"},
		{"duplicate member", CreateTeamInput{Name: "Orły", Members: members("Jan Nowak", "jan nowak")}, "members"},
		{"punctuation only", CreateTeamInput{Name: "!!!", Members: members("Anna Kowalska")}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.teams.CreateTeam(context.Background(), "owner-1", tt.input)
			assertCode(t, err, CodeValidation)

			verr := err.(*ValidationError)
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want key %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestCreateTeamUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team := env.createTeam(t, "owner-1", "Orły Białej")
	if team.Slug != "orly-bialej" {
		t.Errorf("slug = %q, want orly-bialej", team.Slug)
	}
	if team.Status != models.TeamStatusPending {
		t.Errorf("status = %s, want pending", team.Status)
	}

	tests := []struct {
		name  string
		owner string
		team  string
		want  error
	}{
		{"second team for owner", "owner-1", "Inna Drużyna", ErrTeamAlreadyExists},
		{"name differs only by case", "owner-2", "ORŁY BIAŁEJ", ErrTeamNameConflict},
		{"same slug different name", "owner-3", "Orly Bialej", ErrTeamSlugConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.teams.CreateTeam(ctx, tt.owner, CreateTeamInput{Name: tt.team, Members: members("Anna Kowalska")})
			assertIs(t, err, tt.want)
			assertCode(t, err, CodeConflict)
		})
	}
}

func TestGetMyTeamRoundTripsRosterOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if got, err := env.teams.GetMyTeam(ctx, "owner-1"); err != nil || got != nil {
		t.Fatalf("GetMyTeam before create = (%v, %v), want (nil, nil)", got, err)
	}

	env.createTeam(t, "owner-1", "Orły")

	got, err := env.teams.GetMyTeam(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetMyTeam: %v", err)
	}
	want := []string{"Anna Kowalska", "Jan Nowak"}
	if len(got.Members) != len(want) {
		t.Fatalf("members = %v, want %v", got.Members, want)
	}
	for i, name := range want {
		if got.Members[i].FullName != name {
			t.Errorf("member %d = %q, want %q", i, got.Members[i].FullName, name)
		}
	}
}

func TestUpdateSelfWhilePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createTeam(t, "owner-1", "Orły")

	team, err := env.teams.UpdateSelf(ctx, "owner-1", TeamPatch{BannerURL: ptr("https://cdn.example.com/b.png")})
	if err != nil {
		t.Fatalf("banner update: %v", err)
	}
	if team.Status != models.TeamStatusPending || team.BannerURL != "https://cdn.example.com/b.png" {
		t.Fatalf("after banner update: status=%s banner=%q", team.Status, team.BannerURL)
	}

	_, err = env.teams.UpdateSelf(ctx, "owner-1", TeamPatch{Description: ptr("new description")})
	assertCode(t, err, CodeForbidden)

	_, err = env.teams.UpdateSelf(ctx, "owner-1", TeamPatch{Name: ptr("Inna")})
	assertCode(t, err, CodeForbidden)

	stored, _ := env.teams.GetMyTeam(ctx, "owner-1")
	if stored.Description != "" {
		t.Errorf("description changed to %q despite rejection", stored.Description)
	}
}

func TestUpdateSelfAfterApprovalReturnsToPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "owner-1", "Orły")

	if _, err := env.teams.SetModeration(ctx, team.ID, models.TeamStatusApproved, "  looks good  "); err != nil {
		t.Fatalf("SetModeration: %v", err)
	}
	approved, _ := env.teams.GetMyTeam(ctx, "owner-1")
	if approved.AdminNote != "looks good" {
		t.Errorf("admin note = %q, want trimmed", approved.AdminNote)
	}

	updated, err := env.teams.UpdateSelf(ctx, "owner-1", TeamPatch{Description: ptr("Nowy opis")})
	if err != nil {
		t.Fatalf("UpdateSelf: %v", err)
	}
	if updated.Status != models.TeamStatusPending {
		t.Errorf("status = %s, want pending", updated.Status)
	}
	if updated.AdminNote != "" {
		t.Errorf("admin note = %q, want cleared", updated.AdminNote)
	}
	if updated.Description != "Nowy opis" {
		t.Errorf("description = %q", updated.Description)
	}
}

func TestUpdateSelfRejectsRenameWhenNotPending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "owner-1", "Orły")
	if _, err := env.teams.SetModeration(ctx, team.ID, models.TeamStatusApproved, ""); err != nil {
		t.Fatalf("SetModeration: %v", err)
	}

	_, err := env.teams.UpdateSelf(ctx, "owner-1", TeamPatch{Name: ptr("Inna")})
	assertCode(t, err, CodeValidation)

	stored, _ := env.teams.GetMyTeam(ctx, "owner-1")
	if stored.Name != "Orły" || stored.Status != models.TeamStatusApproved {
		t.Errorf("team changed despite rejection: name=%q status=%s", stored.Name, stored.Status)
	}
}

func TestUpdateSelfWithoutTeam(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.teams.UpdateSelf(context.Background(), "nobody", TeamPatch{LogoURL: ptr("x")})
	assertCode(t, err, CodeNotFound)
}

func TestSetModeration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "owner-1", "Orły")

	_, err := env.teams.SetModeration(ctx, team.ID, models.TeamStatus("banned"), "")
	assertCode(t, err, CodeValidation)

	_, err = env.teams.SetModeration(ctx, 999, models.TeamStatusApproved, "")
	assertCode(t, err, CodeNotFound)

	rejected, err := env.teams.SetModeration(ctx, team.ID, models.TeamStatusRejected, "zmień logo")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.TeamStatusRejected || rejected.Name != "Orły" {
		t.Errorf("rejected team = %+v", rejected)
	}
}

func TestCheckNameAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createTeam(t, "owner-1", "Orły")

	tests := []struct {
		name      string
		query     string
		available bool
		code      Code
	}{
		{"taken any case", "  orŁY ", false, ""},
		{"free", "Sokoły", true, ""},
		{"empty", "   ", false, CodeValidation},
		{"too short", "X", false, CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.teams.CheckNameAvailable(ctx, tt.query)
			if tt.code != "" {
				assertCode(t, err, tt.code)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.available {
				t.Errorf("available = %v, want %v", got, tt.available)
			}
		})
	}
}

func TestPublicTeamProjections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createTeam(t, "owner-1", "Orły")
	env.clock.Set(t, "2025-01-02T00:00:00Z")
	second := env.createTeam(t, "owner-2", "Sokoły")
	env.createTeam(t, "owner-3", "Jastrzębie")
	env.approve(t, first)
	env.approve(t, second)

	approved, err := env.teams.ListApproved(ctx)
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(approved) != 2 || approved[0].ID != second.ID || approved[1].ID != first.ID {
		t.Fatalf("approved = %+v, want newest first [%d %d]", approved, second.ID, first.ID)
	}

	all, _ := env.teams.ListAll(ctx)
	if len(all) != 3 {
		t.Errorf("ListAll len = %d, want 3", len(all))
	}

	if _, err := env.teams.GetApprovedBySlug(ctx, " SOKOLY "); err != nil {
		t.Errorf("GetApprovedBySlug(approved): %v", err)
	}
	_, err = env.teams.GetApprovedBySlug(ctx, "jastrzebie")
	assertCode(t, err, CodeNotFound)
}

func TestAdminUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.createTeam(t, "owner-1", "Orły")
	env.createTeam(t, "owner-2", "Sokoły")
	env.approve(t, team)

	updated, err := env.teams.AdminUpdate(ctx, team.ID, AdminTeamPatch{Name: ptr("Białe Orły")})
	if err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	if updated.Slug != "biale-orly" || updated.NameLower != "białe orły" {
		t.Errorf("slug=%q name_lower=%q", updated.Slug, updated.NameLower)
	}
	if updated.Status != models.TeamStatusApproved {
		t.Errorf("status = %s, admin edit must not touch moderation", updated.Status)
	}

	_, err = env.teams.AdminUpdate(ctx, team.ID, AdminTeamPatch{Name: ptr("SOKOŁY")})
	assertIs(t, err, ErrTeamNameConflict)

	_, err = env.teams.AdminUpdate(ctx, team.ID, AdminTeamPatch{Slug: ptr("Sokoły")})
	assertIs(t, err, ErrTeamSlugConflict)

	_, err = env.teams.AdminUpdate(ctx, 999, AdminTeamPatch{})
	assertCode(t, err, CodeNotFound)
}

func TestDeleteSelfCascadesRegistrations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team := env.createTeam(t, "owner-1", "Orły")
	env.approve(t, team)
	tournament := env.createTournament(t, publishedTournament("Puchar Zimy", 8))

	env.clock.Set(t, "2025-01-05T00:00:00Z")
	if _, err := env.registrations.Register(ctx, "owner-1", tournament.Slug); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := env.teams.DeleteSelf(ctx, "owner-1"); err != nil {
		t.Fatalf("DeleteSelf: %v", err)
	}
	if n, _ := env.store.Registrations().CountByTournament(ctx, tournament.ID); n != 0 {
		t.Errorf("registrations after team delete = %d, want 0", n)
	}

	err := env.teams.DeleteSelf(ctx, "owner-1")
	assertCode(t, err, CodeNotFound)
}
