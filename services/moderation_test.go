package services

import (
	"strings"
	"testing"

	"github.com/Dosada05/spikezone/models"
)

func TestApplyEdit(t *testing.T) {
	base := models.Team{
		ID:          1,
		Name:        "Orły",
		Description: "old",
		Members:     members("Anna Kowalska"),
		AdminNote:   "fix logo",
	}

	tests := []struct {
		name             string
		status           models.TeamStatus
		patch            TeamPatch
		wantErr          error
		wantStatus       models.TeamStatus
		wantTransitioned bool
	}{
		{
			name:       "pending banner only",
			status:     models.TeamStatusPending,
			patch:      TeamPatch{BannerURL: ptr("https://cdn/b.png")},
			wantStatus: models.TeamStatusPending,
		},
		{
			name:    "pending description locked",
			status:  models.TeamStatusPending,
			patch:   TeamPatch{Description: ptr("new")},
			wantErr: ErrTeamPendingLocked,
		},
		{
			name:    "pending members locked",
			status:  models.TeamStatusPending,
			patch:   TeamPatch{Members: ptr(members("Jan Nowak"))},
			wantErr: ErrTeamPendingLocked,
		},
		{
			name:             "approved description resets",
			status:           models.TeamStatusApproved,
			patch:            TeamPatch{Description: ptr("new")},
			wantStatus:       models.TeamStatusPending,
			wantTransitioned: true,
		},
		{
			name:             "rejected logo resets",
			status:           models.TeamStatusRejected,
			patch:            TeamPatch{LogoURL: ptr("https://cdn/l.png")},
			wantStatus:       models.TeamStatusPending,
			wantTransitioned: true,
		},
		{
			name:    "approved empty roster",
			status:  models.TeamStatusApproved,
			patch:   TeamPatch{Members: ptr(members("  ", ""))},
			wantErr: ErrValidationFailed,
		},
		{
			name:    "approved long description",
			status:  models.TeamStatusApproved,
			patch:   TeamPatch{Description: ptr(strings.Repeat("x", DescriptionMaxLength+1))},
			wantErr: ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := base
			team.Status = tt.status

			got, transitioned, err := applyEdit(team, tt.patch)
			if tt.wantErr != nil {
				assertIs(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if transitioned != tt.wantTransitioned {
				t.Errorf("transitioned = %v, want %v", transitioned, tt.wantTransitioned)
			}
			if got.AdminNote != "" {
				t.Errorf("admin note = %q, want cleared", got.AdminNote)
			}
		})
	}
}

func TestApplyEditDoesNotAliasMembers(t *testing.T) {
	team := models.Team{Status: models.TeamStatusApproved, Members: members("Anna Kowalska")}

	got, _, err := applyEdit(team, TeamPatch{LogoURL: ptr("x")})
	if err != nil {
		t.Fatalf("applyEdit: %v", err)
	}
	got.Members[0].FullName = "changed"
	if team.Members[0].FullName != "Anna Kowalska" {
		t.Fatal("applyEdit result shares members with input")
	}
}

func TestValidateRoster(t *testing.T) {
	tests := []struct {
		name    string
		members []models.Member
		wantErr bool
	}{
		{"one player", members("Anna Kowalska"), false},
		{"ten players", members("aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg", "hhh", "iii", "jjj"), false},
		{"eleven players", members("aaa", "bbb", "ccc", "ddd", "eee", "fff", "ggg", "hhh", "iii", "jjj", "kkk"), true},
		{"empty", nil, true},
		{"short name", members("ab"), true},
		{"long name", members(strings.Repeat("a", MemberNameMaxLen+1)), true},
		{"case-insensitive duplicate", members("Jan Nowak", "JAN NOWAK"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v validator
			validateRoster(&v, normalizeMembers(tt.members))
			if gotErr := v.err() != nil; gotErr != tt.wantErr {
				t.Errorf("validateRoster error = %v, want error %v", v.err(), tt.wantErr)
			}
		})
	}
}

func TestNormalizeMembersDropsBlanks(t *testing.T) {
	got := normalizeMembers(members("  Anna Kowalska ", "", "   ", "Jan Nowak"))
	want := []string{"Anna Kowalska", "Jan Nowak"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].FullName != want[i] {
			t.Errorf("member %d = %q, want %q", i, got[i].FullName, want[i])
		}
	}
}
