package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/utils"
)

const (
	TeamNameMinLen       = 2
	TeamNameMaxLen       = 60
	MemberNameMinLen     = 3
	MemberNameMaxLen     = 60
	RosterMinSize        = 1
	RosterMaxSize        = 10
	DescriptionMaxLength = 2000
)

// TeamPatch — частичное изменение команды владельцем. nil — поле не меняется.
type TeamPatch struct {
	// Name владелец менять не может: переименование только через AdminUpdate.
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Members     *[]models.Member `json:"members"`
	LogoURL     *string          `json:"logo_url"`
	BannerURL   *string          `json:"banner_url"`
}

// touchesContent сообщает, затрагивает ли patch поля, закрытые в статусе pending.
func (p TeamPatch) touchesContent() bool {
	return p.Name != nil || p.Description != nil || p.Members != nil
}

// applyEdit — единственное правило перехода модерации при изменении контента.
//
// pending: разрешены только logo/banner, заметка админа очищается, статус не меняется.
// approved/rejected: применяется всё, статус сбрасывается в pending (transitioned=true).
func applyEdit(team models.Team, patch TeamPatch) (models.Team, bool, error) {
	team.Members = append([]models.Member{}, team.Members...)

	if team.Status == models.TeamStatusPending {
		if patch.touchesContent() {
			return team, false, ErrTeamPendingLocked
		}
		applyImages(&team, patch)
		team.AdminNote = ""
		return team, false, nil
	}

	var v validator
	v.check(patch.Name == nil, "name", "team name can only be changed by an administrator")
	if patch.Description != nil {
		validateDescription(&v, *patch.Description)
	}
	var members []models.Member
	if patch.Members != nil {
		members = normalizeMembers(*patch.Members)
		validateRoster(&v, members)
	}
	if err := v.err(); err != nil {
		return team, false, err
	}

	if patch.Description != nil {
		team.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Members != nil {
		team.Members = members
	}
	applyImages(&team, patch)

	team.Status = models.TeamStatusPending
	team.AdminNote = ""
	return team, true, nil
}

func applyImages(team *models.Team, patch TeamPatch) {
	if patch.LogoURL != nil {
		team.LogoURL = strings.TrimSpace(*patch.LogoURL)
	}
	if patch.BannerURL != nil {
		team.BannerURL = strings.TrimSpace(*patch.BannerURL)
	}
}

// normalizeMembers обрезает пробелы и отбрасывает пустые строки состава.
func normalizeMembers(in []models.Member) []models.Member {
	out := make([]models.Member, 0, len(in))
	for _, m := range in {
		name := strings.TrimSpace(m.FullName)
		if name == "" {
			continue
		}
		out = append(out, models.Member{FullName: name})
	}
	return out
}

func validateTeamName(v *validator, name string) {
	n := utils.TrimmedLen(name)
	v.check(n > 0, "name", "team name is required")
	v.check(n == 0 || n >= TeamNameMinLen, "name", fmt.Sprintf("team name must be at least %d characters", TeamNameMinLen))
	v.check(n <= TeamNameMaxLen, "name", fmt.Sprintf("team name must be at most %d characters", TeamNameMaxLen))
	v.check(n == 0 || utils.ToSlug(name) != "", "name", "team name must contain letters or digits")
}

func validateDescription(v *validator, description string) {
	v.check(utils.TrimmedLen(description) <= DescriptionMaxLength, "description",
		fmt.Sprintf("description must be at most %d characters", DescriptionMaxLength))
}

func validateRoster(v *validator, members []models.Member) {
	v.check(len(members) >= RosterMinSize, "members", "add at least one player")
	v.check(len(members) <= RosterMaxSize, "members", fmt.Sprintf("at most %d players allowed", RosterMaxSize))

	seen := make(map[string]bool, len(members))
	for i, m := range members {
		n := utils.TrimmedLen(m.FullName)
		v.check(n >= MemberNameMinLen && n <= MemberNameMaxLen, "members",
			fmt.Sprintf("player #%d must be %d-%d characters", i+1, MemberNameMinLen, MemberNameMaxLen))

		key := strings.ToLower(m.FullName)
		v.check(!seen[key], "members", "duplicate players in roster")
		seen[key] = true
	}
}
