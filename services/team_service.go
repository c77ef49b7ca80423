package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
	"github.com/Dosada05/spikezone/utils"
)

type TeamService interface {
	CreateTeam(ctx context.Context, ownerUID string, input CreateTeamInput) (*models.Team, error)
	GetMyTeam(ctx context.Context, ownerUID string) (*models.Team, error)
	UpdateSelf(ctx context.Context, ownerUID string, patch TeamPatch) (*models.Team, error)
	DeleteSelf(ctx context.Context, ownerUID string) error
	CheckNameAvailable(ctx context.Context, name string) (bool, error)
	ListApproved(ctx context.Context) ([]models.Team, error)
	GetApprovedBySlug(ctx context.Context, slug string) (*models.Team, error)
	ListAll(ctx context.Context) ([]models.Team, error)
	SetModeration(ctx context.Context, teamID int, status models.TeamStatus, adminNote string) (*models.Team, error)
	AdminUpdate(ctx context.Context, teamID int, patch AdminTeamPatch) (*models.Team, error)
}

type CreateTeamInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Members     []models.Member `json:"members"`
	LogoURL     string          `json:"logo_url"`
	BannerURL   string          `json:"banner_url"`
}

// AdminTeamPatch — правка команды администратором. Статус модерации не трогает.
type AdminTeamPatch struct {
	Name        *string          `json:"name"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	Members     *[]models.Member `json:"members"`
	LogoURL     *string          `json:"logo_url"`
	BannerURL   *string          `json:"banner_url"`
}

// TeamCascader удаляет записи, зависящие от команды.
type TeamCascader interface {
	CascadeDeleteByTeam(ctx context.Context, teamID int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
	cascade  TeamCascader
	stats    StatsInvalidator
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, cascade TeamCascader, stats StatsInvalidator, logger *slog.Logger) TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &teamService{
		teamRepo: teamRepo,
		cascade:  cascade,
		stats:    stats,
		logger:   logger,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, ownerUID string, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	members := normalizeMembers(input.Members)

	var v validator
	validateTeamName(&v, name)
	validateDescription(&v, input.Description)
	validateRoster(&v, members)
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.GetByOwner(ctx, ownerUID); err == nil {
		return nil, ErrTeamAlreadyExists
	} else if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, fmt.Errorf("failed to check existing team for %s: %w", ownerUID, err)
	}

	nameLower := strings.ToLower(name)
	taken, err := s.teamRepo.ExistsByNameLower(ctx, nameLower)
	if err != nil {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}
	if taken {
		return nil, ErrTeamNameConflict
	}

	slug := utils.ToSlug(name)
	taken, err = s.teamRepo.ExistsBySlug(ctx, slug, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check team slug: %w", err)
	}
	if taken {
		return nil, ErrTeamSlugConflict
	}

	team := &models.Team{
		OwnerUID:    ownerUID,
		Name:        name,
		NameLower:   nameLower,
		Slug:        slug,
		LogoURL:     strings.TrimSpace(input.LogoURL),
		BannerURL:   strings.TrimSpace(input.BannerURL),
		Description: strings.TrimSpace(input.Description),
		Members:     members,
		Status:      models.TeamStatusPending,
	}

	// Уникальные индексы могут сработать при гонке между проверкой и вставкой.
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, mapTeamRepoError(err, "create team")
	}
	invalidateStats(ctx, s.stats)
	return team, nil
}

func (s *teamService) GetMyTeam(ctx context.Context, ownerUID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team for %s: %w", ownerUID, err)
	}
	return team, nil
}

func (s *teamService) UpdateSelf(ctx context.Context, ownerUID string, patch TeamPatch) (*models.Team, error) {
	team, err := s.teamRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		return nil, mapTeamRepoError(err, "get team")
	}

	updated, transitioned, err := applyEdit(*team, patch)
	if err != nil {
		return nil, err
	}

	if err := s.teamRepo.Update(ctx, &updated); err != nil {
		return nil, mapTeamRepoError(err, "update team")
	}
	if transitioned {
		s.logger.InfoContext(ctx, "team re-entered moderation",
			slog.Int("team_id", updated.ID), slog.String("previous_status", string(team.Status)))
		invalidateStats(ctx, s.stats)
	}
	return &updated, nil
}

func (s *teamService) DeleteSelf(ctx context.Context, ownerUID string) error {
	team, err := s.teamRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		return mapTeamRepoError(err, "get team")
	}

	if err := s.teamRepo.Delete(ctx, team.ID); err != nil {
		return mapTeamRepoError(err, "delete team")
	}

	if s.cascade != nil {
		if err := s.cascade.CascadeDeleteByTeam(ctx, team.ID); err != nil {
			s.logger.ErrorContext(ctx, "registration cascade failed after team delete",
				slog.Int("team_id", team.ID), slog.Any("error", err))
		}
	}
	invalidateStats(ctx, s.stats)
	return nil
}

func (s *teamService) CheckNameAvailable(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)

	var v validator
	validateTeamName(&v, name)
	if err := v.err(); err != nil {
		return false, err
	}

	taken, err := s.teamRepo.ExistsByNameLower(ctx, strings.ToLower(name))
	if err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return !taken, nil
}

func (s *teamService) ListApproved(ctx context.Context) ([]models.Team, error) {
	status := models.TeamStatusApproved
	return s.list(ctx, repositories.ListTeamsFilter{Status: &status})
}

func (s *teamService) GetApprovedBySlug(ctx context.Context, slug string) (*models.Team, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrTeamNotFound
	}

	team, err := s.teamRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapTeamRepoError(err, "get team by slug")
	}
	if team.Status != models.TeamStatusApproved {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

func (s *teamService) ListAll(ctx context.Context) ([]models.Team, error) {
	return s.list(ctx, repositories.ListTeamsFilter{})
}

func (s *teamService) list(ctx context.Context, filter repositories.ListTeamsFilter) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if teams == nil {
		return []models.Team{}, nil
	}
	return teams, nil
}

func (s *teamService) SetModeration(ctx context.Context, teamID int, status models.TeamStatus, adminNote string) (*models.Team, error) {
	if !status.Valid() {
		return nil, &ValidationError{Fields: map[string]string{
			"status": "status must be one of pending, approved, rejected",
		}}
	}

	team, err := s.teamRepo.UpdateModeration(ctx, teamID, status, strings.TrimSpace(adminNote))
	if err != nil {
		return nil, mapTeamRepoError(err, "update moderation")
	}

	s.logger.InfoContext(ctx, "team moderated",
		slog.Int("team_id", team.ID), slog.String("status", string(team.Status)))
	invalidateStats(ctx, s.stats)
	return team, nil
}

func (s *teamService) AdminUpdate(ctx context.Context, teamID int, patch AdminTeamPatch) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err, "get team")
	}

	originalLower := team.NameLower

	var v validator
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		validateTeamName(&v, name)
		team.Name = name
		team.NameLower = strings.ToLower(name)
		team.Slug = utils.ToSlug(name)
	}
	if patch.Slug != nil {
		if slug := utils.ToSlug(*patch.Slug); slug != "" {
			team.Slug = slug
		} else {
			v.check(false, "slug", "slug must contain letters or digits")
		}
	}
	if patch.Description != nil {
		validateDescription(&v, *patch.Description)
		team.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Members != nil {
		members := normalizeMembers(*patch.Members)
		validateRoster(&v, members)
		team.Members = members
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	applyImages(team, TeamPatch{LogoURL: patch.LogoURL, BannerURL: patch.BannerURL})

	if team.NameLower != originalLower {
		taken, err := s.teamRepo.ExistsByNameLower(ctx, team.NameLower)
		if err != nil {
			return nil, fmt.Errorf("failed to check team name: %w", err)
		}
		if taken {
			return nil, ErrTeamNameConflict
		}
	}
	taken, err := s.teamRepo.ExistsBySlug(ctx, team.Slug, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check team slug: %w", err)
	}
	if taken {
		return nil, ErrTeamSlugConflict
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapTeamRepoError(err, "update team")
	}
	return team, nil
}

func mapTeamRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamOwnerConflict):
		return ErrTeamAlreadyExists
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	case errors.Is(err, repositories.ErrTeamSlugConflict):
		return ErrTeamSlugConflict
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
