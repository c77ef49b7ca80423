package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

type RegistrationService interface {
	Register(ctx context.Context, ownerUID, tournamentSlug string) (*RegisterResult, error)
	ListRegistrations(ctx context.Context, tournamentSlug string) (*models.RegistrationList, error)
	CascadeDeleteByTournament(ctx context.Context, tournamentID int) error
	CascadeDeleteByTeam(ctx context.Context, teamID int) error
}

// RegisterResult сообщает, была ли создана новая регистрация или обновлена существующая.
type RegisterResult struct {
	Created      bool                 `json:"created"`
	Registration *models.Registration `json:"registration"`
}

type registrationService struct {
	regRepo        repositories.RegistrationRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
	now            func() time.Time
}

func NewRegistrationService(
	regRepo repositories.RegistrationRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
	now func() time.Time,
) RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &registrationService{
		regRepo:        regRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
		now:            now,
	}
}

// Register регистрирует команду владельца на опубликованный турнир.
// Проверки идут строго по порядку, первая неудачная определяет код ошибки.
// Повторная регистрация того же владельца обновляет существующую запись
// и не проверяет лимит.
func (s *registrationService) Register(ctx context.Context, ownerUID, tournamentSlug string) (*RegisterResult, error) {
	tournament, err := getPublishedTournament(ctx, s.tournamentRepo, tournamentSlug)
	if err != nil {
		return nil, err
	}

	// Окно включительно с обеих сторон.
	now := s.now()
	if now.Before(tournament.RegStartAt) {
		return nil, ErrRegistrationNotStarted
	}
	if now.After(tournament.RegEndAt) {
		return nil, ErrRegistrationClosed
	}

	team, err := s.teamRepo.GetByOwner(ctx, ownerUID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNeedTeam
		}
		return nil, fmt.Errorf("failed to get team for %s: %w", ownerUID, err)
	}
	if team.Status != models.TeamStatusApproved {
		return nil, ErrTeamNotApproved
	}

	existing, err := s.regRepo.FindByTournamentAndOwner(ctx, tournament.ID, ownerUID)
	switch {
	case err == nil:
		existing.SetSnapshot(team)
		existing.TournamentSlug = tournament.Slug
		if err := s.regRepo.UpdateSnapshot(ctx, existing); err != nil {
			return nil, mapRegistrationRepoError(err, "update registration")
		}
		return &RegisterResult{Created: false, Registration: existing}, nil
	case !errors.Is(err, repositories.ErrRegistrationNotFound):
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}

	count, err := s.regRepo.CountByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= tournament.Limit() {
		return nil, ErrTournamentFull
	}

	reg := &models.Registration{
		TournamentID:   tournament.ID,
		TournamentSlug: tournament.Slug,
		OwnerUID:       ownerUID,
	}
	reg.SetSnapshot(team)

	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, mapRegistrationRepoError(err, "create registration")
	}

	s.logger.InfoContext(ctx, "team registered",
		slog.Int("tournament_id", tournament.ID), slog.Int("team_id", team.ID))
	return &RegisterResult{Created: true, Registration: reg}, nil
}

// ListRegistrations возвращает регистрации опубликованного турнира в порядке записи.
// Регистрации удалённых или не одобренных команд отбрасываются.
func (s *registrationService) ListRegistrations(ctx context.Context, tournamentSlug string) (*models.RegistrationList, error) {
	tournament, err := getPublishedTournament(ctx, s.tournamentRepo, tournamentSlug)
	if err != nil {
		return nil, err
	}

	regs, err := s.regRepo.ListByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	items := make([]models.RegistrationItem, 0, len(regs))
	if len(regs) > 0 {
		ids := make([]int, 0, len(regs))
		for _, r := range regs {
			ids = append(ids, r.TeamID)
		}

		approved := models.TeamStatusApproved
		teams, err := s.teamRepo.List(ctx, repositories.ListTeamsFilter{Status: &approved, IDs: ids})
		if err != nil {
			return nil, fmt.Errorf("failed to load registered teams: %w", err)
		}
		live := make(map[int]bool, len(teams))
		for _, t := range teams {
			live[t.ID] = true
		}

		for _, r := range regs {
			if !live[r.TeamID] {
				continue
			}
			items = append(items, models.RegistrationItem{
				TeamName:      r.TeamName,
				TeamSlug:      r.TeamSlug,
				TeamLogoURL:   r.TeamLogoURL,
				TeamBannerURL: r.TeamBannerURL,
				CreatedAt:     r.CreatedAt,
			})
		}
	}

	return &models.RegistrationList{
		Stats: models.RegistrationStats{Count: len(items), Limit: tournament.Limit()},
		Items: items,
	}, nil
}

func (s *registrationService) CascadeDeleteByTournament(ctx context.Context, tournamentID int) error {
	n, err := s.regRepo.DeleteByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete registrations of tournament %d: %w", tournamentID, err)
	}
	s.logger.DebugContext(ctx, "registrations removed", slog.Int("tournament_id", tournamentID), slog.Int64("count", n))
	return nil
}

func (s *registrationService) CascadeDeleteByTeam(ctx context.Context, teamID int) error {
	n, err := s.regRepo.DeleteByTeam(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete registrations of team %d: %w", teamID, err)
	}
	s.logger.DebugContext(ctx, "registrations removed", slog.Int("team_id", teamID), slog.Int64("count", n))
	return nil
}

func mapRegistrationRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrRegistrationConflict):
		return ErrAlreadyRegistered
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
