package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
	"github.com/Dosada05/spikezone/utils"
)

const (
	defaultTournamentSlug = "turniej"
	slugInsertAttempts    = 5
)

type TournamentService interface {
	Create(ctx context.Context, actorUID string, input CreateTournamentInput) (*models.Tournament, error)
	Update(ctx context.Context, actorUID string, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListAll(ctx context.Context) ([]models.Tournament, error)
	ListPublished(ctx context.Context) ([]models.Tournament, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Tournament, error)
}

// CreateTournamentInput — тело запроса на создание. Даты в RFC 3339.
type CreateTournamentInput struct {
	Title        string `json:"title"`
	Slug         string `json:"slug"`
	Status       string `json:"status"`
	City         string `json:"city"`
	Venue        string `json:"venue"`
	Description  string `json:"description"`
	RegStartAt   string `json:"reg_start_at"`
	RegEndAt     string `json:"reg_end_at"`
	EventStartAt string `json:"event_start_at"`
	EventEndAt   string `json:"event_end_at"`
	TeamLimit    *int   `json:"team_limit"`
	EntryFee     *int   `json:"entry_fee"`
}

// UpdateTournamentInput — частичное обновление; nil означает "без изменений".
// Пустая строка в EventEndAt снимает дату окончания.
type UpdateTournamentInput struct {
	Title        *string `json:"title"`
	Slug         *string `json:"slug"`
	Status       *string `json:"status"`
	City         *string `json:"city"`
	Venue        *string `json:"venue"`
	Description  *string `json:"description"`
	RegStartAt   *string `json:"reg_start_at"`
	RegEndAt     *string `json:"reg_end_at"`
	EventStartAt *string `json:"event_start_at"`
	EventEndAt   *string `json:"event_end_at"`
	TeamLimit    *int    `json:"team_limit"`
	EntryFee     *int    `json:"entry_fee"`
}

// TournamentCascader удаляет записи, зависящие от турнира.
type TournamentCascader interface {
	CascadeDeleteByTournament(ctx context.Context, tournamentID int) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	cascade        TournamentCascader
	stats          StatsInvalidator
	logger         *slog.Logger
	now            func() time.Time
	randomSuffix   func() string
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	cascade TournamentCascader,
	stats StatsInvalidator,
	logger *slog.Logger,
	now func() time.Time,
) TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		cascade:        cascade,
		stats:          stats,
		logger:         logger,
		now:            now,
		randomSuffix: func() string {
			return strconv.Itoa(100000 + rand.Intn(900000))
		},
	}
}

func (s *tournamentService) Create(ctx context.Context, actorUID string, input CreateTournamentInput) (*models.Tournament, error) {
	var v validator

	title := strings.TrimSpace(input.Title)
	v.check(title != "", "title", "title is required")

	regStart := parseRequiredTime(&v, "reg_start_at", input.RegStartAt)
	regEnd := parseRequiredTime(&v, "reg_end_at", input.RegEndAt)
	eventStart := parseRequiredTime(&v, "event_start_at", input.EventStartAt)
	eventEnd := parseOptionalTime(&v, "event_end_at", input.EventEndAt)

	status := models.TournamentStatus(strings.TrimSpace(input.Status))
	if !status.Valid() {
		status = models.TournamentStatusDraft
	}

	t := &models.Tournament{
		Title:        title,
		Status:       status,
		City:         strings.TrimSpace(input.City),
		Venue:        strings.TrimSpace(input.Venue),
		Description:  strings.TrimSpace(input.Description),
		RegStartAt:   regStart,
		RegEndAt:     regEnd,
		EventStartAt: eventStart,
		EventEndAt:   eventEnd,
		TeamLimit:    models.DefaultTeamLimit,
		EntryFee:     0,
		CreatedByUID: actorUID,
		UpdatedByUID: actorUID,
	}
	if input.TeamLimit != nil {
		t.TeamLimit = *input.TeamLimit
	}
	if input.EntryFee != nil {
		t.EntryFee = *input.EntryFee
	}

	validateTournament(&v, t)
	if err := v.err(); err != nil {
		return nil, err
	}

	base := utils.ToSlug(input.Slug)
	if base == "" {
		base = utils.ToSlug(title)
	}
	if base == "" {
		base = defaultTournamentSlug
	}

	slug, err := s.uniqueSlug(ctx, base)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		t.Slug = slug
		err = s.tournamentRepo.Create(ctx, t)
		if err == nil {
			break
		}
		if !errors.Is(err, repositories.ErrTournamentSlugConflict) {
			return nil, fmt.Errorf("failed to create tournament: %w", err)
		}
		if attempt+1 >= slugInsertAttempts {
			return nil, ErrTournamentSlugConflict
		}
		slug = base + "-" + s.randomSuffix()
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID), slog.String("slug", t.Slug), slog.String("by", actorUID))
	invalidateStats(ctx, s.stats)
	return t, nil
}

// uniqueSlug возвращает base, если он свободен, иначе base с суффиксом из текущего времени.
func (s *tournamentService) uniqueSlug(ctx context.Context, base string) (string, error) {
	taken, err := s.tournamentRepo.ExistsBySlug(ctx, base, 0)
	if err != nil {
		return "", fmt.Errorf("failed to check tournament slug: %w", err)
	}
	if !taken {
		return base, nil
	}

	ms := strconv.FormatInt(s.now().UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return base + "-" + ms, nil
}

func (s *tournamentService) Update(ctx context.Context, actorUID string, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err, "get tournament")
	}

	var v validator

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		v.check(title != "", "title", "title is required")
		t.Title = title
	}
	if input.Status != nil {
		status := models.TournamentStatus(strings.TrimSpace(*input.Status))
		v.check(status.Valid(), "status", "status must be one of draft, published, archived")
		t.Status = status
	}
	if input.City != nil {
		t.City = strings.TrimSpace(*input.City)
	}
	if input.Venue != nil {
		t.Venue = strings.TrimSpace(*input.Venue)
	}
	if input.Description != nil {
		t.Description = strings.TrimSpace(*input.Description)
	}
	if input.RegStartAt != nil {
		t.RegStartAt = parseRequiredTime(&v, "reg_start_at", *input.RegStartAt)
	}
	if input.RegEndAt != nil {
		t.RegEndAt = parseRequiredTime(&v, "reg_end_at", *input.RegEndAt)
	}
	if input.EventStartAt != nil {
		t.EventStartAt = parseRequiredTime(&v, "event_start_at", *input.EventStartAt)
	}
	if input.EventEndAt != nil {
		t.EventEndAt = parseOptionalTime(&v, "event_end_at", *input.EventEndAt)
	}
	if input.TeamLimit != nil {
		t.TeamLimit = *input.TeamLimit
	}
	if input.EntryFee != nil {
		t.EntryFee = *input.EntryFee
	}

	var slug string
	switch {
	case input.Slug != nil && strings.TrimSpace(*input.Slug) != "":
		slug = utils.ToSlug(*input.Slug)
		v.check(slug != "", "slug", "slug must contain letters or digits")
	case input.Title != nil:
		slug = utils.ToSlug(t.Title)
	}

	validateTournament(&v, t)
	if err := v.err(); err != nil {
		return nil, err
	}

	if slug != "" && slug != t.Slug {
		taken, err := s.tournamentRepo.ExistsBySlug(ctx, slug, t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check tournament slug: %w", err)
		}
		if taken {
			return nil, ErrTournamentSlugConflict
		}
		t.Slug = slug
	}

	t.UpdatedByUID = actorUID
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err, "update tournament")
	}
	invalidateStats(ctx, s.stats)
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return mapTournamentRepoError(err, "delete tournament")
	}

	if s.cascade != nil {
		if err := s.cascade.CascadeDeleteByTournament(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "registration cascade failed after tournament delete",
				slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", id))
	invalidateStats(ctx, s.stats)
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTournamentRepoError(err, "get tournament")
	}
	return t, nil
}

func (s *tournamentService) ListAll(ctx context.Context) ([]models.Tournament, error) {
	return s.list(ctx, repositories.ListTournamentsFilter{Order: repositories.OrderEventStartDesc})
}

func (s *tournamentService) ListPublished(ctx context.Context) ([]models.Tournament, error) {
	status := models.TournamentStatusPublished
	return s.list(ctx, repositories.ListTournamentsFilter{Status: &status, Order: repositories.OrderEventStartAsc})
}

func (s *tournamentService) list(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	items, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if items == nil {
		return []models.Tournament{}, nil
	}
	return items, nil
}

func (s *tournamentService) GetPublishedBySlug(ctx context.Context, slug string) (*models.Tournament, error) {
	return getPublishedTournament(ctx, s.tournamentRepo, slug)
}

// getPublishedTournament — общий поиск опубликованного турнира для публичных операций.
func getPublishedTournament(ctx context.Context, repo repositories.TournamentRepository, slug string) (*models.Tournament, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrTournamentNotFound
	}

	t, err := repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapTournamentRepoError(err, "get tournament by slug")
	}
	if !t.IsPublished() {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

func validateTournament(v *validator, t *models.Tournament) {
	if !t.RegStartAt.IsZero() && !t.RegEndAt.IsZero() {
		v.check(t.RegEndAt.After(t.RegStartAt), "reg_end_at", "registration end must be after registration start")
	}
	if !t.RegEndAt.IsZero() && !t.EventStartAt.IsZero() {
		v.check(t.EventStartAt.After(t.RegEndAt), "event_start_at", "event start must be after registration end")
	}
	if t.EventEndAt != nil && !t.EventStartAt.IsZero() {
		v.check(!t.EventEndAt.Before(t.EventStartAt), "event_end_at", "event end must not be before event start")
	}
	v.check(t.TeamLimit >= 1, "team_limit", "team limit must be at least 1")
	v.check(t.EntryFee >= 0, "entry_fee", "entry fee must not be negative")
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseTime(value string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseRequiredTime(v *validator, field, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		v.check(false, field, field+" is required")
		return time.Time{}
	}
	t, ok := parseTime(value)
	v.check(ok, field, field+" must be a valid RFC 3339 date-time")
	return t
}

func parseOptionalTime(v *validator, field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, ok := parseTime(value)
	if !ok {
		v.check(false, field, field+" must be a valid RFC 3339 date-time")
		return nil
	}
	return &t
}

func mapTournamentRepoError(err error, op string) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentSlugConflict):
		return ErrTournamentSlugConflict
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
