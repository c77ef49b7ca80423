package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/spikezone/cache"
	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	publicStatsCacheKey = "public:stats"
	publicStatsTTL      = 15 * time.Second
)

type StatsService interface {
	PublicStats(ctx context.Context) (models.PublicStats, error)
	StatsInvalidator
}

// StatsInvalidator сбрасывает закэшированные счётчики после изменений.
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

type statsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	cache          cache.Cache
	logger         *slog.Logger
	now            func() time.Time
}

func NewStatsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	c cache.Cache,
	logger *slog.Logger,
	now func() time.Time,
) StatsService {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &statsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		cache:          c,
		logger:         logger,
		now:            now,
	}
}

func (s *statsService) PublicStats(ctx context.Context) (models.PublicStats, error) {
	var stats models.PublicStats

	cached, err := s.cache.Get(ctx, publicStatsCacheKey)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(cached, &stats); jsonErr == nil {
			return stats, nil
		}
	case !errors.Is(err, cache.ErrMiss):
		s.logger.WarnContext(ctx, "stats cache read failed", slog.Any("error", err))
	}

	published := models.TournamentStatusPublished
	approved := models.TeamStatusApproved
	now := s.now()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.tournamentRepo.Count(gCtx, repositories.ListTournamentsFilter{Status: &published})
		stats.TournamentsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.tournamentRepo.Count(gCtx, repositories.ListTournamentsFilter{Status: &published, EventStartFrom: &now})
		stats.TournamentsUpcoming = n
		return err
	})
	g.Go(func() error {
		n, err := s.teamRepo.Count(gCtx, repositories.ListTeamsFilter{})
		stats.TeamsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.teamRepo.Count(gCtx, repositories.ListTeamsFilter{Status: &approved})
		stats.TeamsApproved = n
		return err
	})
	if err := g.Wait(); err != nil {
		return models.PublicStats{}, fmt.Errorf("failed to count public stats: %w", err)
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, publicStatsCacheKey, data, publicStatsTTL); err != nil {
			s.logger.WarnContext(ctx, "stats cache write failed", slog.Any("error", err))
		}
	}
	return stats, nil
}

func (s *statsService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, publicStatsCacheKey); err != nil {
		s.logger.WarnContext(ctx, "stats cache invalidation failed", slog.Any("error", err))
	}
}

func invalidateStats(ctx context.Context, stats StatsInvalidator) {
	if stats != nil {
		stats.Invalidate(ctx)
	}
}
