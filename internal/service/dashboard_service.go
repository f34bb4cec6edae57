package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/formkit-api/internal/dto"
	"github.com/noah-isme/formkit-api/internal/observability"
	"github.com/noah-isme/formkit-api/internal/repository"
)

const recentFormsLimit = 5

// DashboardService produces aggregated owner metrics.
type DashboardService interface {
	Summary(ctx context.Context, ownerID uint) (dto.DashboardSummary, error)
	Invalidate(ctx context.Context, ownerID uint)
}

type dashboardService struct {
	repo     repository.DashboardRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. cache may be nil.
func NewDashboardService(repo repository.DashboardRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func dashboardCacheKey(ownerID uint) string {
	return fmt.Sprintf("dashboard:owner:%d", ownerID)
}

func (s *dashboardService) Summary(ctx context.Context, ownerID uint) (dto.DashboardSummary, error) {
	cacheKey := dashboardCacheKey(ownerID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var summary dto.DashboardSummary
			if unmarshalErr := json.Unmarshal([]byte(cached), &summary); unmarshalErr == nil {
				observability.DashboardCache().WithLabelValues("hit").Inc()
				s.logger.Debug().Uint("owner_id", ownerID).Msg("dashboard cache hit")
				return summary, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.DashboardCache().WithLabelValues("miss").Inc()
	}

	summary, err := s.build(ctx, ownerID)
	if err != nil {
		return dto.DashboardSummary{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return summary, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, ownerID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(ownerID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("owner_id", ownerID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) build(ctx context.Context, ownerID uint) (dto.DashboardSummary, error) {
	counts, err := s.repo.CountForms(ctx, ownerID)
	if err != nil {
		return dto.DashboardSummary{}, err
	}

	responses, err := s.repo.CountResponses(ctx, ownerID)
	if err != nil {
		return dto.DashboardSummary{}, err
	}

	attempts, err := s.repo.AttemptStats(ctx, ownerID)
	if err != nil {
		return dto.DashboardSummary{}, err
	}

	recent, err := s.repo.RecentForms(ctx, ownerID, recentFormsLimit)
	if err != nil {
		return dto.DashboardSummary{}, err
	}

	summary := dto.DashboardSummary{
		TotalForms:     counts.Total,
		PublishedForms: counts.Published,
		Quizzes:        counts.Quizzes,
		TotalResponses: responses,
		TotalAttempts:  attempts.Attempts,
		PassRate:       percentOf(attempts.Passed, attempts.Attempts),
		RecentForms:    dto.NewFormSummarySlice(recent),
		GeneratedAt:    s.now().UTC(),
	}
	if attempts.Average != nil {
		summary.AveragePercentage = *attempts.Average
	}
	return summary, nil
}
