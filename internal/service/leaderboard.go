package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"UD_loyalty_hook/internal/metrics"
	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/pkg/logger"
	"go.uber.org/zap"

	"github.com/robfig/cron/v3"
)

const DefaultLeaderboardSize = 100

// LeaderboardService serves a cached ranking of point balances refreshed on
// a cron schedule.
type LeaderboardService struct {
	repo LeaderboardRepository
	size int

	mu        sync.RWMutex
	entries   []*model.LeaderboardEntry
	updatedAt time.Time

	cron *cron.Cron
}

func NewLeaderboardService(repo LeaderboardRepository, size int) *LeaderboardService {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &LeaderboardService{
		repo: repo,
		size: size,
		cron: cron.New(cron.WithSeconds()),
	}
}

func (s *LeaderboardService) Refresh(ctx context.Context) error {
	entries, err := s.repo.TopBalances(ctx, s.size)
	if err != nil {
		metrics.LeaderboardRefreshTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to get top balances: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()

	metrics.LeaderboardRefreshTotal.WithLabelValues("success").Inc()
	return nil
}

// Start refreshes once and then on every tick of schedule (six-field cron
// expression or a descriptor such as "@every 30s").
func (s *LeaderboardService) Start(ctx context.Context, schedule string) error {
	log := logger.Logger()

	if err := s.Refresh(ctx); err != nil {
		log.Error("initial leaderboard refresh failed", zap.Error(err))
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.Refresh(ctx); err != nil {
			log.Error("leaderboard refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid leaderboard schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	log.Info("leaderboard refresh scheduled", zap.String("schedule", schedule))
	return nil
}

func (s *LeaderboardService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error) {
	s.mu.RLock()
	entries, fresh := s.entries, !s.updatedAt.IsZero()
	s.mu.RUnlock()

	if fresh {
		return entries, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries, nil
}

func (s *LeaderboardService) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
