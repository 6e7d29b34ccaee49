package service

import (
	"context"
	"time"

	"github.com/afftrack/afftrack/internal/model"
	"github.com/afftrack/afftrack/internal/repository"
)

// statsWindow is the rolling window for the recent-clicks rollup.
const statsWindow = 30 * 24 * time.Hour

// StatsService computes read-only rollups on demand. No caching layer:
// every snapshot goes to the store.
type StatsService struct {
	repo *repository.Repository
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo *repository.Repository) *StatsService {
	return &StatsService{repo: repo}
}

// Snapshot gathers the five rollup values. Each is an independent read;
// no point-in-time consistency is guaranteed across them. totalClicks sums
// the cached per-link counters, clicksLast30Days counts event-log rows, so
// the two can legitimately differ.
func (s *StatsService) Snapshot(ctx context.Context) (*model.StatsSnapshot, error) {
	total, active, err := s.repo.CountLinks(ctx)
	if err != nil {
		return nil, err
	}

	totalClicks, err := s.repo.SumClickCounts(ctx)
	if err != nil {
		return nil, err
	}

	recentClicks, err := s.repo.CountClickEventsSince(ctx, time.Now().UTC().Add(-statsWindow))
	if err != nil {
		return nil, err
	}

	topLink, err := s.repo.TopLink(ctx)
	if err != nil {
		return nil, err
	}

	return &model.StatsSnapshot{
		TotalLinks:       total,
		ActiveLinks:      active,
		TotalClicks:      totalClicks,
		ClicksLast30Days: recentClicks,
		TopLink:          topLink,
	}, nil
}
