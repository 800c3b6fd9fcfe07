package services

import (
	"context"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/pkg/logger"
)

// StatsService serves the public site-wide totals.
type StatsService struct {
	campaigns CampaignStore
}

func NewStatsService(campaigns CampaignStore) *StatsService {
	return &StatsService{campaigns: campaigns}
}

// SiteStats reduces all live campaigns to totals. This read never errors:
// an empty campaign set or an unavailable backend both degrade to zeros,
// since the figure is informational and reads mutate nothing.
func (s *StatsService) SiteStats(ctx context.Context) models.SiteStats {
	stats, err := s.campaigns.Stats(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("Site stats unavailable, returning zeros")
		return models.SiteStats{}
	}
	return stats
}
