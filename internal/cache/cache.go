package cache

import (
	"context"
	"time"

	"teaops/backend/internal/domain"
)

type InsightCache interface {
	Get(ctx context.Context, key string) (*domain.DashboardInsights, bool, error)
	Set(ctx context.Context, key string, value *domain.DashboardInsights, ttl time.Duration) error
}

type NoopInsightCache struct{}

func (NoopInsightCache) Get(_ context.Context, _ string) (*domain.DashboardInsights, bool, error) {
	return nil, false, nil
}

func (NoopInsightCache) Set(_ context.Context, _ string, _ *domain.DashboardInsights, _ time.Duration) error {
	return nil
}
