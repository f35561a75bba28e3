package ports

import (
	"context"
	"time"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

// ArtistIDCache remembers which metadata id a searched name resolved to.
type ArtistIDCache interface {
	Get(ctx context.Context, name string) (int64, bool)
	Set(ctx context.Context, name string, id int64)
}

// AnalysisCache memoizes text analysis results.
type AnalysisCache interface {
	GetOrCompute(ctx context.Context, req domain.AnalysisRequest, compute func(context.Context) (domain.AnalysisResult, error)) (domain.AnalysisResult, error)
}

// RateLimiter decides whether a client exceeded its request budget for an endpoint.
type RateLimiter interface {
	IsLimited(ctx context.Context, clientID, endpoint string, maxRequests int, window time.Duration) (bool, error)
}
