package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/internal/dto"
	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
)

const runKeyPrefix = "run:"

// CacheRepository abstracts the payload store behind the run cache.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService keeps run summaries close to the API. Backend failures are
// logged and reported as misses; a request never fails because of the cache.
type CacheService struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Run returns the cached summary of a run and whether it was found.
func (s *CacheService) Run(ctx context.Context, id string) (*dto.TimetableRunResponse, bool) {
	if !s.Enabled() {
		return nil, false
	}
	start := time.Now()
	var cached dto.TimetableRunResponse
	err := s.repo.Get(ctx, runKeyPrefix+id, &cached)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("run cache read failed", zap.String("run_id", id), zap.Error(err))
		}
		return nil, false
	}
	return &cached, true
}

// StoreRun caches a run summary under its run ID.
func (s *CacheService) StoreRun(ctx context.Context, run *dto.TimetableRunResponse) {
	if !s.Enabled() || run == nil || run.RunID == "" {
		return
	}
	start := time.Now()
	err := s.repo.Set(ctx, runKeyPrefix+run.RunID, run, s.ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("run cache write failed", zap.String("run_id", run.RunID), zap.Error(err))
	}
}

// Purge drops every cached run summary.
func (s *CacheService) Purge(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, runKeyPrefix+"*"); err != nil {
		s.logger.Warn("run cache purge failed", zap.Error(err))
		return err
	}
	return nil
}
