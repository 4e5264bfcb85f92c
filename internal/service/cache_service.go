package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

const cacheNamespace = "console"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool

	// generations counts invalidations per session. mu also orders
	// SetIfCurrent against InvalidateSession's purge.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		repo:        repo,
		metrics:     metrics,
		defaultTTL:  defaultTTL,
		logger:      logger,
		enabled:     enabled,
		generations: make(map[string]uint64),
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

// Set stores the value in cache.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// Generation returns the session's invalidation count. Take it before a
// load and hand it to SetIfCurrent.
func (s *CacheService) Generation(session *backend.Session) uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[sessionCachePrefix(session)]
}

// SetIfCurrent stores value unless the session was invalidated since
// generation was read, so a load overtaken by a write cannot cache its
// stale snapshot.
func (s *CacheService) SetIfCurrent(ctx context.Context, session *backend.Session, generation uint64, key string, value interface{}, ttl time.Duration) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[sessionCachePrefix(session)] != generation {
		return false, nil
	}
	return true, s.Set(ctx, key, value, ttl)
}

// InvalidateSession drops every entry cached for one operator session.
func (s *CacheService) InvalidateSession(ctx context.Context, session *backend.Session) error {
	if s == nil {
		return nil
	}
	prefix := sessionCachePrefix(session)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[prefix]++
	return s.Invalidate(ctx, prefix+"*")
}

func sessionCachePrefix(session *backend.Session) string {
	return fmt.Sprintf("%s:session:%s:", cacheNamespace, session.Key())
}

func sessionCacheKey(session *backend.Session, name string) string {
	return sessionCachePrefix(session) + name
}

func sharedCacheKey(name string) string {
	return cacheNamespace + ":shared:" + name
}
