package sqlstore

import (
	"context"
	"fmt"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/leeford/team-request-app/core"
)

const appConfigCacheKey = "team-request-app::app_configuration::v1::" + core.AppConfigID

// CachedRequestStore caches the read-mostly app configuration in front of a
// base store. Request reads and writes pass straight through; configuration
// writes invalidate the cached entry.
type CachedRequestStore struct {
	base  core.RequestStore
	cache repositorycache.CacheService
}

func NewCachedRequestStore(base core.RequestStore, cacheService repositorycache.CacheService) (*CachedRequestStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base request store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: cache service is required")
	}
	return &CachedRequestStore{base: base, cache: cacheService}, nil
}

func (s *CachedRequestStore) Get(ctx context.Context, id string, ownerID string) (core.TeamRequest, error) {
	if s == nil || s.base == nil {
		return core.TeamRequest{}, fmt.Errorf("sqlstore: cached request store is not configured")
	}
	return s.base.Get(ctx, id, ownerID)
}

func (s *CachedRequestStore) ListForOwner(ctx context.Context, ownerID string, limit int) ([]core.TeamRequest, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached request store is not configured")
	}
	return s.base.ListForOwner(ctx, ownerID, limit)
}

func (s *CachedRequestStore) Upsert(ctx context.Context, request core.TeamRequest) (core.TeamRequest, error) {
	if s == nil || s.base == nil {
		return core.TeamRequest{}, fmt.Errorf("sqlstore: cached request store is not configured")
	}
	return s.base.Upsert(ctx, request)
}

func (s *CachedRequestStore) GetConfiguration(ctx context.Context) (core.AppConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.AppConfig{}, fmt.Errorf("sqlstore: cached request store is not configured")
	}
	return repositorycache.GetOrFetch(ctx, s.cache, appConfigCacheKey, func(ctx context.Context) (core.AppConfig, error) {
		return s.base.GetConfiguration(ctx)
	})
}

func (s *CachedRequestStore) UpsertConfiguration(ctx context.Context, config core.AppConfig) (core.AppConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.AppConfig{}, fmt.Errorf("sqlstore: cached request store is not configured")
	}
	stored, err := s.base.UpsertConfiguration(ctx, config)
	if err != nil {
		return core.AppConfig{}, err
	}
	if err := s.cache.Delete(ctx, appConfigCacheKey); err != nil {
		return core.AppConfig{}, err
	}
	return stored, nil
}
