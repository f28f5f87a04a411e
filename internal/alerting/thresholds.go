package alerting

import (
	"context"
	"errors"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agrisense/agrisense-go/internal/datastore/repository"
	"github.com/agrisense/agrisense-go/internal/logger"
)

// ThresholdStore resolves the active threshold band set for a tenant,
// lazily creating a default configuration the first time a tenant is
// evaluated without one. Lookups are cached with a short TTL because every
// ingested reading needs the tenant's bands.
type ThresholdStore struct {
	repo  repository.ThresholdRepository
	cache *gocache.Cache
	log   logger.Logger
}

// NewThresholdStore creates a ThresholdStore with the given cache TTL.
func NewThresholdStore(repo repository.ThresholdRepository, cacheTTL time.Duration, log logger.Logger) *ThresholdStore {
	return &ThresholdStore{
		repo:  repo,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
		log:   log,
	}
}

// GetOrCreateDefault returns the tenant's active thresholds, creating and
// persisting the default configuration when none exists.
func (s *ThresholdStore) GetOrCreateDefault(ctx context.Context, tenantID uint) (Thresholds, error) {
	key := strconv.FormatUint(uint64(tenantID), 10)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(Thresholds), nil
	}

	config, err := s.repo.GetActive(ctx, tenantID)
	if errors.Is(err, repository.ErrThresholdConfigNotFound) {
		config = DefaultConfig(tenantID)
		if createErr := s.repo.Create(ctx, config); createErr != nil {
			// A concurrent evaluation may have created it first; re-read
			// before giving up.
			config, err = s.repo.GetActive(ctx, tenantID)
			if err != nil {
				return Thresholds{}, createErr
			}
		} else {
			s.log.Info("created default threshold config",
				logger.Uint64("tenant_id", uint64(tenantID)))
		}
	} else if err != nil {
		return Thresholds{}, err
	}

	thresholds := ThresholdsFromConfig(config)
	s.cache.Set(key, thresholds, gocache.DefaultExpiration)
	return thresholds, nil
}

// Invalidate drops the cached bands for a tenant. Called when an admin
// workflow changes the configuration.
func (s *ThresholdStore) Invalidate(tenantID uint) {
	s.cache.Delete(strconv.FormatUint(uint64(tenantID), 10))
}
