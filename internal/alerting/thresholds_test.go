package alerting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/agrisense-go/internal/datastore/entities"
	"github.com/agrisense/agrisense-go/internal/datastore/repository"
)

func TestGetOrCreateDefaultReturnsStoredConfig(t *testing.T) {
	repo := &mockThresholdRepo{
		getActiveFn: func(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
			cfg := DefaultConfig(tenantID)
			cfg.TempMax = 30
			return cfg, nil
		},
	}
	store := NewThresholdStore(repo, time.Minute, testLogger())

	got, err := store.GetOrCreateDefault(t.Context(), 7)
	require.NoError(t, err)
	assert.InDelta(t, 30, got.TempMax, 1e-9)
	assert.Zero(t, repo.createCalls)
}

func TestGetOrCreateDefaultLazilyCreates(t *testing.T) {
	repo := &mockThresholdRepo{}
	store := NewThresholdStore(repo, time.Minute, testLogger())

	got, err := store.GetOrCreateDefault(t.Context(), 7)
	require.NoError(t, err)
	assert.InDelta(t, DefaultTempMax, got.TempMax, 1e-9)
	assert.Equal(t, 1, repo.createCalls)
}

func TestGetOrCreateDefaultCaches(t *testing.T) {
	repo := &mockThresholdRepo{
		getActiveFn: func(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
			return DefaultConfig(tenantID), nil
		},
	}
	store := NewThresholdStore(repo, time.Minute, testLogger())

	for range 5 {
		_, err := store.GetOrCreateDefault(t.Context(), 7)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetOrCreateDefaultInvalidate(t *testing.T) {
	repo := &mockThresholdRepo{
		getActiveFn: func(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
			return DefaultConfig(tenantID), nil
		},
	}
	store := NewThresholdStore(repo, time.Minute, testLogger())

	_, err := store.GetOrCreateDefault(t.Context(), 7)
	require.NoError(t, err)
	store.Invalidate(7)
	_, err = store.GetOrCreateDefault(t.Context(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

func TestGetOrCreateDefaultCreateRace(t *testing.T) {
	// Create fails with a unique violation because another evaluation won the
	// race; the re-read must succeed and the caller never sees an error.
	created := false
	repo := &mockThresholdRepo{}
	repo.getActiveFn = func(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
		if created {
			return DefaultConfig(tenantID), nil
		}
		return nil, repository.ErrThresholdConfigNotFound
	}
	repo.createFn = func(context.Context, *entities.ThresholdConfig) error {
		created = true
		return errors.New("UNIQUE constraint failed")
	}
	store := NewThresholdStore(repo, time.Minute, testLogger())

	got, err := store.GetOrCreateDefault(t.Context(), 7)
	require.NoError(t, err)
	assert.InDelta(t, DefaultTempMin, got.TempMin, 1e-9)
}

func TestGetOrCreateDefaultTenantsAreIsolated(t *testing.T) {
	repo := &mockThresholdRepo{
		getActiveFn: func(_ context.Context, tenantID uint) (*entities.ThresholdConfig, error) {
			cfg := DefaultConfig(tenantID)
			cfg.TempMax = float64(tenantID)
			return cfg, nil
		},
	}
	store := NewThresholdStore(repo, time.Minute, testLogger())

	a, err := store.GetOrCreateDefault(t.Context(), 1)
	require.NoError(t, err)
	b, err := store.GetOrCreateDefault(t.Context(), 2)
	require.NoError(t, err)
	assert.InDelta(t, 1, a.TempMax, 1e-9)
	assert.InDelta(t, 2, b.TempMax, 1e-9)
}
