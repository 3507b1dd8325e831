package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/cronograma-api/pkg/errors"
)

type cacheRepoStub struct {
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	return s.getErr
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.lastTTL = ttl
	return s.setErr
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(&cacheRepoStub{}, nil, 0, nil, false)
	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.False(t, hit)
	assert.NoError(t, err)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceHitMissAndErrors(t *testing.T) {
	metrics := NewMetricsService()
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	hit, err := svc.Get(ctx, "k", &struct{}{})
	require.NoError(t, err)
	assert.True(t, hit)

	repo.getErr = appErrors.ErrCacheMiss
	hit, err = svc.Get(ctx, "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)

	repo.getErr = errors.New("connection refused")
	_, err = svc.Get(ctx, "k", &struct{}{})
	assert.Error(t, err)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
}

func TestCacheServiceSetUsesDefaultTTL(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, nil, 3*time.Minute, nil, true)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Equal(t, 3*time.Minute, repo.lastTTL)

	repo.setErr = errors.New("read only replica")
	assert.Error(t, svc.Set(context.Background(), "k", 1, time.Second))
	assert.Equal(t, time.Second, repo.lastTTL)
}
