package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]int
	require.ErrorIs(t, repo.Get(ctx, "dash:overview", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "dash:overview", map[string]int{"total": 1}, time.Minute))
	require.NoError(t, repo.Ping(ctx))
	require.NoError(t, repo.Close())
}

func TestCacheRepositorySurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCacheRepository(client)
	defer repo.Close()
	ctx := context.Background()

	var dest map[string]int
	err := repo.Get(ctx, "dash:overview", &dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	require.Error(t, repo.Set(ctx, "dash:overview", 1, time.Minute))
	require.Error(t, repo.Ping(ctx))
}
