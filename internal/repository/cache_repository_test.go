package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsEmpty(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "console:list:abc", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "console:list:abc", map[string]string{"a": "b"}, time.Minute))
	assert.ErrorIs(t, repo.Get(ctx, "console:list:abc", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.DeleteByPattern(ctx, "console:list:*"))
	require.NoError(t, repo.Ping(ctx))
}
