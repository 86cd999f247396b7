package genstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGenStoreBump(t *testing.T) {
	u := os.Getenv("ODDSGRID_TEST_REDIS_URL")
	if u == "" {
		t.Skip("ODDSGRID_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(u)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	s := NewRedisGenStore(client, "test", time.Hour)
	key := "rows:test:" + t.Name()
	t.Cleanup(func() { _ = client.Del(context.Background(), s.key(key)).Err() })

	g, err := s.Snapshot(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, g)

	g, err = s.Bump(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g)

	g, err = s.Snapshot(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g)

	ttl, err := client.TTL(ctx, s.key(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
