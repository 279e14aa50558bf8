package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvitality/brokerage/internal/config"
)

type testStruct struct {
	Name  string
	Price int64
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		Addr:     mr.Addr(),
		Password: "",
		DB:       0,
		User:     "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := testStruct{Name: "Basic Cover", Price: 12000}
	err := cache.Set("plan:1", expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get("plan:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out testStruct
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("plan:drop", testStruct{Name: "Gold"}, time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("plan:drop")
	require.NoError(t, err)

	var out testStruct
	found, err := cache.Get("plan:drop", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
