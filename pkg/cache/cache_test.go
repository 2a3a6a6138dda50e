package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/pkg/cache"
)

type snapshot struct {
	Total   int `json:"total"`
	Ongoing int `json:"ongoing"`
}

func TestSetGet(t *testing.T) {
	require.NoError(t, cache.Set("t1", snapshot{Total: 5, Ongoing: 2}, time.Minute))

	var got snapshot
	require.True(t, cache.Get("t1", &got))
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 2, got.Ongoing)
}

func TestMiss(t *testing.T) {
	var got snapshot
	assert.False(t, cache.Get("never-set", &got))
}

func TestExpiry(t *testing.T) {
	require.NoError(t, cache.Set("t2", snapshot{Total: 1}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var got snapshot
	assert.False(t, cache.Get("t2", &got))
}

func TestForget(t *testing.T) {
	require.NoError(t, cache.Set("t3", snapshot{Total: 1}, time.Minute))
	require.NoError(t, cache.Forget("t3"))

	var got snapshot
	assert.False(t, cache.Get("t3", &got))
}
