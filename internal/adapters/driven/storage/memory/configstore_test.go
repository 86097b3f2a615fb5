package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("server.addr", "127.0.0.1:9090"))
	val, ok := store.Get("server.addr")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:9090", val)

	require.NoError(t, store.Set("server.addr", ":8080"))
	assert.Equal(t, ":8080", store.GetString("server.addr"))

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("places.min_results", int64(12))
	_ = store.Set("places.limit", 40.9)
	_ = store.Set("refresh.workers", 3)
	_ = store.Set("scheduler.enabled", true)
	_ = store.Set("name", "geocache")

	assert.Equal(t, 12, store.GetInt("places.min_results"))
	assert.Equal(t, 40, store.GetInt("places.limit"))
	assert.Equal(t, 3, store.GetInt("refresh.workers"))
	assert.Equal(t, 0, store.GetInt("name"))

	assert.Equal(t, 12.0, store.GetFloat("places.min_results"))
	assert.Equal(t, 40.9, store.GetFloat("places.limit"))
	assert.Equal(t, 0.0, store.GetFloat("name"))

	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.False(t, store.GetBool("name"))
	assert.Equal(t, "", store.GetString("refresh.workers"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store := NewConfigStore()

	tests := []struct {
		value any
		want  time.Duration
	}{
		{"10m", 10 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"bogus", 0},
		{45, 45 * time.Second},
		{int64(2), 2 * time.Second},
		{1.5, 1500 * time.Millisecond},
		{3 * time.Hour, 3 * time.Hour},
		{true, 0},
	}
	for i, tt := range tests {
		key := fmt.Sprintf("freshness.k%d", i)
		_ = store.Set(key, tt.value)
		assert.Equal(t, tt.want, store.GetDuration(key), "value %v", tt.value)
	}
	assert.Equal(t, time.Duration(0), store.GetDuration("missing"))
}

func TestConfigStore_SaveAndLoad_NoOp(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("k", "v")

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id%10)
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetDuration(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		_, ok := store.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, ok)
	}
}
