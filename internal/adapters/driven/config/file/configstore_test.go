package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".geocache", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test_key", "test_value"))

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)
}

func TestConfigStore_Set_EmptyKey(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("", "value"))
}

func TestConfigStore_Set_DoesNotPersist(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("server.addr", ":9000"))

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("string_key", "hello world")
	_ = store.Set("int_key", 42)

	assert.Equal(t, "hello world", store.GetString("string_key"))
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.Equal(t, "", store.GetString("int_key"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("int_key", 42)
	_ = store.Set("int64_key", int64(9999))
	_ = store.Set("float_key", 7.9)
	_ = store.Set("string_key", "not an int")

	assert.Equal(t, 42, store.GetInt("int_key"))
	assert.Equal(t, 9999, store.GetInt("int64_key"))
	assert.Equal(t, 7, store.GetInt("float_key"))
	assert.Equal(t, 0, store.GetInt("string_key"))
	assert.Equal(t, 0, store.GetInt("nonexistent"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("float_key", 0.0068)
	_ = store.Set("int64_key", int64(3))
	_ = store.Set("string_key", "1.5")

	assert.InDelta(t, 0.0068, store.GetFloat("float_key"), 1e-12)
	assert.Equal(t, 3.0, store.GetFloat("int64_key"))
	assert.Zero(t, store.GetFloat("string_key"))
	assert.Zero(t, store.GetFloat("nonexistent"))
}

func TestConfigStore_GetBool(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("bool_key", true)
	_ = store.Set("bool_key_false", false)
	_ = store.Set("string_key", "true")

	assert.True(t, store.GetBool("bool_key"))
	assert.False(t, store.GetBool("bool_key_false"))
	assert.False(t, store.GetBool("nonexistent"))
	assert.False(t, store.GetBool("string_key"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("string", " 10m ")
	_ = store.Set("seconds", int64(90))
	_ = store.Set("int", 30)
	_ = store.Set("float", 1.5)
	_ = store.Set("duration", 2*time.Hour)
	_ = store.Set("garbage", "soon")
	_ = store.Set("bool", true)

	assert.Equal(t, 10*time.Minute, store.GetDuration("string"))
	assert.Equal(t, 90*time.Second, store.GetDuration("seconds"))
	assert.Equal(t, 30*time.Second, store.GetDuration("int"))
	assert.Equal(t, 1500*time.Millisecond, store.GetDuration("float"))
	assert.Equal(t, 2*time.Hour, store.GetDuration("duration"))
	assert.Zero(t, store.GetDuration("garbage"))
	assert.Zero(t, store.GetDuration("bool"))
	assert.Zero(t, store.GetDuration("nonexistent"))
}

func TestConfigStore_SaveReload_PreservesData(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_ = store.Set("server.addr", "127.0.0.1:8080")
	_ = store.Set("freshness.weather", 10*time.Minute)
	_ = store.Set("places.min_results", 15)
	_ = store.Set("scheduler.enabled", true)
	_ = store.Set("scheduler.news_refresh.interval", "3h")
	_ = store.Set("fallback.jpy_usd", 0.0068)
	require.NoError(t, store.Save())

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", store2.GetString("server.addr"))
	assert.Equal(t, "10m0s", store2.GetString("freshness.weather"))
	assert.Equal(t, 10*time.Minute, store2.GetDuration("freshness.weather"))
	assert.Equal(t, 15, store2.GetInt("places.min_results"))
	assert.True(t, store2.GetBool("scheduler.enabled"))
	assert.Equal(t, 3*time.Hour, store2.GetDuration("scheduler.news_refresh.interval"))
	assert.InDelta(t, 0.0068, store2.GetFloat("fallback.jpy_usd"), 1e-12)
}

func TestConfigStore_Save_WritesNestedTables(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("providers.openweather.api_key", "ow-key")
	require.NoError(t, store.Save())

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[providers.openweather]")
	assert.Contains(t, string(raw), "api_key = 'ow-key'")
}

func TestConfigStore_Save_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("test", "value")
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(store.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestConfigStore_Save_Unmarshallable(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_ = store.Set("channel", make(chan int))

	assert.Error(t, store.Save())
}

func TestConfigStore_Save_WriteError(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// A directory in place of the temp file makes the write fail.
	require.NoError(t, os.Mkdir(store.Path()+".tmp", 0700))

	_ = store.Set("test", "value")
	assert.Error(t, store.Save())
}

func TestConfigStore_Load_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte(`
[server]
addr = ":7070"

[freshness]
places = "30m"
news = 600

[providers.newsapi]
api_key = "nk"
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", store.GetString("server.addr"))
	assert.Equal(t, 30*time.Minute, store.GetDuration("freshness.places"))
	assert.Equal(t, 10*time.Minute, store.GetDuration("freshness.news"))
	assert.Equal(t, "nk", store.GetString("providers.newsapi.api_key"))
}

func TestConfigStore_Load_ReplacesInMemoryValues(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_ = store.Set("unsaved", "value")
	require.NoError(t, store.Load())

	_, ok := store.Get("unsaved")
	assert.False(t, ok)
}

func TestConfigStore_Load_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# Just a comment\n\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.GetDuration(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
