package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k1, err := Key(strings.NewReader("@relation a"), "cfs-greedy;class=last")
	require.NoError(t, err)
	k2, err := Key(strings.NewReader("@relation a"), "cfs-greedy;class=last")
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)

	other, err := Key(strings.NewReader("@relation a"), "infogain-ranker;class=last")
	require.NoError(t, err)
	assert.NotEqual(t, k1, other, "fingerprint must be part of the key")

	changed, err := Key(strings.NewReader("@relation b"), "cfs-greedy;class=last")
	require.NoError(t, err)
	assert.NotEqual(t, k1, changed, "content must be part of the key")

	path := filepath.Join(t.TempDir(), "a.arff")
	require.NoError(t, os.WriteFile(path, []byte("@relation a"), 0o600))
	fk, err := FileKey(path, "cfs-greedy;class=last")
	require.NoError(t, err)
	assert.Equal(t, k1, fk)

	_, err = FileKey(filepath.Join(t.TempDir(), "missing.arff"), "x")
	assert.Error(t, err)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, true, 60)
	require.NoError(t, err)
	assert.True(t, store.IsEnabled())
	assert.Equal(t, dir, store.Directory())

	attrs := []string{"perfect", "class"}

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, store.Put("k1", "fp", "a.arff", attrs))

		entry, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, attrs, entry.Attributes)
		assert.Equal(t, "fp", entry.Fingerprint)
		assert.Equal(t, "a.arff", entry.Source)
		assert.LessOrEqual(t, entry.Age(), time.Minute)

		count, err := store.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete("k1"))
		_, err := store.Get("k1")
		assert.ErrorIs(t, err, ErrCacheNotFound)
		assert.NoError(t, store.Delete("k1"), "delete is idempotent")
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Put("k1", "fp", "a", attrs))
		require.NoError(t, store.Put("k2", "fp", "b", attrs))
		n, err := store.Clear()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		count, _ := store.Count()
		assert.Equal(t, 0, count)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		assert.ErrorIs(t, store.Put("", "fp", "a", attrs), ErrInvalidCacheKey)
		_, err := store.Get("")
		assert.ErrorIs(t, err, ErrInvalidCacheKey)
	})

	t.Run("Disabled", func(t *testing.T) {
		disabled, err := NewFileStore("", false, 60)
		require.NoError(t, err)
		assert.False(t, disabled.IsEnabled())
		assert.ErrorIs(t, disabled.Put("k", "fp", "a", attrs), ErrCacheDisabled)
		_, err = disabled.Get("k")
		assert.ErrorIs(t, err, ErrCacheDisabled)
	})

	t.Run("Expiration", func(t *testing.T) {
		dir := t.TempDir()
		short, err := NewFileStore(dir, true, -1)
		require.NoError(t, err)
		require.NoError(t, short.Put("old", "fp", "a", attrs))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0o600))

		n, err := short.CleanupExpired()
		require.NoError(t, err)
		assert.Equal(t, 2, n, "expired and unreadable entries are removed")

		require.NoError(t, short.Put("old", "fp", "a", attrs))
		_, err = short.Get("old")
		assert.ErrorIs(t, err, ErrCacheExpired)
		count, _ := short.Count()
		assert.Equal(t, 0, count)
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		_, err := NewFileStore("", true, 60)
		assert.Error(t, err)
	})
}

func TestTTL(t *testing.T) {
	assert.NoError(t, ValidateTTL(MinTTLSeconds))
	assert.ErrorIs(t, ValidateTTL(10), ErrInvalidTTL)

	ttl, err := ParseTTL("3600")
	require.NoError(t, err)
	assert.Equal(t, 3600, ttl)

	ttl, err = ParseTTL("24h")
	require.NoError(t, err)
	assert.Equal(t, 86400, ttl)

	_, err = ParseTTL("soon")
	assert.Error(t, err)

	t.Run("Env", func(t *testing.T) {
		t.Setenv(EnvTTLSeconds, "500")
		assert.Equal(t, 500, TTLFromEnv(60))
		t.Setenv(EnvTTLSeconds, "5")
		assert.Equal(t, 60, TTLFromEnv(60))

		t.Setenv(EnvCacheEnabled, "false")
		assert.False(t, EnabledFromEnv(true))
		t.Setenv(EnvCacheEnabled, "maybe")
		assert.True(t, EnabledFromEnv(true))

		t.Setenv(EnvCacheDir, "/tmp/x")
		assert.Equal(t, "/tmp/x", DirFromEnv("/default"))
	})
}
