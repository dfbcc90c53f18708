package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Record(Run{
			ID:        uuid.NewString(),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Seed:      int64(100 + i),
			Examples:  10,
			Failures:  i,
			Duration:  1500 * time.Millisecond,
		})
		require.NoError(t, err)
	}

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, int64(102), runs[0].Seed, "newest first")
	assert.Equal(t, int64(100), runs[2].Seed)
	assert.Equal(t, 10, runs[0].Examples)
	assert.Equal(t, 2, runs[0].Failures)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
}

func TestStore_RecentLimit(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(Run{
			ID:        fmt.Sprintf("run-%d", i),
			StartedAt: time.Now().Add(time.Duration(i) * time.Minute),
			Seed:      int64(i),
			Examples:  1,
		}))
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStore_EmptyDatabase(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_CreatesParentDirectories(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "nested", "dir", "history.db"))
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
