package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBolt(t *testing.T) *Bolt {
	t.Helper()
	db, err := OpenBolt(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBoltRoundTrip(t *testing.T) {
	db := openTestBolt(t)

	_, err := db.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Set("k", "v"))

	value, err := db.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	ok, err := db.Has("k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBoltRejectsRichValues(t *testing.T) {
	db := openTestBolt(t)
	assert.Error(t, db.Set("k", 42))
	assert.Error(t, db.Set("k", struct{}{}))
}

func TestBoltPrefixScan(t *testing.T) {
	db := openTestBolt(t)
	require.NoError(t, db.Set("room.player.a", "1"))
	require.NoError(t, db.Set("room.player.b", "2"))
	require.NoError(t, db.Set("room.game.score-limit", "3"))

	all, err := db.All(Prefix("room.player."))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"room.player.a": "1", "room.player.b": "2"}, all)

	all, err = db.All(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBoltSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	db, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, db.Set("k", "v"))
	require.NoError(t, db.Close())

	db, err = OpenBolt(path)
	require.NoError(t, err)
	defer db.Close()

	value, err := db.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
