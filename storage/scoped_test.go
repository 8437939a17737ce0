package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedPrefixesKeys(t *testing.T) {
	backing := NewMemory()
	s := NewScoped(backing, "room.")

	require.NoError(t, s.Set("k", "v"))

	value, err := backing.Get("room.k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	value, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	ok, err := s.Has("k")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Get("room.k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScopedAllDefaultsToScope(t *testing.T) {
	backing := NewMemory()
	require.NoError(t, backing.Set("room.player.a", 1))
	require.NoError(t, backing.Set("room.game.score-limit", 3))
	require.NoError(t, backing.Set("other.player.b", 2))

	s := NewScoped(backing, "room.")

	all, err := s.All(nil)
	require.NoError(t, err)
	// Keys come back with the scope still attached.
	assert.Equal(t, map[string]any{"room.player.a": 1, "room.game.score-limit": 3}, all)

	players, err := s.All(Prefix("player."))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"room.player.a": 1}, players)
}

func TestScopedAllEverythingEscapesScope(t *testing.T) {
	backing := NewMemory()
	require.NoError(t, backing.Set("room.k", 1))
	require.NoError(t, backing.Set("other.k", 2))

	s := NewScoped(backing, "room.")

	all, err := s.All(Everything)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestScopedAllPatternPassesThrough(t *testing.T) {
	backing := NewMemory()
	require.NoError(t, backing.Set("room.player.abc", 1))
	require.NoError(t, backing.Set("other.player.def", 2))

	s := NewScoped(backing, "room.")

	all, err := s.All(Pattern(regexp.MustCompile(`.*player\.[a-z]+`)))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestScopedNestingComposes(t *testing.T) {
	backing := NewMemory()
	s := NewScoped(NewScoped(backing, "room."), "player.")

	require.NoError(t, s.Set("abc", "v"))

	value, err := backing.Get("room.player.abc")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	all, err := s.All(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"room.player.abc": "v"}, all)
}
