package players

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuth = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopq" // 43 chars

func TestRecordTransformerClaimsRecordKeysOnly(t *testing.T) {
	tr := RecordTransformer{}

	assert.True(t, tr.Supports("player."+testAuth, "{}"))
	assert.True(t, tr.Supports("room.player."+testAuth, &Record{}))

	assert.False(t, tr.Supports("player.short", "{}"))
	assert.False(t, tr.Supports("player."+testAuth+".extra", "{}"))
	assert.False(t, tr.Supports("game.score-limit", "3"))
	assert.False(t, tr.Supports("player."+testAuth, 42))
}

func TestRecordTransformerRoundTrip(t *testing.T) {
	tr := RecordTransformer{}
	loggedIn := int64(1700000000000)
	record := &Record{
		Auth:              testAuth,
		Connected:         true,
		LoggedInAt:        &loggedIn,
		TotalTimeOnServer: 123456,
		Name:              "alice",
		Goals:             7,
		OwnGoals:          1,
		Assists:           3,
	}

	wire, err := tr.Encode(record)
	require.NoError(t, err)
	raw, ok := wire.(string)
	require.True(t, ok)

	// The persisted layout is the historical one.
	for _, field := range []string{"auth", "connected", "afk", "loggedInAt", "totalTimeOnServer", "name", "goals", "ownGoals", "assists"} {
		assert.True(t, strings.Contains(raw, `"`+field+`"`), field)
	}

	decoded, err := tr.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestRecordTransformerDecodeRejectsGarbage(t *testing.T) {
	tr := RecordTransformer{}
	_, err := tr.Decode("{not json")
	assert.Error(t, err)
}
