package players

import (
	"regexp"

	json "github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/pwalczak/matchroom/storage"
)

// Record is the durable per-player state, keyed by auth token. Field names
// round-trip the historical persisted layout exactly, so records written by
// earlier deployments load unchanged.
type Record struct {
	Auth              string `json:"auth"`
	Connected         bool   `json:"connected"`
	AFK               bool   `json:"afk"`
	LoggedInAt        *int64 `json:"loggedInAt"`        // epoch millis, nil while disconnected
	TotalTimeOnServer int64  `json:"totalTimeOnServer"` // millis, accumulated on disconnect
	Name              string `json:"name"`
	Goals             int    `json:"goals"`
	OwnGoals          int    `json:"ownGoals"`
	Assists           int    `json:"assists"`
}

// recordKeyPattern matches store keys holding player records: a "player."
// segment followed by a 43-character auth token.
var recordKeyPattern = regexp.MustCompile(`player\.[\w-]{43}$`)

// RecordTransformer is the store codec for player records: JSON text on the
// wire, *Record in memory.
type RecordTransformer struct{}

func (RecordTransformer) Supports(key string, value any) bool {
	if !recordKeyPattern.MatchString(key) {
		return false
	}
	switch value.(type) {
	case string, *Record:
		return true
	default:
		return false
	}
}

func (RecordTransformer) Encode(value any) (any, error) {
	record, ok := value.(*Record)
	if !ok {
		return nil, eris.Errorf("players: cannot encode %T as a player record", value)
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, eris.Wrap(err, "players: cannot serialize record")
	}
	return string(raw), nil
}

func (RecordTransformer) Decode(value any) (any, error) {
	raw, ok := value.(string)
	if !ok {
		if record, isRecord := value.(*Record); isRecord {
			return record, nil
		}
		return nil, eris.Errorf("players: cannot decode %T as a player record", value)
	}
	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, eris.Wrap(err, "players: cannot deserialize record")
	}
	return &record, nil
}

var _ storage.Transformer = RecordTransformer{}
