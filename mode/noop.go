package mode

import "github.com/pwalczak/matchroom/room"

// Noop is the engine's value when no tournament is active. It accepts every
// lifecycle call without doing anything, sparing callers nil checks.
type Noop struct{}

func (Noop) Format() string                { return FormatNoop }
func (Noop) Limit() int                    { return 0 }
func (Noop) TeamSize() int                 { return 0 }
func (Noop) Victories() Score              { return Score{} }
func (Noop) MatchesPlayed() int            { return 0 }
func (Noop) Start() error                  { return nil }
func (Noop) RegisterVictory(_ room.Scores) {}
func (Noop) Stop()                         {}
func (Noop) Restart() error                { return nil }
func (Noop) InProgress() bool              { return false }

var _ GameMode = Noop{}
