// Package mode implements the tournament formats supervising a room: how
// scores accumulate into victories, when a tournament is over, and how teams
// are recomposed between rounds. Formats share one lifecycle: Idle until
// Start, InProgress while rounds are played, Finished once the format's
// predicate trips, then back to Idle.
package mode

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pwalczak/matchroom/room"
)

// Format names accepted by New. "bo" and "ut" are the historical chat names
// for best-of and race-to ("up to").
const (
	FormatBestOf = "bo"
	FormatRaceTo = "ut"
	FormatRandom = "random"
	FormatNoop   = "noop"
)

// DisplayDelay is how long the final score of a round stays on screen before
// a scheduled transition recomposes teams and starts the next round.
const DisplayDelay = 2 * time.Second

const (
	defaultLimit    = 3
	defaultTeamSize = 3
)

// Score is the victory tally of an ongoing tournament.
type Score struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// GameMode is the capability set shared by every tournament format.
// Implementations schedule their own round transitions and issue room
// commands; callers only feed them lifecycle events.
type GameMode interface {
	Format() string
	Limit() int
	TeamSize() int
	Victories() Score
	MatchesPlayed() int

	// Start locks team changes and begins the first round.
	Start() error
	// RegisterVictory accounts a finished round. No-op when not started.
	RegisterVictory(scores room.Scores)
	// Stop ends the tournament, announcing the result when it ran to
	// completion, and releases the room.
	Stop()
	// Restart is stop-then-start with the same configuration.
	Restart() error
	InProgress() bool
}

// FormatLabel returns the human-readable name of a format for announcements.
func FormatLabel(format string) string {
	switch format {
	case FormatBestOf:
		return "Best Of"
	case FormatRaceTo:
		return "Race To"
	case FormatRandom:
		return "Random"
	default:
		return format
	}
}

// ErrMatchInProgress is returned by Start while a supervised match is on.
var ErrMatchInProgress = eris.New("mode: a supervised match is already in progress")

// ConfigError reports tournament parameters that cannot form a valid
// tournament. It is surfaced to the triggering user, never fatal.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "mode: invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
