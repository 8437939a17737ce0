package game

import (
	"time"

	"github.com/pwalczak/matchroom/room"
)

const (
	// AssistValidFor bounds how old the previous ball touch may be for its
	// player to still be credited an assist.
	AssistValidFor = 5 * time.Second

	// KickableBallThreshold is the widest player-to-ball gap at which the
	// host lets a player kick the ball.
	KickableBallThreshold = 4.0

	// TouchedBallThreshold is the player-to-ball gap under which a tick of
	// play counts as touching the ball.
	TouchedBallThreshold = KickableBallThreshold / 2.0
)

// GoalInfo is one entry of the append-only goal ledger, created exactly once
// per goal event and cleared at tournament end.
type GoalInfo struct {
	ID         string      `json:"id"`
	ScoredBy   string      `json:"scoredBy"`
	AssistedBy string      `json:"assistedBy,omitempty"`
	ScoredAt   float64     `json:"scoredAt"` // match clock seconds
	ByTeam     room.TeamID `json:"byTeam"`
}

// BallTouch is one entry of the most-recent-touches stack used to attribute
// goals and assists.
type BallTouch struct {
	Auth      string
	TouchedAt time.Time
}
