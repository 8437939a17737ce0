package mode

import (
	"fmt"

	"github.com/pwalczak/matchroom/room"
)

// Random plays a fixed number of rounds with fully reshuffled teams each
// time. A team size of 0 means unbounded: half the pool per side, or
// per-player coin flips when the pool cannot be halved. A limit of 0 plays on
// until stopped.
type Random struct {
	baseMode
}

// NewRandom builds a random-teams tournament from free-form string arguments.
func NewRandom(deps Deps, args map[string]string) (*Random, error) {
	limit, err := parseIntArg(args, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, configErrorf("the round limit cannot be lower than 0, got %d", limit)
	}

	teamSize, err := parseIntArg(args, "teamsize", defaultTeamSize)
	if err != nil {
		return nil, err
	}
	if teamSize < 0 {
		return nil, configErrorf("the team size cannot be lower than 0, got %d", teamSize)
	}

	return &Random{baseMode: newBase(FormatRandom, limit, teamSize, deps)}, nil
}

func (m *Random) Start() error {
	err := m.begin(fmt.Sprintf("🏆 Starting a tournament: format - %s, round limit - %d, max team size - %d", FormatLabel(m.format), m.limit, m.teamSize))
	if err != nil {
		return err
	}

	m.randomizeTeams(m.teamSize)

	m.room.StartGame()

	return nil
}

func (m *Random) RegisterVictory(scores room.Scores) {
	m.registerVictory(scores, m.shouldFinish, m.nextRound)
}

// shouldFinish trips after the configured number of decided rounds.
func (m *Random) shouldFinish() bool {
	return m.limit > 0 && m.matchesPlayed >= m.limit
}

// nextRound runs under the mode lock when a scheduled transition fires.
func (m *Random) nextRound() {
	m.room.StopGame()
	m.room.SendAnnouncement("🏆 Drawing new teams")

	m.randomizeTeams(m.teamSize)

	m.room.StartGame()
}

func (m *Random) Stop() {
	m.stop()
}

func (m *Random) Restart() error {
	m.reset()
	return m.Start()
}

var _ GameMode = (*Random)(nil)
