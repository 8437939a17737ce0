package mode

import (
	"fmt"

	"github.com/pwalczak/matchroom/room"
)

// RaceTo is the "first team to N victories" format. Between rounds the teams
// swap sides (tallies follow, since red/blue is a side label, not a team
// identity), refill from the bench and rebalance. A limit of 0 never
// finishes on score alone; only Stop ends it.
type RaceTo struct {
	baseMode
}

// NewRaceTo builds a race-to tournament from free-form string arguments
// ("limit", "teamsize").
func NewRaceTo(deps Deps, args map[string]string) (*RaceTo, error) {
	limit, err := parseIntArg(args, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, configErrorf("the win limit cannot be lower than 0, got %d", limit)
	}

	teamSize, err := parseIntArg(args, "teamsize", defaultTeamSize)
	if err != nil {
		return nil, err
	}
	if teamSize < 1 {
		return nil, configErrorf("the team size cannot be lower than one, got %d", teamSize)
	}

	return &RaceTo{baseMode: newBase(FormatRaceTo, limit, teamSize, deps)}, nil
}

func (m *RaceTo) Start() error {
	err := m.begin(fmt.Sprintf("🏆 Starting a tournament: format - %s, win limit - %d, max team size - %d", FormatLabel(m.format), m.limit, m.teamSize))
	if err != nil {
		return err
	}

	m.fillTeamsFromBench(m.teamSize)
	m.autoBalance()

	m.room.StartGame()

	return nil
}

func (m *RaceTo) RegisterVictory(scores room.Scores) {
	m.registerVictory(scores, m.shouldFinish, m.nextRound)
}

// shouldFinish is evaluated under the mode lock after the round is tallied.
func (m *RaceTo) shouldFinish() bool {
	return m.limit > 0 && max(m.victories.Red, m.victories.Blue) >= m.limit
}

// nextRound runs under the mode lock when a scheduled transition fires.
func (m *RaceTo) nextRound() {
	m.room.StopGame()
	m.room.SendAnnouncement("🏆 Swapping team sides")

	m.swapTeams()
	m.victories.Red, m.victories.Blue = m.victories.Blue, m.victories.Red

	m.fillTeamsFromBench(m.teamSize)
	m.autoBalance()

	m.room.StartGame()
}

func (m *RaceTo) Stop() {
	m.stop()
}

func (m *RaceTo) Restart() error {
	m.reset()
	return m.Start()
}

var _ GameMode = (*RaceTo)(nil)
