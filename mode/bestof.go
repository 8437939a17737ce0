package mode

import "github.com/pwalczak/matchroom/room"

// BestOf is the race-to specialization playing at most N rounds: the first
// team past half of them wins. N must be odd, otherwise the format could end
// in a tie of victories.
type BestOf struct {
	*RaceTo
}

// NewBestOf builds a best-of tournament from free-form string arguments.
func NewBestOf(deps Deps, args map[string]string) (*BestOf, error) {
	limit, err := parseIntArg(args, "limit", defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, configErrorf("the win limit cannot be lower than 0, got %d", limit)
	}
	if limit%2 != 1 {
		return nil, configErrorf("the win limit must be odd, got %d", limit)
	}

	teamSize, err := parseIntArg(args, "teamsize", defaultTeamSize)
	if err != nil {
		return nil, err
	}
	if teamSize < 1 {
		return nil, configErrorf("the team size cannot be lower than one, got %d", teamSize)
	}

	inner := &RaceTo{baseMode: newBase(FormatBestOf, limit, teamSize, deps)}

	return &BestOf{RaceTo: inner}, nil
}

func (m *BestOf) RegisterVictory(scores room.Scores) {
	m.registerVictory(scores, m.shouldFinish, m.nextRound)
}

// shouldFinish trips once a team holds the majority of the configured rounds.
func (m *BestOf) shouldFinish() bool {
	return max(m.victories.Red, m.victories.Blue) >= (m.limit+1)/2
}

var _ GameMode = (*BestOf)(nil)
