package mode

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/pwalczak/matchroom/room"
	"github.com/pwalczak/matchroom/schedule"
)

// Deps are the collaborators every format needs.
type Deps struct {
	Room  room.Controller
	Sched schedule.Scheduler
	Log   zerolog.Logger
}

// baseMode carries the state and room choreography shared by the active
// formats. Each format composes it and supplies its own finish predicate and
// round-transition behaviour.
type baseMode struct {
	room  room.Controller
	sched schedule.Scheduler
	log   zerolog.Logger

	format   string
	limit    int
	teamSize int

	mu            sync.Mutex
	started       bool
	finished      bool
	matchesPlayed int
	victories     Score

	// generation invalidates already-scheduled round transitions: there is
	// no way to retract a registered timer, so a fired callback compares the
	// generation it captured against the current one and bails out when a
	// Stop or Restart happened in between.
	generation uint64
}

func newBase(format string, limit, teamSize int, deps Deps) baseMode {
	return baseMode{
		room:     deps.Room,
		sched:    deps.Sched,
		log:      deps.Log.With().Str("component", "mode."+format).Str("mode_id", xid.New().String()).Logger(),
		format:   format,
		limit:    limit,
		teamSize: teamSize,
	}
}

func (b *baseMode) Format() string { return b.format }
func (b *baseMode) Limit() int     { return b.limit }
func (b *baseMode) TeamSize() int  { return b.teamSize }

func (b *baseMode) Victories() Score {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.victories
}

func (b *baseMode) MatchesPlayed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.matchesPlayed
}

func (b *baseMode) InProgress() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started && !b.finished
}

// begin runs the shared Start choreography: lock the teams, verify the room
// can field two teams, announce the tournament and reset the tally. The
// caller composes teams and starts the game afterwards. A refusal leaves the
// engine Idle and the room unlocked.
func (b *baseMode) begin(announcement string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started && !b.finished {
		return ErrMatchInProgress
	}

	b.room.SetTeamsLock(true)

	if len(b.room.GetPlayerList()) < 2 {
		b.room.SetTeamsLock(false)
		return configErrorf("cannot start with fewer than 2 players on the server")
	}

	b.room.SendAnnouncement(announcement)

	b.started = true
	b.finished = false
	b.victories = Score{}
	b.matchesPlayed = 0
	b.generation++

	b.log.Info().Int("limit", b.limit).Int("team_size", b.teamSize).Msg("tournament started")

	return nil
}

// tally accounts one finished round under b.mu. A drawn round does not count
// as played: a tie must not advance a race or best-of counter.
func (b *baseMode) tally(scores room.Scores) {
	b.matchesPlayed++
	switch {
	case scores.Red > scores.Blue:
		b.victories.Red++
	case scores.Blue > scores.Red:
		b.victories.Blue++
	default:
		b.matchesPlayed--
	}
}

// registerVictory is the shared RegisterVictory flow. shouldFinish is
// evaluated under b.mu after the tally; transition runs under b.mu when the
// scheduled round change fires and is still current.
func (b *baseMode) registerVictory(scores room.Scores, shouldFinish func() bool, transition func()) {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return
	}

	b.tally(scores)

	if shouldFinish() {
		b.finished = true
	}

	if b.finished {
		b.stopLocked()
		b.mu.Unlock()
		return
	}

	b.scheduleTransition(transition)
	b.mu.Unlock()
}

// scheduleTransition registers a deferred round change guarded against
// staleness. Called under b.mu.
func (b *baseMode) scheduleTransition(transition func()) {
	generation := b.generation
	b.sched.After(DisplayDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if generation != b.generation || !b.started || b.finished {
			b.log.Debug().Uint64("generation", generation).Msg("dropping stale round transition")
			return
		}
		transition()
	})
}

// stopLocked ends the tournament under b.mu: announce the overall result when
// it ran to completion, then release the room.
func (b *baseMode) stopLocked() {
	if b.started && b.finished {
		b.announceResult()
	}

	b.started = false
	b.finished = false
	b.generation++

	b.room.SetTeamsLock(false)
	b.room.StopGame()

	b.log.Info().Int("red", b.victories.Red).Int("blue", b.victories.Blue).Msg("tournament stopped")
}

func (b *baseMode) announceResult() {
	switch {
	case b.victories.Red > b.victories.Blue:
		b.room.SendAnnouncement(fmt.Sprintf("🏆 Tournament over! Team 🔴 wins %d:%d 🔵. Well played! 👏", b.victories.Red, b.victories.Blue))
	case b.victories.Blue > b.victories.Red:
		b.room.SendAnnouncement(fmt.Sprintf("🏆 Tournament over! Team 🔵 wins %d:%d 🔴. Well played! 👏", b.victories.Blue, b.victories.Red))
	default:
		b.room.SendAnnouncement("🏆 Tournament over! It's a draw 🤷")
	}
}

// stop is the exported-path Stop: same as stopLocked but taking the lock.
func (b *baseMode) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

// reset drops lifecycle state before a Restart without announcing anything.
func (b *baseMode) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.started = false
	b.finished = false
	b.generation++
	b.room.StopGame()
}

// randomizeTeams clears both teams and draws two fresh ones. The effective
// team size is the configured one when enough players are present, otherwise
// half the pool; when that still resolves to zero everyone is coin-flipped
// onto a side.
func (b *baseMode) randomizeTeams(teamSize int) {
	pool := b.room.GetPlayerList()
	maxTeamSize := len(pool) / 2
	if teamSize > 0 && len(pool) >= teamSize*2 {
		maxTeamSize = teamSize
	}

	for _, p := range pool {
		if p.Team != room.Team_SPECTATORS {
			b.room.SetPlayerTeam(p.ID, room.Team_SPECTATORS)
		}
	}

	for _, p := range PopNRandomElements(&pool, maxTeamSize) {
		b.room.SetPlayerTeam(p.ID, room.Team_RED)
	}
	for _, p := range PopNRandomElements(&pool, maxTeamSize) {
		b.room.SetPlayerTeam(p.ID, room.Team_BLUE)
	}

	if maxTeamSize <= 0 && len(pool) > 0 {
		for _, p := range pool {
			team := room.Team_RED
			if rand.Intn(2) == 0 {
				team = room.Team_BLUE
			}
			b.room.SetPlayerTeam(p.ID, team)
		}
	}
}

// swapTeams moves every red player to blue and vice versa. Spectators stay.
func (b *baseMode) swapTeams() {
	for _, p := range b.room.GetPlayerList() {
		switch p.Team {
		case room.Team_RED:
			b.room.SetPlayerTeam(p.ID, room.Team_BLUE)
		case room.Team_BLUE:
			b.room.SetPlayerTeam(p.ID, room.Team_RED)
		}
	}
}

// fillTeamsFromBench tops both teams up to the target size with randomly
// drawn spectators, favouring the smaller team first and alternating sides
// for the remainder.
func (b *baseMode) fillTeamsFromBench(teamSize int) {
	pool := b.room.GetPlayerList()
	var red, blue, bench []room.Player
	for _, p := range pool {
		switch p.Team {
		case room.Team_RED:
			red = append(red, p)
		case room.Team_BLUE:
			blue = append(blue, p)
		default:
			bench = append(bench, p)
		}
	}

	if len(red) >= teamSize && len(blue) >= teamSize {
		return
	}

	chosen := PopNRandomElements(&bench, teamSize*2-len(red)-len(blue))
	if len(chosen) == 0 {
		return
	}

	b.room.SendAnnouncement("Assigning players from the bench to teams")

	difference := len(red) - len(blue)
	if difference != 0 {
		target := room.Team_RED
		if difference > 0 {
			target = room.Team_BLUE
		}
		for difference = abs(difference); difference > 0 && len(chosen) > 0; difference-- {
			p := chosen[len(chosen)-1]
			chosen = chosen[:len(chosen)-1]
			b.room.SetPlayerTeam(p.ID, target)
		}
	}

	target := room.Team_RED
	if rand.Intn(2) == 0 {
		target = room.Team_BLUE
	}
	for len(chosen) > 0 {
		p := chosen[len(chosen)-1]
		chosen = chosen[:len(chosen)-1]
		b.room.SetPlayerTeam(p.ID, target)
		if target == room.Team_RED {
			target = room.Team_BLUE
		} else {
			target = room.Team_RED
		}
	}
}

// autoBalance moves surplus players, two at a time, from the larger team to
// the smaller one once the sizes drift apart by two or more.
func (b *baseMode) autoBalance() {
	var red, blue []room.Player
	for _, p := range b.room.GetPlayerList() {
		switch p.Team {
		case room.Team_RED:
			red = append(red, p)
		case room.Team_BLUE:
			blue = append(blue, p)
		}
	}

	difference := len(red) - len(blue)
	if abs(difference) < 2 {
		return
	}

	b.room.SendAnnouncement("Evening out the team sizes")

	from, to := &red, room.Team_BLUE
	if difference < 0 {
		from, to = &blue, room.Team_RED
	}

	for difference = abs(difference); difference >= 2; difference -= 2 {
		if p, ok := PopRandomElement(from); ok {
			b.room.SetPlayerTeam(p.ID, to)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
