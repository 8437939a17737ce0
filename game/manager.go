package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/pwalczak/matchroom/mode"
	"github.com/pwalczak/matchroom/players"
	"github.com/pwalczak/matchroom/room"
	"github.com/pwalczak/matchroom/schedule"
	"github.com/pwalczak/matchroom/storage"
)

const (
	scoreLimitKey = "score-limit"
	timeLimitKey  = "time-limit"

	defaultScoreLimit = 3
	defaultTimeLimit  = 3
)

// FormatPrevious restarts whatever format ran last, with its last arguments.
const FormatPrevious = "previous"

// Goal announcements are colored by outcome and carry the notification
// sound, so a goal is noticeable even with chat scrolled away.
const (
	goalColor    = 0x7CFC00
	ownGoalColor = 0xFFA070
	goalSound    = 2
)

// Manager owns the active tournament engine and everything per-match: the
// host score and time limits, the ball-touch stack and the goal ledger. It
// is the single writer of those limits in the persistent store, under the
// "game." scope.
type Manager struct {
	room     room.Controller
	registry *players.Registry
	store    storage.Storage
	sched    schedule.Scheduler
	log      zerolog.Logger
	now      func() time.Time

	defaultScoreLimit int
	defaultTimeLimit  int

	mu         sync.Mutex
	engine     mode.GameMode
	lastFormat string
	lastArgs   map[string]string
	scoreLimit int
	timeLimit  int
	touches    []BallTouch
	goals      []GoalInfo
	// summarized marks how much of the ledger earlier game summaries have
	// already consumed.
	summarized int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock swaps the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithDefaultLimits overrides the limits seeded on a fresh store.
func WithDefaultLimits(score, minutes int) Option {
	return func(m *Manager) {
		m.defaultScoreLimit = score
		m.defaultTimeLimit = minutes
	}
}

// NewManager restores the score and time limits from the store, seeding the
// defaults on first run, and installs an inert engine until Start is called.
func NewManager(ctrl room.Controller, registry *players.Registry, store storage.Storage, sched schedule.Scheduler, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		room:              ctrl,
		registry:          registry,
		store:             storage.NewScoped(store, "game."),
		sched:             sched,
		log:               log.With().Str("component", "game").Logger(),
		now:               time.Now,
		engine:            mode.Noop{},
		defaultScoreLimit: defaultScoreLimit,
		defaultTimeLimit:  defaultTimeLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.scoreLimit = m.loadLimit(scoreLimitKey, m.defaultScoreLimit)
	m.timeLimit = m.loadLimit(timeLimitKey, m.defaultTimeLimit)
	return m
}

func (m *Manager) loadLimit(key string, def int) int {
	v, err := m.store.Get(key)
	if err != nil {
		var decodeErr *storage.DecodeError
		if !errors.Is(err, storage.ErrNotFound) && !errors.As(err, &decodeErr) {
			m.log.Error().Err(err).Str("key", key).Msg("reading stored limit")
			return def
		}
		if err := m.store.Set(key, def); err != nil {
			m.log.Error().Err(err).Str("key", key).Msg("seeding stored limit")
		}
		return def
	}
	limit, ok := v.(int)
	if !ok {
		m.log.Warn().Str("key", key).Msg("stored limit has unexpected type, using default")
		return def
	}
	return limit
}

// Start brings up a tournament engine of the given format and starts it.
// The special format "previous" reruns the last configured format with its
// last arguments. The incumbent engine is kept when the new one fails to
// configure or start.
func (m *Manager) Start(format string, args map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine.InProgress() {
		return mode.ErrMatchInProgress
	}
	if format == FormatPrevious {
		if m.lastFormat == "" {
			return &mode.ConfigError{Reason: "no previous tournament to resume"}
		}
		format, args = m.lastFormat, m.lastArgs
	}

	engine, err := mode.New(format, mode.Deps{Room: m.room, Sched: m.sched, Log: m.log}, args)
	if err != nil {
		return err
	}
	if err := engine.Start(); err != nil {
		return err
	}
	m.engine = engine
	m.lastFormat = format
	m.lastArgs = args
	m.log.Info().Str("format", format).Int("limit", engine.Limit()).Msg("tournament started")
	return nil
}

// Stop ends the running tournament and clears the per-tournament ledgers.
// The engine stays configured, so a later Restart resumes the same format.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Stop()
	m.touches = nil
	m.goals = nil
	m.summarized = 0
}

// End is Stop plus tearing the engine down to the inert one.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engine.Stop()
	m.engine = mode.Noop{}
	m.touches = nil
	m.goals = nil
	m.summarized = 0
}

// Restart reruns the configured engine from a clean slate.
func (m *Manager) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Restart()
}

// HandleVictory forwards a finished round to the engine.
func (m *Manager) HandleVictory(scores room.Scores) {
	m.mu.Lock()
	engine := m.engine
	m.mu.Unlock()
	engine.RegisterVictory(scores)
}

// Format reports the configured format, or the inert one when none is.
func (m *Manager) Format() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Format()
}

func (m *Manager) Limit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Limit()
}

func (m *Manager) TeamSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.TeamSize()
}

func (m *Manager) Victories() mode.Score {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.Victories()
}

func (m *Manager) MatchesPlayed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.MatchesPlayed()
}

func (m *Manager) InProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine.InProgress()
}

// ScoreLimit returns the stored per-room score limit.
func (m *Manager) ScoreLimit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoreLimit
}

// TimeLimit returns the stored per-room time limit, in minutes.
func (m *Manager) TimeLimit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timeLimit
}

// SetScoreLimit persists the limit and pushes it to the room.
func (m *Manager) SetScoreLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreLimit = limit
	m.persistLimit(scoreLimitKey, limit)
	m.room.SetScoreLimit(limit)
}

// SetTimeLimit persists the limit and pushes it to the room.
func (m *Manager) SetTimeLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeLimit = limit
	m.persistLimit(timeLimitKey, limit)
	m.room.SetTimeLimit(limit)
}

func (m *Manager) persistLimit(key string, limit int) {
	if err := m.store.Set(key, limit); err != nil {
		m.log.Error().Err(err).Str("key", key).Msg("persisting limit")
	}
}

// HandleGameStart records the limits the host actually started the game
// with. Hosts can edit limits in the room UI between games, and the edited
// values win over the stored ones.
func (m *Manager) HandleGameStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit := m.room.ScoreLimit(); limit != m.scoreLimit {
		m.scoreLimit = limit
		m.persistLimit(scoreLimitKey, limit)
	}
	if limit := m.room.TimeLimit(); limit != m.timeLimit {
		m.timeLimit = limit
		m.persistLimit(timeLimitKey, limit)
	}
}

// RegisterBallTouch pushes a touch by the given player onto the touch stack.
// A repeat touch by the current front player is dropped, and only the two
// most recent distinct touchers are kept.
func (m *Manager) RegisterBallTouch(p room.Player) {
	auth, err := m.registry.ResolveAuth(p)
	if err != nil {
		m.log.Debug().Int("player_id", p.ID).Msg("ball touch by unregistered player")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.touches) > 0 && m.touches[0].Auth == auth {
		return
	}
	m.touches = append([]BallTouch{{Auth: auth, TouchedAt: m.now()}}, m.touches...)
	if len(m.touches) > 2 {
		m.touches = m.touches[:2]
	}
}

// BallTouches returns the touch stack, most recent first. A second touch
// older than AssistValidFor has aged out of assist range and is dropped.
func (m *Manager) BallTouches() []BallTouch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ballTouchesLocked()
}

func (m *Manager) ballTouchesLocked() []BallTouch {
	if len(m.touches) > 1 && m.now().Sub(m.touches[1].TouchedAt) > AssistValidFor {
		m.touches = m.touches[:1]
	}
	out := make([]BallTouch, len(m.touches))
	copy(out, m.touches)
	return out
}

// ResetBallTouches empties the touch stack, for positions resets where prior
// touches must not leak into the next phase of play.
func (m *Manager) ResetBallTouches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touches = nil
}

// HandleGoal attributes a goal scored for the given team using the touch
// stack, bumps player statistics, announces the result and appends a ledger
// entry. A goal with no recorded touches stays unattributed.
func (m *Manager) HandleGoal(team room.TeamID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var clock float64
	if scores, ok := m.room.GetScores(); ok {
		clock = scores.Time
	}

	touches := m.ballTouchesLocked()
	if len(touches) == 0 {
		m.goals = append(m.goals, GoalInfo{ID: xid.New().String(), ScoredAt: clock, ByTeam: team})
		return
	}

	shooterAuth := touches[0].Auth
	shooterName := m.recordName(shooterAuth)
	var message string
	color := goalColor
	if shooter, ok := m.registry.ActivePlayer(shooterAuth); ok {
		if shooter.Team == team {
			m.registry.AddGoal(shooterAuth)
			message = fmt.Sprintf("⚽ [%s] Goal by %s!", FormatClock(clock), shooter.Name)
		} else {
			m.registry.AddOwnGoal(shooterAuth)
			color = ownGoalColor
			message = fmt.Sprintf("😂 [%s] Own goal by %s!", FormatClock(clock), shooter.Name)
		}
	} else {
		message = fmt.Sprintf("⚽ [%s] Goal by %s!", FormatClock(clock), shooterName)
	}

	entry := GoalInfo{ID: xid.New().String(), ScoredBy: shooterAuth, ScoredAt: clock, ByTeam: team}
	if len(touches) == 2 {
		assistAuth := touches[1].Auth
		m.registry.AddAssist(assistAuth)
		entry.AssistedBy = assistAuth
		message += fmt.Sprintf(" Assist by %s.", m.recordName(assistAuth))
	}
	m.goals = append(m.goals, entry)
	m.room.SendAnnouncement(message, room.Color(color), room.Sound(goalSound))
}

func (m *Manager) recordName(auth string) string {
	if record, ok := m.registry.Get(auth); ok {
		return record.Name
	}
	return auth
}

// Goals returns a copy of the goal ledger in scoring order.
func (m *Manager) Goals() []GoalInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GoalInfo, len(m.goals))
	copy(out, m.goals)
	return out
}

// GameGoals returns the goals of the game that just ended: everything scored
// since the previous call, marked consumed. The tournament ledger itself
// stays intact for Goals.
func (m *Manager) GameGoals() []GoalInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GoalInfo, len(m.goals)-m.summarized)
	copy(out, m.goals[m.summarized:])
	m.summarized = len(m.goals)
	return out
}
