package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwalczak/matchroom/mode"
	"github.com/pwalczak/matchroom/players"
	"github.com/pwalczak/matchroom/room"
	"github.com/pwalczak/matchroom/room/roomtest"
	"github.com/pwalczak/matchroom/schedule"
	"github.com/pwalczak/matchroom/storage"
)

type fixture struct {
	ctrl     *roomtest.Controller
	registry *players.Registry
	store    *storage.Memory
	sched    *schedule.Manual
	manager  *Manager
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctrl:  roomtest.New(),
		store: storage.NewMemory(),
		sched: schedule.NewManual(),
		now:   time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.registry = players.NewRegistry(f.ctrl, f.store, zerolog.Nop(), players.WithClock(clock))
	f.manager = NewManager(f.ctrl, f.registry, f.store, f.sched, zerolog.Nop(), WithClock(clock))
	return f
}

// join puts a player in the fake room and registers them.
func (f *fixture) join(t *testing.T, id int, name, auth string, team room.TeamID) room.Player {
	t.Helper()
	p := f.ctrl.AddPlayer(room.Player{ID: id, Name: name, Auth: auth, Team: team})
	require.NoError(t, f.registry.Register(p))
	return p
}

func TestManagerSeedsDefaultLimits(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, 3, f.manager.ScoreLimit())
	assert.Equal(t, 3, f.manager.TimeLimit())

	stored, err := f.store.Get("game.score-limit")
	require.NoError(t, err)
	assert.Equal(t, 3, stored)
}

func TestManagerSeedsConfiguredDefaults(t *testing.T) {
	ctrl := roomtest.New()
	store := storage.NewMemory()
	registry := players.NewRegistry(ctrl, store, zerolog.Nop())
	m := NewManager(ctrl, registry, store, schedule.NewManual(), zerolog.Nop(), WithDefaultLimits(2, 7))

	assert.Equal(t, 2, m.ScoreLimit())
	assert.Equal(t, 7, m.TimeLimit())
}

func TestManagerRestoresStoredLimits(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set("game.score-limit", 5))
	require.NoError(t, store.Set("game.time-limit", 10))

	ctrl := roomtest.New()
	registry := players.NewRegistry(ctrl, store, zerolog.Nop())
	m := NewManager(ctrl, registry, store, schedule.NewManual(), zerolog.Nop())

	assert.Equal(t, 5, m.ScoreLimit())
	assert.Equal(t, 10, m.TimeLimit())
}

func TestManagerSetLimitsPersistAndPush(t *testing.T) {
	f := newFixture(t)

	f.manager.SetScoreLimit(7)
	f.manager.SetTimeLimit(5)

	assert.Equal(t, 7, f.ctrl.ScoreLimit())
	assert.Equal(t, 5, f.ctrl.TimeLimit())

	stored, err := f.store.Get("game.score-limit")
	require.NoError(t, err)
	assert.Equal(t, 7, stored)
}

func TestManagerHandleGameStartAdoptsHostLimits(t *testing.T) {
	f := newFixture(t)

	// The host edited the limits in the room UI.
	f.ctrl.SetScoreLimit(9)
	f.manager.HandleGameStart()

	assert.Equal(t, 9, f.manager.ScoreLimit())
	stored, err := f.store.Get("game.score-limit")
	require.NoError(t, err)
	assert.Equal(t, 9, stored)
}

func TestManagerStartLifecycle(t *testing.T) {
	f := newFixture(t)
	f.join(t, 1, "alice", "auth-a", room.Team_SPECTATORS)
	f.join(t, 2, "bob", "auth-b", room.Team_SPECTATORS)

	assert.False(t, f.manager.InProgress())
	assert.Equal(t, mode.FormatNoop, f.manager.Format())

	require.NoError(t, f.manager.Start("bo", map[string]string{"limit": "3", "teamsize": "1"}))
	assert.True(t, f.manager.InProgress())
	assert.Equal(t, mode.FormatBestOf, f.manager.Format())

	assert.ErrorIs(t, f.manager.Start("ut", nil), mode.ErrMatchInProgress)

	f.manager.Stop()
	assert.False(t, f.manager.InProgress())
}

func TestManagerStartRejectsBadConfig(t *testing.T) {
	f := newFixture(t)
	f.join(t, 1, "alice", "auth-a", room.Team_SPECTATORS)
	f.join(t, 2, "bob", "auth-b", room.Team_SPECTATORS)

	var configErr *mode.ConfigError
	require.ErrorAs(t, f.manager.Start("cup", nil), &configErr)
	require.ErrorAs(t, f.manager.Start("bo", map[string]string{"limit": "2"}), &configErr)

	// The failed attempts did not install an engine.
	assert.Equal(t, mode.FormatNoop, f.manager.Format())
}

func TestManagerStartPrevious(t *testing.T) {
	f := newFixture(t)
	f.join(t, 1, "alice", "auth-a", room.Team_SPECTATORS)
	f.join(t, 2, "bob", "auth-b", room.Team_SPECTATORS)

	var configErr *mode.ConfigError
	require.ErrorAs(t, f.manager.Start(FormatPrevious, nil), &configErr)

	require.NoError(t, f.manager.Start("ut", map[string]string{"limit": "5", "teamsize": "1"}))
	f.manager.End()
	assert.Equal(t, mode.FormatNoop, f.manager.Format())

	require.NoError(t, f.manager.Start(FormatPrevious, nil))
	assert.Equal(t, mode.FormatRaceTo, f.manager.Format())
	assert.True(t, f.manager.InProgress())
}

func TestBallTouchStack(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	b := f.join(t, 2, "bob", "auth-b", room.Team_BLUE)
	c := f.join(t, 3, "carol", "auth-c", room.Team_RED)

	f.manager.RegisterBallTouch(a)
	f.manager.RegisterBallTouch(a)
	touches := f.manager.BallTouches()
	require.Len(t, touches, 1)
	assert.Equal(t, "auth-a", touches[0].Auth)

	f.manager.RegisterBallTouch(b)
	touches = f.manager.BallTouches()
	require.Len(t, touches, 2)
	assert.Equal(t, "auth-b", touches[0].Auth)
	assert.Equal(t, "auth-a", touches[1].Auth)

	f.manager.RegisterBallTouch(c)
	touches = f.manager.BallTouches()
	require.Len(t, touches, 2)
	assert.Equal(t, "auth-c", touches[0].Auth)
	assert.Equal(t, "auth-b", touches[1].Auth)

	f.manager.ResetBallTouches()
	assert.Empty(t, f.manager.BallTouches())
}

func TestBallTouchAssistWindowExpires(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	b := f.join(t, 2, "bob", "auth-b", room.Team_RED)

	f.manager.RegisterBallTouch(a)
	f.now = f.now.Add(AssistValidFor + time.Second)
	f.manager.RegisterBallTouch(b)

	touches := f.manager.BallTouches()
	require.Len(t, touches, 1)
	assert.Equal(t, "auth-b", touches[0].Auth)
}

func TestHandleGoalCreditsScorer(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 65})

	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_RED)

	record, _ := f.registry.Get("auth-a")
	assert.Equal(t, 1, record.Goals)
	assert.Zero(t, record.OwnGoals)

	goals := f.manager.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, "auth-a", goals[0].ScoredBy)
	assert.Empty(t, goals[0].AssistedBy)
	assert.Equal(t, float64(65), goals[0].ScoredAt)
	assert.Equal(t, room.Team_RED, goals[0].ByTeam)
	assert.NotEmpty(t, goals[0].ID)

	require.NotEmpty(t, f.ctrl.Announcements)
	assert.Contains(t, f.ctrl.Announcements[len(f.ctrl.Announcements)-1], "Goal by alice")
	assert.Contains(t, f.ctrl.Announcements[len(f.ctrl.Announcements)-1], "01:05")
}

func TestHandleGoalDebitsOwnGoal(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 10})

	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_BLUE)

	record, _ := f.registry.Get("auth-a")
	assert.Zero(t, record.Goals)
	assert.Equal(t, 1, record.OwnGoals)
	assert.Contains(t, f.ctrl.Announcements[len(f.ctrl.Announcements)-1], "Own goal by alice")
}

func TestHandleGoalCreditsAssist(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	b := f.join(t, 2, "bob", "auth-b", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 30})

	f.manager.RegisterBallTouch(b)
	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_RED)

	aliceRecord, _ := f.registry.Get("auth-a")
	bobRecord, _ := f.registry.Get("auth-b")
	assert.Equal(t, 1, aliceRecord.Goals)
	assert.Equal(t, 1, bobRecord.Assists)

	goals := f.manager.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, "auth-a", goals[0].ScoredBy)
	assert.Equal(t, "auth-b", goals[0].AssistedBy)
	assert.Contains(t, f.ctrl.Announcements[len(f.ctrl.Announcements)-1], "Assist by bob")
}

func TestHandleGoalWithoutTouchesIsUnattributed(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SetScores(&room.Scores{Time: 5})

	f.manager.HandleGoal(room.Team_BLUE)

	goals := f.manager.Goals()
	require.Len(t, goals, 1)
	assert.Empty(t, goals[0].ScoredBy)
	assert.Equal(t, room.Team_BLUE, goals[0].ByTeam)
}

func TestHandleGoalByDepartedPlayer(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 40})

	f.manager.RegisterBallTouch(a)
	f.ctrl.RemovePlayer(1)
	f.registry.Disconnect(1)

	f.manager.HandleGoal(room.Team_RED)

	// No team to compare against: announced, not counted.
	record, _ := f.registry.Get("auth-a")
	assert.Zero(t, record.Goals)
	assert.Zero(t, record.OwnGoals)

	goals := f.manager.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, "auth-a", goals[0].ScoredBy)
	assert.Contains(t, f.ctrl.Announcements[len(f.ctrl.Announcements)-1], "Goal by alice")
}

func TestGameGoalsConsumesPerGame(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 10})

	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_RED)

	game1 := f.manager.GameGoals()
	require.Len(t, game1, 1)
	assert.Equal(t, "auth-a", game1[0].ScoredBy)

	// Nothing scored since; the next game's summary must be empty.
	assert.Empty(t, f.manager.GameGoals())

	f.manager.ResetBallTouches()
	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_BLUE)

	game2 := f.manager.GameGoals()
	require.Len(t, game2, 1)
	assert.Equal(t, room.Team_BLUE, game2[0].ByTeam)

	// The tournament ledger still holds everything.
	assert.Len(t, f.manager.Goals(), 2)
}

func TestGoalAnnouncementCarriesColorAndSound(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 10})

	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_RED)

	require.NotEmpty(t, f.ctrl.Announces)
	goal := f.ctrl.Announces[len(f.ctrl.Announces)-1]
	assert.Equal(t, goalColor, goal.Color)
	assert.Equal(t, goalSound, goal.Sound)

	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_BLUE)

	own := f.ctrl.Announces[len(f.ctrl.Announces)-1]
	assert.Equal(t, ownGoalColor, own.Color)
}

func TestStopClearsLedgers(t *testing.T) {
	f := newFixture(t)
	a := f.join(t, 1, "alice", "auth-a", room.Team_RED)
	f.ctrl.SetScores(&room.Scores{Time: 1})

	f.manager.RegisterBallTouch(a)
	f.manager.HandleGoal(room.Team_RED)
	require.NotEmpty(t, f.manager.Goals())

	f.manager.Stop()

	assert.Empty(t, f.manager.Goals())
	assert.Empty(t, f.manager.BallTouches())
}
