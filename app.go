package matchroom

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/pwalczak/matchroom/game"
	"github.com/pwalczak/matchroom/players"
	"github.com/pwalczak/matchroom/room"
	"github.com/pwalczak/matchroom/schedule"
	"github.com/pwalczak/matchroom/storage"
)

// App wires the room supervisor together: the layered store, the player
// registry, the match manager and the background jobs. Host adapters feed it
// room events through the On* methods.
type App struct {
	cfg      Config
	log      zerolog.Logger
	room     room.Controller
	db       *storage.Bolt
	Registry *players.Registry
	Manager  *game.Manager
	sched    *schedule.Cron
	stats    *http.Server
}

// NewApp builds the full application context around a room controller.
func NewApp(cfg Config, ctrl room.Controller, log zerolog.Logger) (*App, error) {
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	app := &App{cfg: cfg, log: log, room: ctrl}

	var backing storage.Storage
	if cfg.StoragePath != "" {
		db, err := storage.OpenBolt(cfg.StoragePath)
		if err != nil {
			return nil, eris.Wrap(err, "opening storage")
		}
		app.db = db
		backing = db
	} else {
		backing = storage.NewMemory()
	}

	transforming, err := storage.NewTransforming(backing, []storage.Transformer{
		players.RecordTransformer{},
		storage.IntTransformer{KeySuffixes: []string{"score-limit", "time-limit"}},
	}, log)
	if err != nil {
		return nil, err
	}
	store := storage.NewScoped(storage.NewCaching(transforming), cfg.RoomPrefix)

	sched, err := schedule.NewCron(log)
	if err != nil {
		return nil, eris.Wrap(err, "starting scheduler")
	}
	app.sched = sched

	app.Registry = players.NewRegistry(ctrl, store, log)
	admins, err := cfg.Admins()
	if err != nil {
		return nil, err
	}
	app.Registry.SetAdmins(admins)

	app.Manager = game.NewManager(ctrl, app.Registry, store, sched, log,
		game.WithDefaultLimits(cfg.DefaultScoreLimit, cfg.DefaultTimeLimit))
	ctrl.SetScoreLimit(app.Manager.ScoreLimit())
	ctrl.SetTimeLimit(app.Manager.TimeLimit())

	sched.Every(cfg.FlushInterval, app.Registry.Flush)

	if cfg.StatsAddr != "" {
		app.stats = &http.Server{Addr: cfg.StatsAddr, Handler: newStatsHandler(app.Registry, app.Manager)}
		go func() {
			if err := app.stats.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("stats server stopped")
			}
		}()
	}

	return app, nil
}

// Close flushes player records and tears the background machinery down.
func (a *App) Close() error {
	a.Registry.Flush()
	if err := a.sched.Shutdown(); err != nil {
		a.log.Error().Err(err).Msg("stopping scheduler")
	}
	if a.stats != nil {
		if err := a.stats.Close(); err != nil {
			a.log.Error().Err(err).Msg("stopping stats server")
		}
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// OnPlayerJoin registers the player, promotes pre-trusted admins and greets
// the newcomer. Players joining without an auth token are told so and are
// otherwise invisible to the supervisor.
func (a *App) OnPlayerJoin(p room.Player) {
	returning := a.Registry.Has(p.Auth)
	if err := a.Registry.Register(p); err != nil {
		a.log.Warn().Err(err).Str("name", p.Name).Msg("player cannot be registered")
		a.room.SendAnnouncement("Your client did not provide a player auth token, so your stats cannot be tracked.",
			room.To(p.ID), room.Color(0xFF7070))
		return
	}
	if a.Registry.VerifyAdminAuthToken(p.Auth) {
		a.room.SetPlayerAdmin(p.ID, true)
	}
	if returning {
		total := a.Registry.TotalTimeOnServer(p.Auth).Round(time.Minute)
		a.room.SendAnnouncement(fmt.Sprintf("Welcome back, %s! Time spent here so far: %s.", p.Name, total))
	} else {
		a.room.SendAnnouncement(fmt.Sprintf("Welcome, %s!", p.Name))
	}
}

// OnPlayerLeave closes the player's session and persists the record.
func (a *App) OnPlayerLeave(p room.Player) {
	a.Registry.Disconnect(p)
}

// OnTeamVictory forwards a finished match to the active tournament engine.
func (a *App) OnTeamVictory(scores room.Scores) {
	a.Manager.HandleVictory(scores)
}

// OnTeamGoal attributes the goal from the recent ball touches.
func (a *App) OnTeamGoal(team room.TeamID) {
	a.Manager.HandleGoal(team)
}

// OnGameStart syncs host-edited limits and clears touch state left over from
// the previous game.
func (a *App) OnGameStart() {
	a.Manager.HandleGameStart()
	a.Manager.ResetBallTouches()
}

// OnGameStop announces the goal summary of the finished game.
func (a *App) OnGameStop() {
	goals := a.Manager.GameGoals()
	if len(goals) == 0 {
		return
	}
	a.room.SendAnnouncement("Goals this game:", room.Styled(room.StyleBold))
	for _, g := range goals {
		line := fmt.Sprintf("  [%s] %s", game.FormatClock(g.ScoredAt), a.goalScorer(g))
		if g.AssistedBy != "" {
			line += fmt.Sprintf(" (assist: %s)", a.playerName(g.AssistedBy))
		}
		a.room.SendAnnouncement(line)
	}
}

func (a *App) goalScorer(g game.GoalInfo) string {
	if g.ScoredBy == "" {
		return "unattributed"
	}
	return a.playerName(g.ScoredBy)
}

func (a *App) playerName(auth string) string {
	if record, ok := a.Registry.Get(auth); ok {
		return record.Name
	}
	return auth
}

// OnPositionsReset drops recorded ball touches so a kickoff starts clean.
func (a *App) OnPositionsReset() {
	a.Manager.ResetBallTouches()
}

// OnPlayerBallKick records a deliberate touch.
func (a *App) OnPlayerBallKick(p room.Player) {
	a.Manager.RegisterBallTouch(p)
}

// OnGameTick scans for an outfield player close enough to the ball to count
// as touching it. Only the closest such player is recorded.
func (a *App) OnGameTick() {
	ball, ok := a.room.BallDisc()
	if !ok {
		return
	}
	var (
		closest  room.Player
		found    bool
		shortest float64
	)
	for _, p := range a.room.GetPlayerList() {
		if p.Team == room.Team_SPECTATORS {
			continue
		}
		disc, ok := a.room.PlayerDisc(p.ID)
		if !ok {
			continue
		}
		gap := discGap(disc, ball)
		if gap > game.TouchedBallThreshold {
			continue
		}
		if !found || gap < shortest {
			closest, shortest, found = p, gap, true
		}
	}
	if found {
		a.Manager.RegisterBallTouch(closest)
	}
}

// discGap is the edge-to-edge distance between two discs.
func discGap(a, b room.Disc) float64 {
	dx := a.Position.X - b.Position.X
	dy := a.Position.Y - b.Position.Y
	return math.Sqrt(dx*dx+dy*dy) - a.Radius - b.Radius
}
