// Package schedule is the deferred-action layer: fire-once timers for round
// transitions and recurring jobs for durability flushes. The production
// implementation rides on gocron; Manual drives callbacks by hand in tests.
package schedule

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Scheduler registers deferred actions. A callback registered with After runs
// exactly once, strictly after the registering call returns; there is no
// cancellation, so callbacks must re-check that they are still relevant
// before mutating shared state.
type Scheduler interface {
	After(delay time.Duration, fn func())
	Every(interval time.Duration, fn func())
}

// Cron is the gocron-backed Scheduler.
type Cron struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger
}

// NewCron starts a scheduler. Callers own its lifetime and must Shutdown it.
func NewCron(log zerolog.Logger) (*Cron, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, eris.Wrap(err, "schedule: cannot create scheduler")
	}
	s.Start()
	return &Cron{
		scheduler: s,
		log:       log.With().Str("component", "schedule").Logger(),
	}, nil
}

func (c *Cron) After(delay time.Duration, fn func()) {
	_, err := c.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(c.guarded(fn)),
	)
	if err != nil {
		c.log.Error().Err(err).Dur("delay", delay).Msg("cannot register one-time job")
	}
}

func (c *Cron) Every(interval time.Duration, fn func()) {
	_, err := c.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(c.guarded(fn)),
	)
	if err != nil {
		c.log.Error().Err(err).Dur("interval", interval).Msg("cannot register recurring job")
	}
}

// Shutdown stops the scheduler and waits for running jobs.
func (c *Cron) Shutdown() error {
	return eris.Wrap(c.scheduler.Shutdown(), "schedule: shutdown")
}

// guarded keeps a panicking callback from killing the scheduler worker; no
// boundary above a timer exists to catch it.
func (c *Cron) guarded(fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Msg("scheduled callback panicked")
			}
		}()
		fn()
	}
}

var _ Scheduler = (*Cron)(nil)

// Manual is a Scheduler for tests: callbacks queue up until Fire drains them.
type Manual struct {
	pending   []func()
	recurring []func()
}

// NewManual returns an empty manual scheduler.
func NewManual() *Manual { return &Manual{} }

func (m *Manual) After(_ time.Duration, fn func()) {
	m.pending = append(m.pending, fn)
}

func (m *Manual) Every(_ time.Duration, fn func()) {
	m.recurring = append(m.recurring, fn)
}

// Fire runs and clears every pending one-time callback, in registration
// order, and returns how many ran.
func (m *Manual) Fire() int {
	pending := m.pending
	m.pending = nil
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Tick runs every recurring callback once.
func (m *Manual) Tick() {
	for _, fn := range m.recurring {
		fn()
	}
}

// PendingCount reports the number of one-time callbacks not yet fired.
func (m *Manual) PendingCount() int { return len(m.pending) }

var _ Scheduler = (*Manual)(nil)
