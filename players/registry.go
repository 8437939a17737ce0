// Package players maps transient in-room player handles to durable identity
// (auth tokens) and keeps lifetime statistics for every identity the server
// has ever seen, persisted through a scoped store.
package players

import (
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/pwalczak/matchroom/room"
	"github.com/pwalczak/matchroom/storage"
)

// ErrMissingAuth rejects registering a player the host could not verify.
var ErrMissingAuth = eris.New("players: cannot register a player without an auth token")

// ErrUnknownPlayer reports a player reference that resolves to nobody.
// Callers treat it as recoverable, e.g. a player gone mid-event.
var ErrUnknownPlayer = eris.New("players: cannot resolve player reference: unknown player")

const scopePrefix = "player."

// Registry owns the player records of one room.
type Registry struct {
	room  room.Controller
	store storage.Storage
	log   zerolog.Logger
	now   func() time.Time

	mu       sync.Mutex
	records  map[string]*Record
	idToAuth map[int]string
	admins   []Credential
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock substitutes the registry's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry loads every record reachable through the store. Records that
// fail to decode are skipped: one corrupted legacy entry must not abort
// startup. The store is scoped under "player." internally.
func NewRegistry(ctrl room.Controller, store storage.Storage, log zerolog.Logger, opts ...Option) *Registry {
	r := &Registry{
		room:     ctrl,
		store:    storage.NewScoped(store, scopePrefix),
		log:      log.With().Str("component", "players").Logger(),
		now:      time.Now,
		records:  map[string]*Record{},
		idToAuth: map[int]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.load()
	return r
}

func (r *Registry) load() {
	all, err := r.store.All(nil)
	if err != nil {
		r.log.Error().Err(err).Msg("cannot enumerate stored player records")
		return
	}
	for key, value := range all {
		auth, ok := authFromKey(key)
		if !ok {
			continue
		}
		record, ok := value.(*Record)
		if !ok {
			r.log.Warn().Str("key", key).Msg("skipping unparseable player record")
			continue
		}
		// Nobody is on the server at load time, whatever the record says.
		record.Connected = false
		record.AFK = false
		record.LoggedInAt = nil
		r.records[auth] = record
	}
	r.log.Info().Int("records", len(r.records)).Msg("player records loaded")
}

// authFromKey strips everything up to and including the last "player."
// segment. Stores return keys unstripped of decorator prefixes.
func authFromKey(key string) (string, bool) {
	idx := strings.LastIndex(key, scopePrefix)
	if idx < 0 {
		return "", false
	}
	auth := key[idx+len(scopePrefix):]
	return auth, auth != ""
}

// SetAdmins installs the operator-curated credential list.
func (r *Registry) SetAdmins(admins []Credential) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins = admins
}

// Register establishes the session mapping for a joined player and creates or
// refreshes their record, persisting it immediately.
func (r *Registry) Register(p room.Player) error {
	if p.Auth == "" {
		return ErrMissingAuth
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.idToAuth[p.ID] = p.Auth

	record, ok := r.records[p.Auth]
	if !ok {
		record = &Record{Auth: p.Auth}
		r.records[p.Auth] = record
	}

	now := r.now().UnixMilli()
	record.Name = p.Name
	record.Connected = true
	record.AFK = false
	record.LoggedInAt = &now

	r.persistLocked(p.Auth, record)

	return nil
}

// ResolveAuth resolves a player reference to an auth token. It accepts a
// known auth token string, a room.Player (auth preferred, session id as
// fallback) or a bare session id.
func (r *Registry) ResolveAuth(ref any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveAuthLocked(ref)
}

func (r *Registry) resolveAuthLocked(ref any) (string, error) {
	switch v := ref.(type) {
	case string:
		if _, ok := r.records[v]; ok {
			return v, nil
		}
	case room.Player:
		if v.Auth != "" {
			return v.Auth, nil
		}
		if auth, ok := r.idToAuth[v.ID]; ok {
			return auth, nil
		}
	case int:
		if auth, ok := r.idToAuth[v]; ok {
			return auth, nil
		}
	}
	return "", ErrUnknownPlayer
}

// Disconnect folds the finished session into the record and persists it.
// Resolution failures are swallowed: the player may already be fully gone.
func (r *Registry) Disconnect(ref any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auth, err := r.resolveAuthLocked(ref)
	if err != nil {
		r.log.Debug().Msg("disconnect for an unknown player, ignoring")
		return
	}

	record, ok := r.records[auth]
	if !ok {
		return
	}
	if record.LoggedInAt != nil {
		record.TotalTimeOnServer += r.now().UnixMilli() - *record.LoggedInAt
	}
	record.Connected = false
	record.LoggedInAt = nil

	r.persistLocked(auth, record)

	for id, mapped := range r.idToAuth {
		if mapped == auth {
			delete(r.idToAuth, id)
		}
	}
}

// Has reports whether a record exists for the reference.
func (r *Registry) Has(ref any) bool {
	_, ok := r.Get(ref)
	return ok
}

// Get returns the record for the reference.
func (r *Registry) Get(ref any) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auth, err := r.resolveAuthLocked(ref)
	if err != nil {
		return nil, false
	}
	record, ok := r.records[auth]
	return record, ok
}

// All returns every known record keyed by auth token.
func (r *Registry) All() map[string]*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make(map[string]*Record, len(r.records))
	for auth, record := range r.records {
		all[auth] = record
	}
	return all
}

// ActivePlayer returns the live room player for a reference, if the identity
// is currently in the room.
func (r *Registry) ActivePlayer(ref any) (room.Player, bool) {
	r.mu.Lock()
	auth, err := r.resolveAuthLocked(ref)
	if err != nil {
		r.mu.Unlock()
		return room.Player{}, false
	}
	var id int
	found := false
	for mappedID, mappedAuth := range r.idToAuth {
		if mappedAuth == auth {
			id, found = mappedID, true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return room.Player{}, false
	}
	return r.room.GetPlayer(id)
}

// IsConnected reports whether the referenced player is on the server.
func (r *Registry) IsConnected(ref any) bool {
	record, ok := r.Get(ref)
	return ok && record.Connected
}

// IsAFK reports whether the referenced player is marked away.
func (r *Registry) IsAFK(ref any) bool {
	record, ok := r.Get(ref)
	return ok && record.AFK
}

// SetAFK marks the referenced player away or back.
func (r *Registry) SetAFK(ref any, afk bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auth, err := r.resolveAuthLocked(ref)
	if err != nil {
		return
	}
	if record, ok := r.records[auth]; ok {
		record.AFK = afk
	}
}

// TotalTimeOnServer is the lifetime time on server including the running
// session.
func (r *Registry) TotalTimeOnServer(ref any) time.Duration {
	record, ok := r.Get(ref)
	if !ok {
		return 0
	}
	return time.Duration(record.TotalTimeOnServer)*time.Millisecond + r.TodayTimeOnServer(ref)
}

// TodayTimeOnServer is the running session's elapsed time, zero while
// disconnected.
func (r *Registry) TodayTimeOnServer(ref any) time.Duration {
	record, ok := r.Get(ref)
	if !ok || !record.Connected || record.LoggedInAt == nil {
		return 0
	}
	return time.Duration(r.now().UnixMilli()-*record.LoggedInAt) * time.Millisecond
}

// AddGoal credits a scored goal to the referenced player.
func (r *Registry) AddGoal(ref any) { r.addStat(ref, func(record *Record) { record.Goals++ }) }

// AddOwnGoal debits an own goal to the referenced player.
func (r *Registry) AddOwnGoal(ref any) { r.addStat(ref, func(record *Record) { record.OwnGoals++ }) }

// AddAssist credits an assist to the referenced player.
func (r *Registry) AddAssist(ref any) { r.addStat(ref, func(record *Record) { record.Assists++ }) }

func (r *Registry) addStat(ref any, bump func(*Record)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auth, err := r.resolveAuthLocked(ref)
	if err != nil {
		return
	}
	if record, ok := r.records[auth]; ok {
		bump(record)
	}
}

// Flush persists every known record. Used as a periodic durability safeguard
// and on shutdown.
func (r *Registry) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for auth, record := range r.records {
		r.persistLocked(auth, record)
	}
}

func (r *Registry) persistLocked(auth string, record *Record) {
	if err := r.store.Set(auth, record); err != nil {
		r.log.Error().Err(err).Str("auth", auth).Msg("cannot persist player record")
	}
}
