package matchroom

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/pwalczak/matchroom/players"
)

// Config carries everything the room supervisor needs from its environment.
type Config struct {
	// StoragePath is the bolt database file backing player records and room
	// settings. Empty keeps everything in memory.
	StoragePath string `env:"MATCHROOM_STORAGE_PATH"`

	// RoomPrefix namespaces every stored key, so several rooms can share one
	// database file.
	RoomPrefix string `env:"MATCHROOM_ROOM_PREFIX" envDefault:"room."`

	// AdminsJSON is a JSON array of admin credentials, each with a username,
	// password and optionally a pre-trusted auth token.
	AdminsJSON string `env:"MATCHROOM_ADMINS"`

	// DefaultScoreLimit and DefaultTimeLimit seed the room limits on a fresh
	// database. Once stored, the persisted values win.
	DefaultScoreLimit int `env:"MATCHROOM_DEFAULT_SCORE_LIMIT" envDefault:"3"`
	DefaultTimeLimit  int `env:"MATCHROOM_DEFAULT_TIME_LIMIT" envDefault:"3"`

	// FlushInterval is how often in-memory player records are written back
	// to the store.
	FlushInterval time.Duration `env:"MATCHROOM_FLUSH_INTERVAL" envDefault:"5m"`

	// StatsAddr is the listen address of the read-only stats HTTP endpoint.
	// Empty disables it.
	StatsAddr string `env:"MATCHROOM_STATS_ADDR"`

	// LogLevel is a zerolog level name.
	LogLevel string `env:"MATCHROOM_LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "parsing environment")
	}
	return cfg, nil
}

// Admins decodes the configured admin credential list.
func (c Config) Admins() ([]players.Credential, error) {
	if c.AdminsJSON == "" {
		return nil, nil
	}
	var admins []players.Credential
	if err := json.Unmarshal([]byte(c.AdminsJSON), &admins); err != nil {
		return nil, eris.Wrap(err, "decoding admin credentials")
	}
	return admins, nil
}
