package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration, loaded from environment variables.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	MappingDBPath string `env:"MAPPING_SQLITE_PATH" envDefault:"./mappings.db"`
	RosterDBPath  string `env:"ROSTER_SQLITE_PATH" envDefault:"./roster.db"`

	// External calendar ACL service.
	CalendarBaseURL   string        `env:"CALENDAR_API_BASE_URL" envDefault:"http://127.0.0.1:9380"`
	CalendarAppID     string        `env:"CALENDAR_APP_ID" envDefault:"calsync"`
	CalendarAppSecret string        `env:"CALENDAR_APP_SECRET"`
	CalendarTimeout   time.Duration `env:"CALENDAR_API_TIMEOUT" envDefault:"15s"`

	// Reconciliation policy.
	SyncConcurrency int           `env:"SYNC_CONCURRENCY" envDefault:"4"`
	EnableRemovals  bool          `env:"SYNC_ENABLE_REMOVALS" envDefault:"false"`
	ReconcileRoles  bool          `env:"SYNC_RECONCILE_ROLES" envDefault:"false"`
	SyncInterval    time.Duration `env:"SYNC_INTERVAL" envDefault:"0"`
}

// Load parses the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
