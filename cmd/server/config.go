package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/soaringjerry/surveystats/internal/utils"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
	driverMemory   = "memory"
)

// Config is read once at startup from SURVEYSTATS_* variables.
type Config struct {
	Addr          string
	Driver        string
	SQLitePath    string
	PostgresDSN   string
	MigrationsDir string
	SnapshotPath  string
	JWTSecret     string
	Commit        string
	BuildTime     string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

func loadConfig() (Config, error) {
	cfg := Config{
		Addr:          utils.SafeEnv("SURVEYSTATS_ADDR", ":8080"),
		Driver:        strings.ToLower(strings.TrimSpace(utils.SafeEnv("SURVEYSTATS_DB_DRIVER", driverSQLite))),
		SQLitePath:    utils.SafeEnv("SURVEYSTATS_SQLITE_PATH", "data/surveystats.db"),
		PostgresDSN:   utils.SafeEnv("SURVEYSTATS_POSTGRES_DSN", ""),
		MigrationsDir: utils.SafeEnv("SURVEYSTATS_MIGRATIONS_DIR", ""),
		SnapshotPath:  utils.SafeEnv("SURVEYSTATS_SNAPSHOT", ""),
		JWTSecret:     utils.SafeEnv("SURVEYSTATS_JWT_SECRET", ""),
		Commit:        utils.SafeEnv("SURVEYSTATS_COMMIT", ""),
		BuildTime:     utils.SafeEnv("SURVEYSTATS_BUILD_TIME", ""),
		ReadTimeout:   utils.EnvDuration("SURVEYSTATS_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:  utils.EnvDuration("SURVEYSTATS_WRITE_TIMEOUT", 60*time.Second),
	}
	switch cfg.Driver {
	case driverSQLite, driverMemory:
	case driverPostgres:
		if cfg.PostgresDSN == "" {
			return cfg, fmt.Errorf("SURVEYSTATS_POSTGRES_DSN is required for driver %q", cfg.Driver)
		}
	default:
		return cfg, fmt.Errorf("unknown SURVEYSTATS_DB_DRIVER %q", cfg.Driver)
	}
	return cfg, nil
}
