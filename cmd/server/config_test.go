package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"SURVEYSTATS_ADDR", "SURVEYSTATS_DB_DRIVER", "SURVEYSTATS_SQLITE_PATH", "SURVEYSTATS_READ_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Driver != driverSQLite || cfg.SQLitePath != "data/surveystats.db" || cfg.ReadTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigDriverValidation(t *testing.T) {
	t.Setenv("SURVEYSTATS_DB_DRIVER", "Postgres")
	t.Setenv("SURVEYSTATS_POSTGRES_DSN", "")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("postgres without dsn should fail")
	}
	t.Setenv("SURVEYSTATS_POSTGRES_DSN", "host=localhost dbname=surveys")
	cfg, err := loadConfig()
	if err != nil || cfg.Driver != driverPostgres {
		t.Fatalf("postgres config = %+v, %v", cfg, err)
	}
	t.Setenv("SURVEYSTATS_DB_DRIVER", "mongo")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("unknown driver should fail")
	}
}

func TestOpenMemoryStoreWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	st, closeFn, err := openStore(ctx, Config{Driver: driverMemory})
	if err != nil {
		t.Fatalf("openStore error: %v", err)
	}
	defer closeFn()
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
}

func TestMigrateIfNeededSeedsOnce(t *testing.T) {
	ctx := context.Background()
	snapshot := filepath.Join("..", "..", "internal", "api", "testdata", "snapshot.json")
	dbPath := filepath.Join(t.TempDir(), "stats.db")
	if err := MigrateIfNeeded(ctx, snapshot, dbPath, ""); err != nil {
		t.Fatalf("first MigrateIfNeeded error: %v", err)
	}
	cfg := Config{Driver: driverSQLite, SQLitePath: dbPath}
	st, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		t.Fatalf("openStore error: %v", err)
	}
	defer closeFn()
	people, err := st.ListPeople(ctx)
	if err != nil || len(people) != 3 {
		t.Fatalf("seeded people = %d, %v", len(people), err)
	}
	if err := MigrateIfNeeded(ctx, snapshot, dbPath, ""); err != nil {
		t.Fatalf("second MigrateIfNeeded error: %v", err)
	}
}
