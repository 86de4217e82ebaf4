package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soaringjerry/surveystats/internal/api"
	dbstore "github.com/soaringjerry/surveystats/internal/db"
)

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
}

// MigrateIfNeeded seeds a fresh SQLite database from a JSON snapshot. It does
// nothing when the database file already exists or no snapshot is available.
func MigrateIfNeeded(ctx context.Context, snapshotPath, sqlitePath, migrationsDir string) error {
	if sqlitePath == "" {
		return errors.New("sqlite path is required")
	}
	if _, err := os.Stat(sqlitePath); err == nil {
		return nil // already migrated
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check sqlite file: %w", err)
	}

	snapStore, err := api.NewMemoryStoreFromPath(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load snapshot: %w", err)
	}
	snapshot := api.MemoryStoreSnapshot(snapStore)
	if snapshot == nil {
		return nil
	}

	log.Printf("First run detected, seeding %s from snapshot %s...", sqlitePath, snapshotPath)

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	sqliteDB, err := sql.Open("sqlite3", sqliteDSN(sqlitePath))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}()

	if err := dbstore.RunMigrations(ctx, sqliteDB, migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := dbstore.ImportSnapshot(ctx, sqliteDB, snapshot); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}

	log.Printf("Data migration completed: %d people, %d responses.", len(snapshot.People), len(snapshot.Responses))
	return nil
}
