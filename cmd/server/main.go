package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/soaringjerry/surveystats/internal/api"
	dbstore "github.com/soaringjerry/surveystats/internal/db"
	"github.com/soaringjerry/surveystats/internal/middleware"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	mux := http.NewServeMux()
	api.NewRouter(store, api.BuildInfo{Commit: cfg.Commit, BuildTime: cfg.BuildTime}).Register(mux)

	// Outermost first: CORS, security headers, request id + access log,
	// locale, optional bearer guard, then ETag revalidation.
	guard := middleware.RequireToken([]byte(cfg.JWTSecret), "/health", "/version")
	handler := middleware.CORS(middleware.SecureHeaders(middleware.RequestID(
		middleware.LocaleMiddleware(guard(middleware.Revalidate(mux))))))

	if cfg.JWTSecret == "" {
		log.Printf("SURVEYSTATS_JWT_SECRET not set, API is public")
	}
	log.Printf("surveystats listening on %s (driver=%s)", cfg.Addr, cfg.Driver)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openStore builds the configured backend and returns a close func for it.
func openStore(ctx context.Context, cfg Config) (api.Store, func(), error) {
	noop := func() {}
	switch cfg.Driver {
	case driverMemory:
		mem, err := api.NewMemoryStoreFromPath(cfg.SnapshotPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Printf("no snapshot at %q, serving an empty dataset", cfg.SnapshotPath)
				return api.NewMemoryStore(nil), noop, nil
			}
			return nil, nil, fmt.Errorf("load snapshot: %w", err)
		}
		return mem, noop, nil

	case driverPostgres:
		gdb, err := dbstore.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		st, err := dbstore.NewGormStore(gdb)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := gdb.DB(); err == nil {
				if cerr := sqlDB.Close(); cerr != nil {
					log.Printf("warning: failed to close postgres: %v", cerr)
				}
			}
		}
		return st, closeFn, nil

	default:
		if err := MigrateIfNeeded(ctx, cfg.SnapshotPath, cfg.SQLitePath, cfg.MigrationsDir); err != nil {
			return nil, nil, fmt.Errorf("first-run migration: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		sqliteDB, err := sql.Open("sqlite3", sqliteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := dbstore.RunMigrations(ctx, sqliteDB, cfg.MigrationsDir); err != nil {
			_ = sqliteDB.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		st, err := dbstore.NewStore(sqliteDB)
		if err != nil {
			_ = sqliteDB.Close()
			return nil, nil, fmt.Errorf("init sqlite store: %w", err)
		}
		closeFn := func() {
			if cerr := sqliteDB.Close(); cerr != nil {
				log.Printf("warning: failed to close sqlite db: %v", cerr)
			}
		}
		return st, closeFn, nil
	}
}
