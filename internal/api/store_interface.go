package api

import (
	"context"

	"github.com/soaringjerry/surveystats/internal/services"
)

// Store is the persistence backend behind the router. Implementations are
// read-only: the memory store below, db.SQLiteStore and db.GormStore.
type Store interface {
	services.StatsStore
	Ping(ctx context.Context) error
}

var _ Store = (*MemoryStore)(nil)
