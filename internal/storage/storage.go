// Package storage selects and opens a LedgerStore driver.
package storage

import (
	"context"
	"fmt"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/gold-token-ledger/internal/storage/postgres"
	"github.com/sheikh-saqib/gold-token-ledger/internal/storage/sqlite"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures Open. DatabaseURL is used by postgres, SQLitePath by sqlite.
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// Open returns the LedgerStore named by opts.Driver. Durable drivers apply
// their schema before returning.
func Open(ctx context.Context, opts Options) (interfaces.LedgerStore, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return memory.NewMemoryLedgerStore(), nil
	case DriverPostgres:
		store, err := postgres.Open(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverSQLite:
		store, err := sqlite.Open(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
