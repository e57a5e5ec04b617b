package interfaces

import (
	"context"
	"errors"

	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
)

// LedgerStore persists the owner, the balance entries and the whitelist.
// Implementations must be safe for concurrent use.
type LedgerStore interface {
	// InitOwner records owner if none is stored yet and returns the stored owner.
	InitOwner(ctx context.Context, owner string) (string, error)
	GetOwner(ctx context.Context) (string, error)
	SetOwner(ctx context.Context, owner string) error

	SaveEntry(ctx context.Context, entry models.LedgerEntry) error
	GetEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error)
	GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)

	SetWhitelisted(ctx context.Context, account string, whitelisted bool) error
	IsWhitelisted(ctx context.Context, account string) (bool, error)
	GetWhitelistedAddresses(ctx context.Context) ([]string, error)

	Close() error
}

// ErrOwnerNotSet is returned by GetOwner before InitOwner has run.
var ErrOwnerNotSet = errors.New("owner not set")
