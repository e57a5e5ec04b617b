package memory

import (
	"context"
	"sort"
	"sync"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// State is lost when the process exits.
type MemoryLedgerStore struct {
	mu          sync.RWMutex         // guards every field below; readers share it
	owner       string               // empty until InitOwner runs
	entries     []models.LedgerEntry // append-only log of mints and burns
	whitelisted map[string]struct{}  // set of whitelisted addresses
}

// NewMemoryLedgerStore creates and returns a new MemoryLedgerStore instance
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		entries:     make([]models.LedgerEntry, 0), // start with an empty log
		whitelisted: make(map[string]struct{}),     // and nobody whitelisted
	}
}

// InitOwner records owner only when none is set yet and returns the stored one.
func (m *MemoryLedgerStore) InitOwner(ctx context.Context, owner string) (string, error) {
	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits

	if m.owner == "" { // first start: take the configured owner
		m.owner = owner
	}
	return m.owner, nil
}

func (m *MemoryLedgerStore) GetOwner(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.owner == "" {
		return "", interfaces.ErrOwnerNotSet
	}
	return m.owner, nil
}

func (m *MemoryLedgerStore) SetOwner(ctx context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owner = owner
	return nil
}

// SaveEntry appends a LedgerEntry to the in-memory log.
func (m *MemoryLedgerStore) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits

	m.entries = append(m.entries, entry) // append the new entry to the log
	return nil                           // always succeeds in memory
}

// GetLedgerEntries returns a copy of all ledger entries in write order.
func (m *MemoryLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// return a copy so callers can't modify internal state
	copied := make([]models.LedgerEntry, len(m.entries))
	copy(copied, m.entries)
	return copied, nil
}

func (m *MemoryLedgerStore) GetEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.LedgerEntry
	for _, e := range m.entries {
		if e.Account == account { // accounts are stored checksummed, so exact match is enough
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MemoryLedgerStore) SetWhitelisted(ctx context.Context, account string, whitelisted bool) error {
	m.mu.Lock()         // lock the mutex to prevent concurrent writes
	defer m.mu.Unlock() // unlock automatically when function exits

	if whitelisted {
		m.whitelisted[account] = struct{}{}
	} else {
		delete(m.whitelisted, account) // no-op when the account was never whitelisted
	}
	return nil
}

func (m *MemoryLedgerStore) IsWhitelisted(ctx context.Context, account string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.whitelisted[account]
	return ok, nil
}

func (m *MemoryLedgerStore) GetWhitelistedAddresses(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	addresses := make([]string, 0, len(m.whitelisted))
	for address := range m.whitelisted {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses) // map order is random; callers get a stable list
	return addresses, nil
}

func (m *MemoryLedgerStore) Close() error {
	return nil
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore interface
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
