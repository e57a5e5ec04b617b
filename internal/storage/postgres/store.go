package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS token_owner (
	id         SMALLINT PRIMARY KEY CHECK (id = 1),
	address    TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS ledger_entries (
	seq        BIGSERIAL PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	amount     NUMERIC(78, 0) NOT NULL,
	caller     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account_id);
CREATE TABLE IF NOT EXISTS whitelist (
	address    TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*PostgresLedgerStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := NewPostgresLedgerStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Migrate creates the tables if they do not exist. It is idempotent.
func (p *PostgresLedgerStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) InitOwner(ctx context.Context, owner string) (string, error) {
	const insert = `INSERT INTO token_owner (id, address) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`

	if _, err := p.db.ExecContext(ctx, insert, owner); err != nil {
		return "", fmt.Errorf("init owner: %w", err)
	}
	return p.GetOwner(ctx)
}

func (p *PostgresLedgerStore) GetOwner(ctx context.Context) (string, error) {
	const query = `SELECT address FROM token_owner WHERE id = 1`

	var owner string
	err := p.db.QueryRowContext(ctx, query).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", interfaces.ErrOwnerNotSet
	}
	if err != nil {
		return "", fmt.Errorf("get owner: %w", err)
	}
	return owner, nil
}

func (p *PostgresLedgerStore) SetOwner(ctx context.Context, owner string) error {
	const query = `INSERT INTO token_owner (id, address) VALUES (1, $1)
	ON CONFLICT (id) DO UPDATE SET address = EXCLUDED.address, updated_at = NOW()`

	if _, err := p.db.ExecContext(ctx, query, owner); err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	const query = `INSERT INTO ledger_entries (id, account_id, kind, amount, caller, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := p.db.ExecContext(ctx, query, entry.ID, entry.Account, string(entry.Kind), entry.Amount, entry.Caller, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, kind, amount, caller, created_at FROM ledger_entries ORDER BY seq`

	return p.queryEntries(ctx, query)
}

func (p *PostgresLedgerStore) GetEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, kind, amount, caller, created_at FROM ledger_entries
	WHERE account_id = $1 ORDER BY seq`

	return p.queryEntries(ctx, query, account)
}

func (p *PostgresLedgerStore) queryEntries(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			entry models.LedgerEntry
			kind  string
		)
		if err := rows.Scan(&entry.ID, &entry.Account, &kind, &entry.Amount, &entry.Caller, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Kind = models.EntryKind(kind)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return entries, nil
}

func (p *PostgresLedgerStore) SetWhitelisted(ctx context.Context, account string, whitelisted bool) error {
	var err error
	if whitelisted {
		_, err = p.db.ExecContext(ctx, `INSERT INTO whitelist (address) VALUES ($1) ON CONFLICT (address) DO NOTHING`, account)
	} else {
		_, err = p.db.ExecContext(ctx, `DELETE FROM whitelist WHERE address = $1`, account)
	}
	if err != nil {
		return fmt.Errorf("set whitelisted: %w", err)
	}
	return nil
}

func (p *PostgresLedgerStore) IsWhitelisted(ctx context.Context, account string) (bool, error) {
	const query = `SELECT 1 FROM whitelist WHERE address = $1 LIMIT 1`

	var exists int
	err := p.db.QueryRowContext(ctx, query, account).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is whitelisted: %w", err)
	}
	return true, nil
}

func (p *PostgresLedgerStore) GetWhitelistedAddresses(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT address FROM whitelist ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("list whitelist: %w", err)
	}
	defer rows.Close()

	addresses := []string{}
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("scan whitelist: %w", err)
		}
		addresses = append(addresses, address)
	}
	return addresses, rows.Err()
}

func (p *PostgresLedgerStore) Close() error {
	return p.db.Close()
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
