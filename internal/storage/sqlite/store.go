// Package sqlite provides a SQLite-backed LedgerStore for single-node deployments.
//
// Amounts are stored as decimal TEXT so that 18-decimal balances never lose
// precision, and timestamps as unix nanoseconds.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// schema. Safe to call repeatedly on the same file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func (s *Store) InitOwner(ctx context.Context, owner string) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_owner (id, address, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, owner, time.Now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("init owner: %w", err)
	}
	return s.GetOwner(ctx)
}

func (s *Store) GetOwner(ctx context.Context) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, `SELECT address FROM token_owner WHERE id = 1`).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", interfaces.ErrOwnerNotSet
	}
	if err != nil {
		return "", fmt.Errorf("get owner: %w", err)
	}
	return owner, nil
}

func (s *Store) SetOwner(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_owner (id, address, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET address = excluded.address, updated_at = excluded.updated_at
	`, owner, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	return nil
}

func (s *Store) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, account_id, kind, amount, caller, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.Account,
		string(entry.Kind),
		entry.Amount.String(),
		entry.Caller,
		entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save entry: %w", err)
	}
	return nil
}

func (s *Store) GetLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, account_id, kind, amount, caller, created_at
		FROM ledger_entries
		ORDER BY seq ASC
	`)
}

func (s *Store) GetEntriesByAccount(ctx context.Context, account string) ([]models.LedgerEntry, error) {
	return s.queryEntries(ctx, `
		SELECT id, account_id, kind, amount, caller, created_at
		FROM ledger_entries
		WHERE account_id = ?
		ORDER BY seq ASC
	`, account)
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]models.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			entry     models.LedgerEntry
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Account, &kind, &entry.Amount, &entry.Caller, &createdAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Kind = models.EntryKind(kind)
		entry.CreatedAt = time.Unix(0, createdAt).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return entries, nil
}

func (s *Store) SetWhitelisted(ctx context.Context, account string, whitelisted bool) error {
	var err error
	if whitelisted {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO whitelist (address, created_at) VALUES (?, ?)
			ON CONFLICT(address) DO NOTHING
		`, account, time.Now().UnixNano())
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM whitelist WHERE address = ?`, account)
	}
	if err != nil {
		return fmt.Errorf("set whitelisted: %w", err)
	}
	return nil
}

func (s *Store) IsWhitelisted(ctx context.Context, account string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM whitelist WHERE address = ? LIMIT 1`, account).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("is whitelisted: %w", err)
	}
	return true, nil
}

func (s *Store) GetWhitelistedAddresses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT address FROM whitelist ORDER BY address ASC`)
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

var _ interfaces.LedgerStore = (*Store)(nil)
