package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
)

const (
	owner = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	addr1 = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
)

func newMockStore(t *testing.T) (*PostgresLedgerStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return NewPostgresLedgerStore(db), mock
}

func TestMigrate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS token_owner").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
}

func TestInitOwner(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO token_owner \\(id, address\\) VALUES \\(1, \\$1\\) ON CONFLICT \\(id\\) DO NOTHING").
		WithArgs(owner).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT address FROM token_owner WHERE id = 1").
		WillReturnRows(sqlmock.NewRows([]string{"address"}).AddRow(owner))

	got, err := store.InitOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestGetOwner_NotSet(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT address FROM token_owner").WillReturnError(sql.ErrNoRows)

	_, err := store.GetOwner(context.Background())
	assert.ErrorIs(t, err, interfaces.ErrOwnerNotSet)
}

func TestSetOwner(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("ON CONFLICT \\(id\\) DO UPDATE SET address = EXCLUDED.address").
		WithArgs(addr1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetOwner(context.Background(), addr1))
}

func TestSaveEntry(t *testing.T) {
	store, mock := newMockStore(t)
	entry := models.LedgerEntry{
		ID:        "entry-1",
		Account:   addr1,
		Kind:      models.EntryMint,
		Amount:    models.MustParseUnits("100", models.Decimals),
		Caller:    owner,
		CreatedAt: time.Date(2025, time.June, 8, 10, 0, 0, 0, time.UTC),
	}
	mock.ExpectExec("INSERT INTO ledger_entries \\(id, account_id, kind, amount, caller, created_at\\)").
		WithArgs(entry.ID, entry.Account, "mint", "100000000000000000000", entry.Caller, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SaveEntry(context.Background(), entry))
}

func TestSaveEntry_Error(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO ledger_entries").WillReturnError(errors.New("connection reset"))

	err := store.SaveEntry(context.Background(), models.LedgerEntry{ID: "x", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save entry")
}

func TestGetEntriesByAccount(t *testing.T) {
	store, mock := newMockStore(t)
	createdAt := time.Date(2025, time.June, 8, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, account_id, kind, amount, caller, created_at FROM ledger_entries\\s+WHERE account_id = \\$1 ORDER BY seq").
		WithArgs(addr1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "kind", "amount", "caller", "created_at"}).
			AddRow("e1", addr1, "mint", "100000000000000000000", owner, createdAt).
			AddRow("e2", addr1, "burn", "-50000000000000000000", owner, createdAt.Add(time.Second)))

	entries, err := store.GetEntriesByAccount(context.Background(), addr1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.EntryBurn, entries[1].Kind)
	assert.True(t, models.SumEntries(entries).Equal(models.MustParseUnits("50", models.Decimals)))
}

func TestGetLedgerEntries_Empty(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("FROM ledger_entries ORDER BY seq").
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "kind", "amount", "caller", "created_at"}))

	entries, err := store.GetLedgerEntries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWhitelist(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO whitelist \\(address\\) VALUES \\(\\$1\\) ON CONFLICT \\(address\\) DO NOTHING").
		WithArgs(addr1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT 1 FROM whitelist WHERE address = \\$1").
		WithArgs(addr1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec("DELETE FROM whitelist WHERE address = \\$1").
		WithArgs(addr1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT 1 FROM whitelist WHERE address = \\$1").
		WithArgs(addr1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT address FROM whitelist ORDER BY address").
		WillReturnRows(sqlmock.NewRows([]string{"address"}))

	require.NoError(t, store.SetWhitelisted(ctx, addr1, true))
	ok, err := store.IsWhitelisted(ctx, addr1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.SetWhitelisted(ctx, addr1, false))
	ok, err = store.IsWhitelisted(ctx, addr1)
	require.NoError(t, err)
	assert.False(t, ok)

	listed, err := store.GetWhitelistedAddresses(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
