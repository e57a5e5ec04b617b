// Package storetest holds behaviour tests shared by every LedgerStore driver.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models"
)

const (
	Owner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	Addr1 = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	Addr2 = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

// Run exercises store against the LedgerStore contract. newStore must return
// an empty store; Run closes it.
func Run(t *testing.T, newStore func(t *testing.T) interfaces.LedgerStore) {
	t.Run("OwnerLifecycle", func(t *testing.T) { testOwnerLifecycle(t, newStore(t)) })
	t.Run("Entries", func(t *testing.T) { testEntries(t, newStore(t)) })
	t.Run("Whitelist", func(t *testing.T) { testWhitelist(t, newStore(t)) })
}

func testOwnerLifecycle(t *testing.T, store interfaces.LedgerStore) {
	defer store.Close()
	ctx := context.Background()

	_, err := store.GetOwner(ctx)
	require.ErrorIs(t, err, interfaces.ErrOwnerNotSet)

	owner, err := store.InitOwner(ctx, Owner)
	require.NoError(t, err)
	assert.Equal(t, Owner, owner)

	owner, err = store.InitOwner(ctx, Addr1)
	require.NoError(t, err)
	assert.Equal(t, Owner, owner, "second init must keep the stored owner")

	require.NoError(t, store.SetOwner(ctx, Addr2))
	owner, err = store.GetOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, Addr2, owner)
}

func testEntries(t *testing.T, store interfaces.LedgerStore) {
	defer store.Close()
	ctx := context.Background()
	createdAt := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	written := []models.LedgerEntry{
		entry(Addr1, models.EntryMint, "100", createdAt),
		entry(Addr2, models.EntryMint, "7.5", createdAt.Add(time.Second)),
		entry(Addr1, models.EntryBurn, "-50", createdAt.Add(2*time.Second)),
	}
	for _, e := range written {
		require.NoError(t, store.SaveEntry(ctx, e))
	}

	all, err := store.GetLedgerEntries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := range written {
		assert.Equal(t, written[i].ID, all[i].ID)
		assert.Equal(t, written[i].Account, all[i].Account)
		assert.Equal(t, written[i].Kind, all[i].Kind)
		assert.Equal(t, written[i].Caller, all[i].Caller)
		assert.True(t, written[i].Amount.Equal(all[i].Amount), "amount %s != %s", written[i].Amount, all[i].Amount)
		assert.True(t, written[i].CreatedAt.Equal(all[i].CreatedAt))
	}

	byAccount, err := store.GetEntriesByAccount(ctx, Addr1)
	require.NoError(t, err)
	require.Len(t, byAccount, 2)
	assert.True(t, models.SumEntries(byAccount).Equal(models.MustParseUnits("50", models.Decimals)))

	none, err := store.GetEntriesByAccount(ctx, Owner)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testWhitelist(t *testing.T, store interfaces.LedgerStore) {
	defer store.Close()
	ctx := context.Background()

	ok, err := store.IsWhitelisted(ctx, Addr1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetWhitelisted(ctx, Addr2, true))
	require.NoError(t, store.SetWhitelisted(ctx, Addr1, true))
	require.NoError(t, store.SetWhitelisted(ctx, Addr1, true))

	ok, err = store.IsWhitelisted(ctx, Addr1)
	require.NoError(t, err)
	assert.True(t, ok)

	listed, err := store.GetWhitelistedAddresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{Addr2, Addr1}, listed)

	require.NoError(t, store.SetWhitelisted(ctx, Addr1, false))
	require.NoError(t, store.SetWhitelisted(ctx, Addr1, false))
	ok, err = store.IsWhitelisted(ctx, Addr1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func entry(account string, kind models.EntryKind, amount string, createdAt time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:        uuid.New().String(),
		Account:   account,
		Kind:      kind,
		Amount:    models.MustParseUnits(amount, models.Decimals),
		Caller:    Owner,
		CreatedAt: createdAt,
	}
}
