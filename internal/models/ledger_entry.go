package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryMint EntryKind = "mint"
	EntryBurn EntryKind = "burn"
)

// LedgerEntry represents a single balance change for an account
type LedgerEntry struct {
	ID        string          `json:"id"`         // unique identifier
	Account   string          `json:"account"`    // normalized address the change applies to
	Kind      EntryKind       `json:"kind"`       // mint or burn
	Amount    decimal.Decimal `json:"amount"`     // base units, positive for mint and negative for burn
	Caller    string          `json:"caller"`     // owner that authorized the change
	CreatedAt time.Time       `json:"created_at"` // timestamp
}

// SumEntries returns the net amount of the given entries.
func SumEntries(entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Amount)
	}
	return total
}
