package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeTokenMinted                 = "TokenMinted"
	TypeTokenBurned                 = "TokenBurned"
	TypeAddressWhitelisted          = "AddressWhitelisted"
	TypeAddressRemovedFromWhitelist = "AddressRemovedFromWhitelist"
	TypeOwnershipTransferred        = "OwnershipTransferred"
)

// Event is a payload emitted by the ledger after a successful mutation.
type Event interface {
	EventType() string
	// PartitionKey groups events that concern the same account.
	PartitionKey() string
}

type TokenMinted struct {
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

func (e TokenMinted) EventType() string    { return TypeTokenMinted }
func (e TokenMinted) PartitionKey() string { return e.To }

type TokenBurned struct {
	From   string          `json:"from"`
	Amount decimal.Decimal `json:"amount"`
}

func (e TokenBurned) EventType() string    { return TypeTokenBurned }
func (e TokenBurned) PartitionKey() string { return e.From }

type AddressWhitelisted struct {
	Address string `json:"address"`
}

func (e AddressWhitelisted) EventType() string    { return TypeAddressWhitelisted }
func (e AddressWhitelisted) PartitionKey() string { return e.Address }

type AddressRemovedFromWhitelist struct {
	Address string `json:"address"`
}

func (e AddressRemovedFromWhitelist) EventType() string    { return TypeAddressRemovedFromWhitelist }
func (e AddressRemovedFromWhitelist) PartitionKey() string { return e.Address }

type OwnershipTransferred struct {
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}

func (e OwnershipTransferred) EventType() string    { return TypeOwnershipTransferred }
func (e OwnershipTransferred) PartitionKey() string { return e.NewOwner }

// Envelope wraps an event with the metadata needed to deliver it.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Event     `json:"payload"`
}

func NewEnvelope(event Event, occurredAt time.Time) Envelope {
	return Envelope{
		ID:         uuid.New().String(),
		Type:       event.EventType(),
		Key:        event.PartitionKey(),
		OccurredAt: occurredAt.UTC(),
		Payload:    event,
	}
}
