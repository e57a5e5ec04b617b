package interfaces

import (
	"context"

	"github.com/sheikh-saqib/gold-token-ledger/internal/models/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
