package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/gold-token-ledger/internal/interfaces"
	"github.com/sheikh-saqib/gold-token-ledger/internal/models/events"
)

// Recorder keeps published envelopes in memory, in publish order.
type Recorder struct {
	mu     sync.RWMutex
	events []events.Envelope
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, topic string, event events.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of every recorded envelope.
func (r *Recorder) Events() []events.Envelope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make([]events.Envelope, len(r.events))
	copy(copied, r.events)
	return copied
}

// Last returns the most recently recorded envelope.
func (r *Recorder) Last() (events.Envelope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.events) == 0 {
		return events.Envelope{}, false
	}
	return r.events[len(r.events)-1], true
}

var _ interfaces.EventPublisher = (*Recorder)(nil)
