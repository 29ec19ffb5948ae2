package outbox

import (
	"context"
	"time"
)

// EventDocument is an outbox entry persisted until a worker publishes it.
type EventDocument struct {
	ID          string
	Name        string
	Payload     []byte
	OccurredAt  time.Time
	Aggregate   string
	Headers     map[string]string
	Attempts    int
	Status      string
	NextAttempt time.Time
	ClaimedBy   string
	LastError   string
}

const (
	StatusPending = "pending"
	StatusClaimed = "claimed"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Store is the durable side of the outbox a worker drains.
type Store interface {
	// Claim hands one due pending document to the worker, or nil when the
	// queue is empty.
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error
}
