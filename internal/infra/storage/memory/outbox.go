package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "flatbook/internal/app/outbox"
	infraoutbox "flatbook/internal/infra/outbox"
)

// OutboxStore is the in-memory durable side of the outbox. Events staged by
// a command become visible to the worker only after Flush, mirroring the
// transactional outbox contract.
type OutboxStore struct {
	mu   sync.Mutex
	docs []*infraoutbox.EventDocument
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (s *OutboxStore) enqueue(records []appoutbox.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.docs = append(s.docs, &infraoutbox.EventDocument{
			ID:         rec.ID,
			Name:       rec.Name,
			Payload:    rec.Payload,
			OccurredAt: rec.OccurredAt,
			Aggregate:  rec.Aggregate,
			Headers:    rec.Headers,
			Status:     infraoutbox.StatusPending,
		})
	}
}

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, doc := range s.docs {
		if doc.Status != infraoutbox.StatusPending && doc.Status != infraoutbox.StatusFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.Status = infraoutbox.StatusClaimed
		doc.ClaimedBy = workerID
		copied := *doc
		return &copied, nil
	}
	return nil, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			doc.Status = infraoutbox.StatusSent
			return nil
		}
	}
	return nil
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			doc.Status = infraoutbox.StatusFailed
			doc.Attempts++
			doc.NextAttempt = nextAttempt
			doc.LastError = reason
			return nil
		}
	}
	return nil
}

// Outbox buffers records during a command and hands them to the store on
// Flush. Without a store the records are dropped, which is fine for tests
// that only exercise command semantics.
type Outbox struct {
	mu     sync.Mutex
	staged []appoutbox.EventRecord
	sink   *OutboxStore
}

func NewOutbox(sink *OutboxStore) *Outbox {
	return &Outbox{sink: sink}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	staged := o.staged
	o.staged = nil
	o.mu.Unlock()
	if o.sink != nil && len(staged) > 0 {
		o.sink.enqueue(staged)
	}
	return nil
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Store = (*OutboxStore)(nil)
