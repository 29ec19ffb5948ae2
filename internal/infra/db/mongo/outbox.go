package mongo

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	appoutbox "flatbook/internal/app/outbox"
	infraoutbox "flatbook/internal/infra/outbox"
)

const outboxCollection = "outbox"

type outboxDocument struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	Attempts    int               `bson:"attempts"`
	Status      string            `bson:"status"`
	NextAttempt time.Time         `bson:"next_attempt"`
	ClaimedBy   string            `bson:"claimed_by"`
	LastError   string            `bson:"last_error"`
}

// Outbox stages event records during a command and persists them on Flush,
// after the command's writes have landed.
type Outbox struct {
	col *mongo.Collection

	mu     sync.Mutex
	staged []appoutbox.EventRecord
}

func NewOutbox(db *mongo.Database) *Outbox {
	return &Outbox{col: db.Collection(outboxCollection)}
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
	if len(staged) == 0 {
		return nil
	}
	docs := make([]any, 0, len(staged))
	for _, rec := range staged {
		docs = append(docs, outboxDocument{
			ID:         rec.ID,
			Name:       rec.Name,
			Payload:    rec.Payload,
			OccurredAt: rec.OccurredAt,
			Aggregate:  rec.Aggregate,
			Headers:    rec.Headers,
			Status:     infraoutbox.StatusPending,
		})
	}
	_, err := o.col.InsertMany(ctx, docs)
	return err
}

// Store is the worker-facing side of the Mongo outbox.
type Store struct {
	col *mongo.Collection
}

func NewOutboxStore(db *mongo.Database) *Store {
	return &Store{col: db.Collection(outboxCollection)}
}

func (s *Store) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"status":       bson.M{"$in": bson.A{infraoutbox.StatusPending, infraoutbox.StatusFailed}},
		"next_attempt": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": infraoutbox.StatusClaimed, "claimed_by": workerID}}
	var doc outboxDocument
	err := s.col.FindOneAndUpdate(ctx, filter, update).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &infraoutbox.EventDocument{
		ID:          doc.ID,
		Name:        doc.Name,
		Payload:     doc.Payload,
		OccurredAt:  doc.OccurredAt,
		Aggregate:   doc.Aggregate,
		Headers:     doc.Headers,
		Attempts:    doc.Attempts,
		Status:      infraoutbox.StatusClaimed,
		NextAttempt: doc.NextAttempt,
		ClaimedBy:   workerID,
		LastError:   doc.LastError,
	}, nil
}

func (s *Store) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": infraoutbox.StatusSent}})
	return err
}

func (s *Store) MarkFailed(ctx context.Context, id string, nextAttempt time.Time, reason string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":       infraoutbox.StatusFailed,
			"next_attempt": nextAttempt,
			"last_error":   reason,
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

var _ appoutbox.Outbox = (*Outbox)(nil)
var _ infraoutbox.Store = (*Store)(nil)
