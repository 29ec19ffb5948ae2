package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flatbook/internal/app/middleware"
)

const idempotencyCollection = "idempotency"

type IdempotencyStore struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewIdempotencyStore(db *mongo.Database, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{col: db.Collection(idempotencyCollection), ttl: ttl}
}

type idempotencyDocument struct {
	Key        string    `bson:"_id"`
	Payload    []byte    `bson:"payload"`
	Error      string    `bson:"error"`
	OccurredAt time.Time `bson:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	var doc idempotencyDocument
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	if s.ttl > 0 && time.Since(doc.OccurredAt) > s.ttl {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return middleware.IdempotencyRecord{
		Key:        doc.Key,
		Payload:    doc.Payload,
		Error:      doc.Error,
		OccurredAt: doc.OccurredAt,
	}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	doc := idempotencyDocument{
		Key:        rec.Key,
		Payload:    rec.Payload,
		Error:      rec.Error,
		OccurredAt: rec.OccurredAt,
	}
	if doc.OccurredAt.IsZero() {
		doc.OccurredAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts)
	return err
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
