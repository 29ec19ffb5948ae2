package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockCollection = "locks"

// LockManager provides per-apartment mutual exclusion across processes by
// inserting a document whose _id is the lock key. The unique _id makes the
// acquisition atomic; the expires_at TTL index reaps locks a crashed holder
// never released.
type LockManager struct {
	col *mongo.Collection
	ttl time.Duration
}

func NewLockManager(db *mongo.Database, ttl time.Duration) *LockManager {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &LockManager{col: db.Collection(lockCollection), ttl: ttl}
}

type lockDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Acquire blocks until the lock is taken or the context ends. TTL reaping
// lags real expiry, so an expired document is also stolen inline.
func (m *LockManager) Acquire(ctx context.Context, key, owner string) error {
	backoff := 10 * time.Millisecond
	for {
		now := time.Now().UTC()
		doc := lockDocument{ID: key, Owner: owner, ExpiresAt: now.Add(m.ttl)}
		_, err := m.col.InsertOne(ctx, doc)
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return err
		}
		res, err := m.col.ReplaceOne(ctx,
			bson.M{"_id": key, "expires_at": bson.M{"$lt": now}},
			doc,
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

func (m *LockManager) Release(ctx context.Context, key, owner string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	return err
}
