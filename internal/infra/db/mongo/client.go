package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Client struct {
	DB *mongo.Database
}

func New(uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

// EnsureIndexes creates the indexes the repositories rely on, including the
// TTL index that reaps stale apartment locks.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	bookings := c.DB.Collection(bookingCollection)
	_, err := bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "apartment_id", Value: 1}, {Key: "state", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}}},
	})
	if err != nil {
		return err
	}
	locks := c.DB.Collection(lockCollection)
	_, err = locks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return err
	}
	outbox := c.DB.Collection(outboxCollection)
	_, err = outbox.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "next_attempt", Value: 1}},
	})
	return err
}
