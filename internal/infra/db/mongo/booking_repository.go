package mongo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainapartment "flatbook/internal/domain/apartment"
	domainbooking "flatbook/internal/domain/booking"
	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
)

const bookingCollection = "agg_booking"

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// BookingRepository persists bookings and enforces the range-exclusivity
// guarantee. Commit takes the apartment's advisory lock, re-checks overlap
// against Active bookings and upserts in one critical section, so two
// processes racing for the same nights cannot both win.
type BookingRepository struct {
	col   *mongo.Collection
	locks *LockManager
}

func NewBookingRepository(db *mongo.Database, locks *LockManager) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingCollection), locks: locks}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ListActiveByApartment(ctx context.Context, id domainapartment.ApartmentID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"apartment_id": string(id), "state": string(domainbooking.StateActive)})
}

func (r *BookingRepository) ListByApartment(ctx context.Context, id domainapartment.ApartmentID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"apartment_id": string(id)})
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) Commit(ctx context.Context, b *domainbooking.Booking) error {
	lockKey := "apartment:" + string(b.ApartmentID)
	owner := uuid.NewString()
	if err := r.locks.Acquire(ctx, lockKey, owner); err != nil {
		return err
	}
	defer func() { _ = r.locks.Release(ctx, lockKey, owner) }()

	overlap := bson.M{
		"apartment_id":   string(b.ApartmentID),
		"state":          string(domainbooking.StateActive),
		"_id":            bson.M{"$ne": string(b.ID)},
		"range.start_ms": bson.M{"$lt": b.Range.End.UnixMilli()},
		"range.end_ms":   bson.M{"$gt": b.Range.Start.UnixMilli()},
	}
	count, err := r.col.CountDocuments(ctx, overlap)
	if err != nil {
		return err
	}
	if count > 0 {
		return domainbooking.ErrRangeConflict
	}

	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) UpdateState(ctx context.Context, id domainbooking.BookingID, state domainbooking.BookingState) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": string(id)},
		bson.M{"$set": bson.M{"state": string(state)}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "range.start_ms", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID            string        `bson:"_id"`
	ApartmentID   string        `bson:"apartment_id"`
	GuestID       string        `bson:"guest_id"`
	Range         rangeDocument `bson:"range"`
	Guests        int           `bson:"guests"`
	Nights        int           `bson:"nights"`
	NightlyAmount int64         `bson:"nightly_amount"`
	TotalAmount   int64         `bson:"total_amount"`
	Currency      string        `bson:"currency"`
	State         string        `bson:"state"`
	CreatedAt     int64         `bson:"created_at"`
	UpdatedAt     int64         `bson:"updated_at"`
	Version       int64         `bson:"version"`
}

type rangeDocument struct {
	StartMs int64 `bson:"start_ms"`
	EndMs   int64 `bson:"end_ms"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		ApartmentID:   string(b.ApartmentID),
		GuestID:       b.GuestID,
		Range:         rangeDocument{StartMs: b.Range.Start.UnixMilli(), EndMs: b.Range.End.UnixMilli()},
		Guests:        b.Guests,
		Nights:        b.Price.Nights,
		NightlyAmount: b.Price.Nightly.Amount,
		TotalAmount:   b.Price.Total.Amount,
		Currency:      b.Price.Total.Currency,
		State:         string(b.State),
		CreatedAt:     b.CreatedAt.UnixMilli(),
		UpdatedAt:     b.UpdatedAt.UnixMilli(),
		Version:       b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:          domainbooking.BookingID(d.ID),
		ApartmentID: domainapartment.ApartmentID(d.ApartmentID),
		GuestID:     d.GuestID,
		Range: daterange.DateRange{
			Start: timestampToTime(d.Range.StartMs),
			End:   timestampToTime(d.Range.EndMs),
		},
		Guests: d.Guests,
		Price: pricing.Breakdown{
			Nights:  d.Nights,
			Nightly: money.Money{Amount: d.NightlyAmount, Currency: d.Currency},
			Total:   money.Money{Amount: d.TotalAmount, Currency: d.Currency},
		},
		State:     domainbooking.BookingState(d.State),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
