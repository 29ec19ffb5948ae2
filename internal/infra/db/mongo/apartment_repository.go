package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainapartment "flatbook/internal/domain/apartment"
	"flatbook/internal/domain/shared/money"
)

const apartmentCollection = "agg_apartment"

type ApartmentRepository struct {
	col *mongo.Collection
}

func NewApartmentRepository(db *mongo.Database) *ApartmentRepository {
	return &ApartmentRepository{col: db.Collection(apartmentCollection)}
}

func (r *ApartmentRepository) ByID(ctx context.Context, id domainapartment.ApartmentID) (*domainapartment.Apartment, error) {
	var doc apartmentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainapartment.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ApartmentRepository) ListByHost(ctx context.Context, host domainapartment.HostID) ([]*domainapartment.Apartment, error) {
	return r.find(ctx, bson.M{"host_id": string(host)})
}

func (r *ApartmentRepository) List(ctx context.Context) ([]*domainapartment.Apartment, error) {
	return r.find(ctx, bson.M{})
}

func (r *ApartmentRepository) Save(ctx context.Context, apt *domainapartment.Apartment) error {
	doc := newApartmentDocument(apt)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ApartmentRepository) find(ctx context.Context, filter bson.M) ([]*domainapartment.Apartment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainapartment.Apartment, 0)
	for cursor.Next(ctx) {
		var doc apartmentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type apartmentDocument struct {
	ID             string `bson:"_id"`
	HostID         string `bson:"host_id"`
	Title          string `bson:"title"`
	Description    string `bson:"description"`
	Address        string `bson:"address"`
	City           string `bson:"city"`
	Country        string `bson:"country"`
	Bedrooms       int    `bson:"bedrooms"`
	Bathrooms      int    `bson:"bathrooms"`
	MaxOccupancy   int    `bson:"max_occupancy"`
	RateAmount     int64  `bson:"rate_amount"`
	RateCurrency   string `bson:"rate_currency"`
	OpenForBooking bool   `bson:"open_for_booking"`
	CreatedAt      int64  `bson:"created_at"`
	UpdatedAt      int64  `bson:"updated_at"`
}

func newApartmentDocument(apt *domainapartment.Apartment) apartmentDocument {
	return apartmentDocument{
		ID:             string(apt.ID),
		HostID:         string(apt.Host),
		Title:          apt.Title,
		Description:    apt.Description,
		Address:        apt.Address,
		City:           apt.City,
		Country:        apt.Country,
		Bedrooms:       apt.Bedrooms,
		Bathrooms:      apt.Bathrooms,
		MaxOccupancy:   apt.MaxOccupancy,
		RateAmount:     apt.NightlyRate.Amount,
		RateCurrency:   apt.NightlyRate.Currency,
		OpenForBooking: apt.OpenForBooking,
		CreatedAt:      apt.CreatedAt.UnixMilli(),
		UpdatedAt:      apt.UpdatedAt.UnixMilli(),
	}
}

func (d apartmentDocument) toAggregate() *domainapartment.Apartment {
	return &domainapartment.Apartment{
		ID:             domainapartment.ApartmentID(d.ID),
		Host:           domainapartment.HostID(d.HostID),
		Title:          d.Title,
		Description:    d.Description,
		Address:        d.Address,
		City:           d.City,
		Country:        d.Country,
		Bedrooms:       d.Bedrooms,
		Bathrooms:      d.Bathrooms,
		MaxOccupancy:   d.MaxOccupancy,
		NightlyRate:    money.Money{Amount: d.RateAmount, Currency: d.RateCurrency},
		OpenForBooking: d.OpenForBooking,
		CreatedAt:      timestampToTime(d.CreatedAt),
		UpdatedAt:      timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainapartment.Repository = (*ApartmentRepository)(nil)
