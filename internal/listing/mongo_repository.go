package listing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nekogravitycat/rental-booking/internal/pkg/money"
)

const listingsCollection = "listings"

type mongoRepository struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoRepository stores listings as documents, keyed by a generated UUID
// so ids stay interchangeable with the Postgres store.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		col: db.Collection(listingsCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the indexes list queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(listingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create listing indexes: %w", err)
	}
	return nil
}

type listingDocument struct {
	ID            string           `bson:"_id"`
	HostID        string           `bson:"host_id"`
	Title         string           `bson:"title"`
	Description   string           `bson:"description"`
	PricePerNight int64            `bson:"price_per_night"`
	MaxGuests     int              `bson:"max_guests"`
	Bedrooms      int              `bson:"bedrooms"`
	Bathrooms     int              `bson:"bathrooms"`
	PropertyType  string           `bson:"property_type"`
	Location      locationDocument `bson:"location"`
	Amenities     []string         `bson:"amenities"`
	CreatedAt     int64            `bson:"created_at"`
	UpdatedAt     int64            `bson:"updated_at"`
}

type locationDocument struct {
	Address   string   `bson:"address"`
	City      string   `bson:"city"`
	State     string   `bson:"state"`
	Country   string   `bson:"country"`
	Latitude  *float64 `bson:"lat,omitempty"`
	Longitude *float64 `bson:"lng,omitempty"`
}

func newListingDocument(l *Listing) listingDocument {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return listingDocument{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Description:   l.Description,
		PricePerNight: int64(l.PricePerNight),
		MaxGuests:     l.MaxGuests,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		PropertyType:  string(l.PropertyType),
		Location: locationDocument{
			Address:   l.Location.Address,
			City:      l.Location.City,
			State:     l.Location.State,
			Country:   l.Location.Country,
			Latitude:  l.Location.Latitude,
			Longitude: l.Location.Longitude,
		},
		Amenities: amenities,
		CreatedAt: l.CreatedAt.UnixMilli(),
		UpdatedAt: l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toListing() *Listing {
	return &Listing{
		ID:            d.ID,
		HostID:        d.HostID,
		Title:         d.Title,
		Description:   d.Description,
		PricePerNight: money.Amount(d.PricePerNight),
		MaxGuests:     d.MaxGuests,
		Bedrooms:      d.Bedrooms,
		Bathrooms:     d.Bathrooms,
		PropertyType:  PropertyType(d.PropertyType),
		Location: Location{
			Address:   d.Location.Address,
			City:      d.Location.City,
			State:     d.Location.State,
			Country:   d.Location.Country,
			Latitude:  d.Location.Latitude,
			Longitude: d.Location.Longitude,
		},
		Amenities: d.Amenities,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(d.UpdatedAt).UTC(),
	}
}

func (r *mongoRepository) Create(ctx context.Context, l *Listing) error {
	now := r.now()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, newListingDocument(l)); err != nil {
		return fmt.Errorf("insert listing failed: %w", err)
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find listing failed: %w", err)
	}
	return doc.toListing(), nil
}

func exactFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func mongoFilter(f Filter) bson.M {
	q := bson.M{}
	if f.HostID != "" {
		q["host_id"] = f.HostID
	}
	if f.City != "" {
		q["location.city"] = exactFold(f.City)
	}
	if f.Country != "" {
		q["location.country"] = exactFold(f.Country)
	}
	if f.PropertyType != "" {
		q["property_type"] = string(f.PropertyType)
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = int64(*f.MinPrice)
	}
	if f.MaxPrice != nil {
		price["$lte"] = int64(*f.MaxPrice)
	}
	if len(price) > 0 {
		q["price_per_night"] = price
	}
	if f.Guests > 0 {
		q["max_guests"] = bson.M{"$gte": f.Guests}
	}
	return q
}

func (r *mongoRepository) List(ctx context.Context, filter Filter) ([]*Listing, int, error) {
	q := mongoFilter(filter)

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count listings failed: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((filter.Page - 1) * filter.PageSize)).
		SetLimit(int64(filter.PageSize))

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find listings failed: %w", err)
	}
	defer cur.Close(ctx)

	var listings []*Listing
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode listing failed: %w", err)
		}
		listings = append(listings, doc.toListing())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listings failed: %w", err)
	}

	return listings, int(total), nil
}

func (r *mongoRepository) Update(ctx context.Context, l *Listing) error {
	l.UpdatedAt = r.now()
	doc := newListingDocument(l)

	update := bson.M{"$set": bson.M{
		"title":           doc.Title,
		"description":     doc.Description,
		"price_per_night": doc.PricePerNight,
		"max_guests":      doc.MaxGuests,
		"bedrooms":        doc.Bedrooms,
		"bathrooms":       doc.Bathrooms,
		"property_type":   doc.PropertyType,
		"location":        doc.Location,
		"amenities":       doc.Amenities,
		"updated_at":      doc.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": l.ID}, update)
	if err != nil {
		return fmt.Errorf("update listing failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
