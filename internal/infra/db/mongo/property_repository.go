package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("agg_property")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

type propertyDocument struct {
	ID           string           `bson:"_id"`
	HostID       string           `bson:"host_id"`
	Title        string           `bson:"title"`
	BaseAmount   int64            `bson:"base_amount"`
	Currency     string           `bson:"currency"`
	PricePerDate map[string]int64 `bson:"price_per_date,omitempty"`
	Available    bool             `bson:"available"`
	Status       string           `bson:"status"`
	CreatedAt    int64            `bson:"created_at"`
	UpdatedAt    int64            `bson:"updated_at"`
	Version      int64            `bson:"version"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	doc := propertyDocument{
		ID:         string(p.ID),
		HostID:     p.HostID,
		Title:      p.Title,
		BaseAmount: p.BasePrice.Amount,
		Currency:   p.BasePrice.Currency,
		Available:  p.Available,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt.UnixMilli(),
		UpdatedAt:  p.UpdatedAt.UnixMilli(),
		Version:    p.Version,
	}
	if len(p.PricePerDate) > 0 {
		// BSON map keys must be strings; days round-trip through ISO dates.
		doc.PricePerDate = make(map[string]int64, len(p.PricePerDate))
		for day, price := range p.PricePerDate {
			doc.PricePerDate[day.String()] = price.Amount
		}
	}
	return doc
}

func (d propertyDocument) toAggregate() (*domainproperty.Property, error) {
	p := &domainproperty.Property{
		ID:        domainproperty.PropertyID(d.ID),
		HostID:    d.HostID,
		Title:     d.Title,
		BasePrice: money.Money{Amount: d.BaseAmount, Currency: d.Currency},
		Available: d.Available,
		Status:    domainproperty.Status(d.Status),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	if len(d.PricePerDate) > 0 {
		p.PricePerDate = make(map[domainrange.Day]money.Money, len(d.PricePerDate))
		for iso, amount := range d.PricePerDate {
			t, err := time.Parse("2006-01-02", iso)
			if err != nil {
				return nil, err
			}
			p.PricePerDate[domainrange.DayOf(t)] = money.Money{Amount: amount, Currency: d.Currency}
		}
	}
	return p, nil
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
