package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincalendar "staybook/internal/domain/calendar"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// CalendarRepository persists one ledger document per property. Save is a
// conditional update on the loaded version: a concurrent writer bumps the
// version first and the loser gets ErrVersionConflict, which is what closes
// the check-then-block double-booking window.
type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("agg_calendar")}
}

// ByProperty loads a ledger, returning an empty one when none was persisted
// yet; a property with no ledger document is fully available.
func (r *CalendarRepository) ByProperty(ctx context.Context, id domainproperty.PropertyID) (*domaincalendar.Ledger, error) {
	var doc ledgerDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domaincalendar.NewLedger(id), nil
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// PropertyIDs lists every property with a persisted ledger. The maintenance
// scheduler uses it to fan out cleanup commands.
func (r *CalendarRepository) PropertyIDs(ctx context.Context) ([]domainproperty.PropertyID, error) {
	values, err := r.col.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]domainproperty.PropertyID, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, domainproperty.PropertyID(s))
		}
	}
	return ids, nil
}

func (r *CalendarRepository) Save(ctx context.Context, l *domaincalendar.Ledger) error {
	doc := newLedgerDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domaincalendar.ErrVersionConflict
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domaincalendar.ErrVersionConflict
	}
	l.Version = doc.Version
	return nil
}

type ledgerEntryDocument struct {
	Day        int64  `bson:"day"`
	Available  bool   `bson:"available"`
	Amount     *int64 `bson:"amount,omitempty"`
	Currency   string `bson:"currency,omitempty"`
	BookingRef string `bson:"booking_ref,omitempty"`
}

type ledgerDocument struct {
	ID      string                `bson:"_id"`
	Entries []ledgerEntryDocument `bson:"entries"`
	Version int64                 `bson:"version"`
}

func newLedgerDocument(l *domaincalendar.Ledger) ledgerDocument {
	doc := ledgerDocument{ID: string(l.PropertyID), Version: l.Version}
	doc.Entries = make([]ledgerEntryDocument, 0, len(l.Entries))
	for day, entry := range l.Entries {
		ed := ledgerEntryDocument{
			Day:        int64(day),
			Available:  entry.Available,
			BookingRef: entry.BookingRef,
		}
		if entry.Price != nil {
			amount := entry.Price.Amount
			ed.Amount = &amount
			ed.Currency = entry.Price.Currency
		}
		doc.Entries = append(doc.Entries, ed)
	}
	return doc
}

func (d ledgerDocument) toAggregate() *domaincalendar.Ledger {
	l := domaincalendar.NewLedger(domainproperty.PropertyID(d.ID))
	l.Version = d.Version
	for _, ed := range d.Entries {
		entry := domaincalendar.Entry{
			Available:  ed.Available,
			BookingRef: ed.BookingRef,
		}
		if ed.Amount != nil {
			price := money.Money{Amount: *ed.Amount, Currency: ed.Currency}
			entry.Price = &price
		}
		l.Entries[domainrange.Day(ed.Day)] = entry
	}
	return l
}
