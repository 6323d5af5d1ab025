package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "check_in", Value: 1}},
	})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

// DueForActivation returns confirmed bookings whose check-in day has arrived.
func (r *BookingRepository) DueForActivation(ctx context.Context, now time.Time) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"status":   string(domainbooking.StatusConfirmed),
		"check_in": bson.M{"$lte": endOfDayMilli(now)},
	}
	return r.list(ctx, filter)
}

// DueForCompletion returns active bookings whose checkout day has arrived.
func (r *BookingRepository) DueForCompletion(ctx context.Context, now time.Time) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"status":    string(domainbooking.StatusActive),
		"check_out": bson.M{"$lte": endOfDayMilli(now)},
	}
	return r.list(ctx, filter)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

// endOfDayMilli compares by calendar day: anything due today qualifies.
func endOfDayMilli(t time.Time) int64 {
	day := domainrange.DayOf(t)
	return (day + 1).Time().UnixMilli() - 1
}

type bookingDocument struct {
	ID               string `bson:"_id"`
	PropertyID       string `bson:"property_id"`
	GuestID          string `bson:"guest_id"`
	CheckIn          int64  `bson:"check_in"`
	CheckOut         int64  `bson:"check_out"`
	Guests           int    `bson:"guests"`
	TotalAmount      int64  `bson:"total_amount"`
	Currency         string `bson:"currency"`
	ConfirmationCode string `bson:"confirmation_code"`
	Status           string `bson:"status"`
	PaymentStatus    string `bson:"payment_status"`
	CanCancel        bool   `bson:"can_cancel"`
	RefundPercent    int    `bson:"refund_percent"`
	CancelledAt      int64  `bson:"cancelled_at,omitempty"`
	CancelReason     string `bson:"cancel_reason,omitempty"`
	CreatedAt        int64  `bson:"created_at"`
	UpdatedAt        int64  `bson:"updated_at"`
	Version          int64  `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:               string(b.ID),
		PropertyID:       string(b.PropertyID),
		GuestID:          b.GuestID,
		CheckIn:          b.Range.CheckIn.UnixMilli(),
		CheckOut:         b.Range.CheckOut.UnixMilli(),
		Guests:           b.Guests,
		TotalAmount:      b.Total.Amount,
		Currency:         b.Total.Currency,
		ConfirmationCode: b.ConfirmationCode,
		Status:           string(b.Status),
		PaymentStatus:    string(b.Payment),
		CanCancel:        b.CanCancel,
		RefundPercent:    b.RefundPercent,
		CancelReason:     b.CancelReason,
		CreatedAt:        b.CreatedAt.UnixMilli(),
		UpdatedAt:        b.UpdatedAt.UnixMilli(),
		Version:          b.Version,
	}
	if !b.CancelledAt.IsZero() {
		doc.CancelledAt = b.CancelledAt.UnixMilli()
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:               domainbooking.BookingID(d.ID),
		PropertyID:       domainproperty.PropertyID(d.PropertyID),
		GuestID:          d.GuestID,
		Range:            domainrange.DateRange{CheckIn: timestampToTime(d.CheckIn), CheckOut: timestampToTime(d.CheckOut)},
		Guests:           d.Guests,
		Total:            money.Money{Amount: d.TotalAmount, Currency: d.Currency},
		ConfirmationCode: d.ConfirmationCode,
		Status:           domainbooking.Status(d.Status),
		Payment:          domainbooking.PaymentStatus(d.PaymentStatus),
		CanCancel:        d.CanCancel,
		RefundPercent:    d.RefundPercent,
		CancelReason:     d.CancelReason,
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
	if d.CancelledAt != 0 {
		b.CancelledAt = timestampToTime(d.CancelledAt)
	}
	return b
}
