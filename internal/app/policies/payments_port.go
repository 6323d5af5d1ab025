package policies

import (
	"context"

	"staybook/internal/domain/shared/money"
)

// PaymentsPort abstracts the payment gateway adapter. The engine only ever
// asks it to move money; order creation and webhook verification live with
// the gateway integration, outside this core.
type PaymentsPort interface {
	Refund(ctx context.Context, bookingID string, amount money.Money) error
}

// NoopPayments satisfies PaymentsPort when no gateway is wired (local runs, tests).
type NoopPayments struct{}

func (NoopPayments) Refund(ctx context.Context, bookingID string, amount money.Money) error {
	return nil
}
