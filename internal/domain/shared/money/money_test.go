package money

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("uppercases the currency", func(t *testing.T) {
		m, err := New(1500, "usd")
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		if m.Currency != "USD" {
			t.Fatalf("expected USD, got %q", m.Currency)
		}
	})

	t.Run("rejects malformed currency codes", func(t *testing.T) {
		for _, code := range []string{"", "US", "DOLLAR"} {
			if _, err := New(100, code); !errors.Is(err, ErrInvalidCurrency) {
				t.Fatalf("code %q: expected ErrInvalidCurrency, got %v", code, err)
			}
		}
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add and sub require matching currencies", func(t *testing.T) {
		usd := Must(1000, "USD")
		eur := Must(1000, "EUR")
		if _, err := usd.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
			t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
		}
		sum, err := usd.Add(Must(250, "USD"))
		if err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
		if sum.Amount != 1250 {
			t.Fatalf("expected 1250, got %d", sum.Amount)
		}
	})

	t.Run("multiply scales the amount", func(t *testing.T) {
		if got := Must(9900, "USD").Multiply(3).Amount; got != 29700 {
			t.Fatalf("expected 29700, got %d", got)
		}
	})
}

func TestMoney_Percent(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		percent int
		want    int64
	}{
		{"full refund", 20000, 100, 20000},
		{"half refund", 20000, 50, 10000},
		{"quarter refund", 20000, 25, 5000},
		{"zero percent", 20000, 0, 0},
		{"truncates toward zero", 99, 50, 49},
		{"clamps above hundred", 20000, 150, 20000},
		{"clamps below zero", 20000, -10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Must(tc.amount, "USD").Percent(tc.percent)
			if got.Amount != tc.want {
				t.Fatalf("Percent(%d) = %d, want %d", tc.percent, got.Amount, tc.want)
			}
			if got.Currency != "USD" {
				t.Fatalf("currency lost: %q", got.Currency)
			}
		})
	}
}
