package broker

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/capital/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuoteMid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		buy      string
		sell     string
		expected string
	}{
		{"simple", "3", "1", "2"},
		{"same", "2.5", "2.5", "2.5"},
		{"zero", "0", "0", "0"},
		{"fractional", "1.3", "1.1", "1.2"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := Quote{Buy: d(tt.buy), Sell: d(tt.sell)}
			assert.True(t, d(tt.expected).Equal(q.Mid()), "Mid() = %s", q.Mid())
		})
	}
}

func TestEventConversions(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := Order{ID: "1", Instrument: "MSFT", Quantity: d("100"), Price: d("100"), Commission: d("10"), Time: at}

	placed := o.Placed()
	assert.Equal(t, ledger.KindOrderPlaced, placed.Kind())
	assert.Equal(t, "1", placed.OrderID)
	assert.True(t, d("100").Equal(placed.Quantity))

	cancelled := o.Cancelled()
	assert.Equal(t, ledger.KindOrderCancelled, cancelled.Kind())
	assert.True(t, d("10").Equal(cancelled.Commission))

	f := Fill{
		Order:    Order{ID: "1", Instrument: "MSFT", Quantity: d("50"), Price: d("99"), Commission: d("4.95"), Time: at},
		Expected: OrderRequest{Instrument: "MSFT", Quantity: d("100"), Price: d("100"), Commission: d("10")},
	}
	filled := f.Filled()
	assert.Equal(t, ledger.KindOrderFilled, filled.Kind())
	assert.True(t, d("50").Equal(filled.Quantity))
	assert.True(t, d("99").Equal(filled.Price))
	assert.True(t, d("100").Equal(filled.ExpectedQuantity))
	assert.True(t, d("100").Equal(filled.ExpectedPrice))
	assert.True(t, d("10").Equal(filled.ExpectedCommission))
	assert.True(t, at.Equal(filled.Timestamp))

	s := ledger.Fold(ledger.New(), placed, filled)
	assert.True(t, d("5005").Equal(s.ReservedCash))
}
