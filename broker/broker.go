// Package broker describes the execution collaborator of the ledger: the
// client that accepts orders and reports fills. The ledger never calls a
// broker; it only consumes the events built from what the broker reports.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/capital/ledger"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNoQuote       = errors.New("no quote")
)

type Client interface {
	ExecuteOrder(ctx context.Context, req OrderRequest) (Order, error)
	CancelOrder(ctx context.Context, id string) error
	GetMarketPrice(ctx context.Context, instrument string) (Quote, error)
	CalculateCommission(quantity, price decimal.Decimal) decimal.Decimal
}

// OrderRequest is what a caller asks for. A positive quantity buys, a
// negative one sells. A zero price means "at market".
type OrderRequest struct {
	Instrument string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
}

// Order is an accepted order, or the executed part of one when it is
// carried inside a Fill.
type Order struct {
	ID         string
	Instrument string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
	Time       time.Time
}

type Quote struct {
	Instrument string
	Buy        decimal.Decimal
	Sell       decimal.Decimal
	Time       time.Time
}

func (q Quote) Mid() decimal.Decimal {
	return q.Buy.Add(q.Sell).Div(decimal.NewFromInt(2))
}

// Fill reports an execution together with what the order was placed with.
type Fill struct {
	Order    Order
	Expected OrderRequest
}

func (o Order) Placed() ledger.OrderPlaced {
	return ledger.OrderPlaced{
		OrderID:    o.ID,
		Instrument: o.Instrument,
		Quantity:   o.Quantity,
		Price:      o.Price,
		Commission: o.Commission,
	}
}

func (o Order) Cancelled() ledger.OrderCancelled {
	return ledger.OrderCancelled{
		OrderID:    o.ID,
		Instrument: o.Instrument,
		Quantity:   o.Quantity,
		Price:      o.Price,
		Commission: o.Commission,
	}
}

func (f Fill) Filled() ledger.OrderFilled {
	return ledger.OrderFilled{
		OrderID:            f.Order.ID,
		Instrument:         f.Order.Instrument,
		Quantity:           f.Order.Quantity,
		Price:              f.Order.Price,
		Commission:         f.Order.Commission,
		ExpectedQuantity:   f.Expected.Quantity,
		ExpectedPrice:      f.Expected.Price,
		ExpectedCommission: f.Expected.Commission,
		Timestamp:          f.Order.Time,
	}
}
