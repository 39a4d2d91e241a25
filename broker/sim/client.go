// Package sim is a deterministic in-process broker. It accepts orders,
// fills them against the bars it is fed and reports everything it does as
// ledger events.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/capital/broker"
	"github.com/rustyeddy/capital/id"
	"github.com/rustyeddy/capital/ledger"
)

// EventHandler receives the events produced by the client, in order.
type EventHandler func(ledger.Event)

// Bar is one period of market data for an instrument.
type Bar struct {
	Instrument string
	Time       time.Time
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
}

type Option func(*Client)

// WithCommissionRate charges rate × |quantity × price| per fill.
func WithCommissionRate(rate decimal.Decimal) Option {
	return func(c *Client) { c.rate = rate }
}

// WithMaxFillQuantity fills at most q units of each order per bar, leaving
// the rest pending for later bars.
func WithMaxFillQuantity(q decimal.Decimal) Option {
	return func(c *Client) { c.maxFill = decimal.NewNullDecimal(q.Abs()) }
}

// WithIDs replaces the order id generator, e.g. with a seeded one in tests.
func WithIDs(g *id.Generator) Option {
	return func(c *Client) { c.ids = g }
}

type pendingOrder struct {
	order     broker.Order
	remaining decimal.Decimal
}

// Client implements broker.Client.
type Client struct {
	mu      sync.Mutex
	handler EventHandler
	ids     *id.Generator
	rate    decimal.Decimal
	maxFill decimal.NullDecimal
	quotes  map[string]broker.Quote
	pending []*pendingOrder
	now     time.Time
}

var _ broker.Client = (*Client)(nil)

func NewClient(h EventHandler, opts ...Option) *Client {
	c := &Client{
		handler: h,
		ids:     id.NewGenerator(0),
		rate:    decimal.Zero,
		quotes:  make(map[string]broker.Quote),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetQuote records the current market for an instrument. Market orders are
// priced from it.
func (c *Client) SetQuote(q broker.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[q.Instrument] = q
	c.advance(q.Time)
}

func (c *Client) GetMarketPrice(ctx context.Context, instrument string) (broker.Quote, error) {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.quotes[instrument]
	if !ok {
		return broker.Quote{}, fmt.Errorf("%w for %q", broker.ErrNoQuote, instrument)
	}
	return q, nil
}

func (c *Client) CalculateCommission(quantity, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price).Abs().Mul(c.rate)
}

// ExecuteOrder accepts an order and reports it as placed. It is filled on
// subsequent bars for its instrument.
func (c *Client) ExecuteOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	_ = ctx

	if req.Quantity.IsZero() {
		return broker.Order{}, fmt.Errorf("execute order: quantity must not be zero")
	}

	c.mu.Lock()

	price := req.Price
	if price.IsZero() {
		q, ok := c.quotes[req.Instrument]
		if !ok {
			c.mu.Unlock()
			return broker.Order{}, fmt.Errorf("execute order: %w for %q", broker.ErrNoQuote, req.Instrument)
		}
		// Buys lift the offer, sells hit the bid.
		price = q.Buy
		if req.Quantity.IsNegative() {
			price = q.Sell
		}
	}

	at := c.now
	if at.IsZero() {
		at = time.Now()
	}

	o := broker.Order{
		ID:         c.ids.At(at),
		Instrument: req.Instrument,
		Quantity:   req.Quantity,
		Price:      price,
		Commission: req.Commission,
		Time:       at,
	}
	c.pending = append(c.pending, &pendingOrder{order: o, remaining: o.Quantity})

	c.mu.Unlock()

	c.emit(o.Placed())
	return o, nil
}

// CancelOrder cancels whatever part of the order has not filled yet.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	_ = ctx

	c.mu.Lock()

	idx := -1
	for i, p := range c.pending {
		if p.order.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("cancel order %q: %w", orderID, broker.ErrOrderNotFound)
	}

	p := c.pending[idx]
	c.pending = append(c.pending[:idx:idx], c.pending[idx+1:]...)

	rest := p.order
	rest.Quantity = p.remaining
	rest.Commission = share(p.order.Commission, p.remaining, p.order.Quantity)

	c.mu.Unlock()

	c.emit(rest.Cancelled())
	return nil
}

// OnBar fills pending orders for the bar's instrument at its close, oldest
// first, then reports the bar itself.
func (c *Client) OnBar(bar Bar) {
	c.mu.Lock()

	c.advance(bar.Time)
	c.quotes[bar.Instrument] = broker.Quote{
		Instrument: bar.Instrument,
		Buy:        bar.Close,
		Sell:       bar.Close,
		Time:       bar.Time,
	}

	var events []ledger.Event
	kept := c.pending[:0]
	for _, p := range c.pending {
		if p.order.Instrument != bar.Instrument {
			kept = append(kept, p)
			continue
		}

		qty := p.remaining
		if c.maxFill.Valid && qty.Abs().GreaterThan(c.maxFill.Decimal) {
			qty = c.maxFill.Decimal.Mul(decimal.NewFromInt(int64(qty.Sign())))
		}

		f := broker.Fill{
			Order: broker.Order{
				ID:         p.order.ID,
				Instrument: p.order.Instrument,
				Quantity:   qty,
				Price:      bar.Close,
				Commission: c.CalculateCommission(qty, bar.Close),
				Time:       bar.Time,
			},
			Expected: broker.OrderRequest{
				Instrument: p.order.Instrument,
				Quantity:   p.order.Quantity,
				Price:      p.order.Price,
				Commission: p.order.Commission,
			},
		}
		events = append(events, f.Filled())

		p.remaining = p.remaining.Sub(qty)
		if !p.remaining.IsZero() {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(c.pending); i++ {
		c.pending[i] = nil
	}
	c.pending = kept

	events = append(events, ledger.BarReceived{Instrument: bar.Instrument, Timestamp: bar.Time})

	c.mu.Unlock()

	for _, e := range events {
		c.emit(e)
	}
}

// Pending returns the unfilled part of every open order.
func (c *Client) Pending() []broker.Order {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]broker.Order, 0, len(c.pending))
	for _, p := range c.pending {
		o := p.order
		o.Quantity = p.remaining
		out = append(out, o)
	}
	return out
}

func (c *Client) advance(t time.Time) {
	if t.After(c.now) {
		c.now = t
	}
}

func (c *Client) emit(e ledger.Event) {
	if c.handler != nil {
		c.handler(e)
	}
}

// share is total × part ÷ whole, rounded like the ledger's own proration.
func share(total, part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return total
	}
	return total.Mul(part).DivRound(whole, ledger.DivisionPrecision)
}
