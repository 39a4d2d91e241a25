package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the type of an Event.
type Kind int

const (
	KindUnknown Kind = iota
	KindInitialized
	KindOrderPlaced
	KindOrderFilled
	KindOrderCancelled
	KindBarReceived
)

var kindNames = map[Kind]string{
	KindInitialized:    "INITIALIZED",
	KindOrderPlaced:    "ORDER_PLACED",
	KindOrderFilled:    "ORDER_FILLED",
	KindOrderCancelled: "ORDER_CANCELLED",
	KindBarReceived:    "BAR_RECEIVED",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseKind maps an event name such as "ORDER_FILLED" (case-insensitive)
// back to its Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown event kind %q", s)
}

// Event is anything the ledger can be fed. Events of a kind the ledger does
// not know about leave the state untouched.
type Event interface {
	Kind() Kind
}

// Overrides carries optional initial values for an Initialized event.
// A field that is not Valid (or a nil History) is left as it is.
type Overrides struct {
	Cash         decimal.NullDecimal
	ReservedCash decimal.NullDecimal
	Commission   decimal.NullDecimal

	// History is taken as-is. Entries are not checked for ordering or
	// consistency with the balances.
	History []Snapshot
}

type Initialized struct {
	Timestamp time.Time
	Overrides Overrides
}

// OrderPlaced is reported when the broker accepts an order. A positive
// quantity is a buy, anything else a sell.
type OrderPlaced struct {
	OrderID    string
	Instrument string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
}

// OrderFilled reports a (possibly partial) fill. The Expected* fields are the
// values the order was placed with, which is what the reservation was made
// against.
type OrderFilled struct {
	OrderID    string
	Instrument string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal

	ExpectedQuantity   decimal.Decimal
	ExpectedPrice      decimal.Decimal
	ExpectedCommission decimal.Decimal

	Timestamp time.Time
}

type OrderCancelled struct {
	OrderID    string
	Instrument string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	Commission decimal.Decimal
}

type BarReceived struct {
	Instrument string
	Timestamp  time.Time
}

func (Initialized) Kind() Kind    { return KindInitialized }
func (OrderPlaced) Kind() Kind    { return KindOrderPlaced }
func (OrderFilled) Kind() Kind    { return KindOrderFilled }
func (OrderCancelled) Kind() Kind { return KindOrderCancelled }
func (BarReceived) Kind() Kind    { return KindBarReceived }
