package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/capital/ledger"
)

var ErrUnknownEvent = errors.New("unknown event")

var requiredColumns = []string{"time", "event"}

// CSVFeed reads ledger events from CSV, one event per row:
//
//	time,event,order_id,instrument,quantity,price,commission,expected_quantity,expected_price,expected_commission,cash,reserved_cash
//
// time is RFC3339 or unix milliseconds. event is one of INITIALIZED,
// ORDER_PLACED, ORDER_FILLED, ORDER_CANCELLED or BAR_RECEIVED. On
// INITIALIZED rows cash, reserved_cash and commission are initial values;
// empty cells are not supplied. Columns other than time and event may be
// left out of the header altogether.
type CSVFeed struct {
	r   *csv.Reader
	c   io.Closer
	col map[string]int
}

// OpenCSVFeed opens path and reads its header.
func OpenCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	feed, err := NewCSVFeed(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	feed.c = f
	return feed, nil
}

// NewCSVFeed reads the header from r.
func NewCSVFeed(r io.Reader) (*CSVFeed, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range requiredColumns {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("header is missing column %q", req)
		}
	}

	return &CSVFeed{r: cr, col: col}, nil
}

func (f *CSVFeed) Close() error {
	if f.c != nil {
		return f.c.Close()
	}
	return nil
}

// Next returns the next event. ok is false once the input is exhausted.
func (f *CSVFeed) Next() (ledger.Event, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if blank(row) {
			continue
		}

		line, _ := f.r.FieldPos(0)
		ev, err := f.parse(row)
		if err != nil {
			return nil, false, fmt.Errorf("line %d: %w", line, err)
		}
		return ev, true, nil
	}
}

func (f *CSVFeed) parse(row []string) (ledger.Event, error) {
	p := rowParser{row: row, col: f.col}

	name := p.str("event")
	kind, err := ledger.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownEvent, name)
	}

	switch kind {
	case ledger.KindInitialized:
		ev := ledger.Initialized{
			Timestamp: p.time(),
			Overrides: ledger.Overrides{
				Cash:         p.nullDecimal("cash"),
				ReservedCash: p.nullDecimal("reserved_cash"),
				Commission:   p.nullDecimal("commission"),
			},
		}
		return ev, p.err

	case ledger.KindOrderPlaced:
		ev := ledger.OrderPlaced{
			OrderID:    p.str("order_id"),
			Instrument: p.str("instrument"),
			Quantity:   p.decimal("quantity"),
			Price:      p.decimal("price"),
			Commission: p.decimal("commission"),
		}
		return ev, p.err

	case ledger.KindOrderFilled:
		ev := ledger.OrderFilled{
			OrderID:            p.str("order_id"),
			Instrument:         p.str("instrument"),
			Quantity:           p.decimal("quantity"),
			Price:              p.decimal("price"),
			Commission:         p.decimal("commission"),
			ExpectedQuantity:   p.decimal("expected_quantity"),
			ExpectedPrice:      p.decimal("expected_price"),
			ExpectedCommission: p.decimal("expected_commission"),
			Timestamp:          p.time(),
		}
		return ev, p.err

	case ledger.KindOrderCancelled:
		ev := ledger.OrderCancelled{
			OrderID:    p.str("order_id"),
			Instrument: p.str("instrument"),
			Quantity:   p.decimal("quantity"),
			Price:      p.decimal("price"),
			Commission: p.decimal("commission"),
		}
		return ev, p.err

	case ledger.KindBarReceived:
		ev := ledger.BarReceived{
			Instrument: p.str("instrument"),
			Timestamp:  p.time(),
		}
		return ev, p.err
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownEvent, name)
}

// rowParser reads named cells and remembers the first error.
type rowParser struct {
	row []string
	col map[string]int
	err error
}

func (p *rowParser) str(name string) string {
	i, ok := p.col[name]
	if !ok || i >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[i])
}

func (p *rowParser) decimal(name string) decimal.Decimal {
	v := p.nullDecimal(name)
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

func (p *rowParser) nullDecimal(name string) decimal.NullDecimal {
	s := p.str(name)
	if s == "" || p.err != nil {
		return decimal.NullDecimal{}
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		p.err = fmt.Errorf("bad %s %q: %w", name, s, err)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}

func (p *rowParser) time() time.Time {
	s := p.str("time")
	if p.err != nil {
		return time.Time{}
	}
	if s == "" {
		p.err = fmt.Errorf("time is required")
		return time.Time{}
	}
	t, err := ParseTime(s)
	if err != nil {
		p.err = err
	}
	return t
}

// ParseTime accepts RFC3339 (with optional fractional seconds) or unix
// milliseconds.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: want RFC3339 or unix milliseconds", s)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
