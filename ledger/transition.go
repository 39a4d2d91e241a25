package ledger

// Transition applies e to s and returns the resulting state. It has no side
// effects: s, including its history, is left untouched. Events of an unknown
// kind (and nil) return s unchanged.
func Transition(s State, e Event) State {
	switch ev := e.(type) {
	case Initialized:
		return initialize(s, ev)
	case OrderPlaced:
		return place(s, ev)
	case OrderFilled:
		return fill(s, ev)
	case OrderCancelled:
		return cancel(s, ev)
	case BarReceived:
		return s.record(ev.Timestamp)
	default:
		return s
	}
}

// Fold applies events to s in order.
func Fold(s State, events ...Event) State {
	for _, e := range events {
		s = Transition(s, e)
	}
	return s
}

func initialize(s State, ev Initialized) State {
	o := ev.Overrides
	if o.Cash.Valid {
		s.Cash = o.Cash.Decimal
	}
	if o.ReservedCash.Valid {
		s.ReservedCash = o.ReservedCash.Decimal
	}
	if o.Commission.Valid {
		s.Commission = o.Commission.Decimal
	}
	if o.History != nil {
		// The caller keeps its slice; record copies before appending.
		s.History = o.History
	}
	return s.record(ev.Timestamp)
}

// place reserves the worst case for an order: notional plus commission for a
// buy, commission only for a sell since its proceeds are not known yet.
func place(s State, ev OrderPlaced) State {
	if isBuy(ev.Quantity) {
		cost := notional(ev.Price, ev.Quantity)
		s.ReservedCash = s.ReservedCash.Add(cost).Add(ev.Commission)
		s.Cash = s.Cash.Sub(cost).Sub(ev.Commission)
		return s
	}
	s.ReservedCash = s.ReservedCash.Add(ev.Commission)
	s.Cash = s.Cash.Sub(ev.Commission)
	return s
}

func fill(s State, ev OrderFilled) State {
	s = s.record(ev.Timestamp)

	adjusted := prorate(ev.ExpectedCommission, ev.Quantity, ev.ExpectedQuantity)

	if isBuy(ev.Quantity) {
		// Release what was reserved at placement, which used the expected
		// price, not the price we were actually filled at.
		cost := ev.Quantity.Mul(ev.ExpectedPrice).Add(adjusted)
		s.ReservedCash = s.ReservedCash.Sub(cost)
	} else {
		extra := extraCommission(ev.Commission, ev.ExpectedCommission)
		received := notional(ev.Quantity, ev.Price).Sub(extra)
		s.Cash = s.Cash.Add(received)
		s.ReservedCash = s.ReservedCash.Sub(adjusted)
	}

	s.Commission = s.Commission.Add(ev.Commission)
	return s
}

// cancel reverses a buy's reservation. Cancelling a sell leaves the state
// alone, including the commission reserved when it was placed.
func cancel(s State, ev OrderCancelled) State {
	if !isBuy(ev.Quantity) {
		return s
	}
	cost := notional(ev.Price, ev.Quantity)
	s.ReservedCash = s.ReservedCash.Sub(cost).Sub(ev.Commission)
	s.Cash = s.Cash.Add(cost).Add(ev.Commission)
	return s
}
