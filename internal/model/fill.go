package model

import "fmt"

// Fill is emitted by the matcher for every taker execution and every
// resting-order execution (partial or full).
type Fill struct {
	AssetId        AssetId
	OrderId        OrderId
	Side           TradeSide
	Price          Price
	Quantity       Quantity
	IsMaker        bool
	ExchTimestamp  Timestamp
	LocalTimestamp Timestamp // ExchTimestamp + order_response_latency
}

func (f Fill) String() string {
	return fmt.Sprintf(
		"Fill{order=%d asset=%d side=%s price=%.8f qty=%.8f maker=%v exch=%d local=%d}",
		f.OrderId, f.AssetId, f.Side, f.Price, f.Quantity, f.IsMaker, f.ExchTimestamp, f.LocalTimestamp,
	)
}

// OrderUpdate carries a post-mutation snapshot of an order from the
// exchange matcher back to the local (latency-delayed) view.
type OrderUpdate struct {
	AssetId        AssetId
	OrderId        OrderId
	Kind           OrderEventKind
	Snapshot       Order
	ExchTimestamp  Timestamp
	LocalTimestamp Timestamp
}

func (u OrderUpdate) String() string {
	return fmt.Sprintf("OrderUpdate{order=%d asset=%d kind=%s exch=%d local=%d}",
		u.OrderId, u.AssetId, u.Kind, u.ExchTimestamp, u.LocalTimestamp)
}
