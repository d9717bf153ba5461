package model

import "fmt"

// Order is owned exclusively by the exchange matcher while resting; the
// local view only ever holds value-copy snapshots delivered through
// OrderUpdate (see DelayedAction.LocalOrderUpdate).
type Order struct {
	OrderId         OrderId     // Monotonic id assigned at local submission
	AssetId         AssetId     //
	Side            Side        // Resting side (Bid or Ask)
	Price           Price       // Limit price; unused for MARKET orders
	Quantity        Quantity    // Originally requested quantity
	FilledQuantity  Quantity    // 0 <= FilledQuantity <= Quantity
	Type            OrderType   //
	TIF             TimeInForce //
	QueueEst        Quantity    // Our modelled distance from the front of the queue
	Status          OrderStatus //
	LocalTimestamp  Timestamp   // Time the strategy submitted the order
	ExchTimestamp   Timestamp   // Time the exchange received the order
}

// Remaining returns the unfilled quantity.
func (o Order) Remaining() Quantity {
	return o.Quantity - o.FilledQuantity
}

func (o Order) String() string {
	return fmt.Sprintf(
		"Order{id=%d asset=%d side=%s price=%.8f qty=%.8f filled=%.8f type=%s tif=%s status=%s}",
		o.OrderId, o.AssetId, o.Side, o.Price, o.Quantity, o.FilledQuantity, o.Type, o.TIF, o.Status,
	)
}
