package model

import "fmt"

// BookUpdate is an incremental (or snapshot) L2 book update from the
// market feed. Quantity == 0 deletes the price level.
type BookUpdate struct {
	AssetId        AssetId
	ExchTimestamp  Timestamp
	LocalTimestamp Timestamp
	Kind           BookUpdateKind
	Side           Side
	Price          Price
	Quantity       Quantity
}

func (u BookUpdate) String() string {
	return fmt.Sprintf("BookUpdate{asset=%d kind=%s side=%s price=%.8f qty=%.8f exch=%d local=%d}",
		u.AssetId, u.Kind, u.Side, u.Price, u.Quantity, u.ExchTimestamp, u.LocalTimestamp)
}

// Trade is a public print from the market feed. TakerSide is the
// liquidity-taking side of the print.
type Trade struct {
	AssetId        AssetId
	ExchTimestamp  Timestamp
	LocalTimestamp Timestamp
	TakerSide      TradeSide
	Price          Price
	Quantity       Quantity
	Id             string
}

func (t Trade) String() string {
	return fmt.Sprintf("Trade{asset=%d taker=%s price=%.8f qty=%.8f exch=%d local=%d id=%s}",
		t.AssetId, t.TakerSide, t.Price, t.Quantity, t.ExchTimestamp, t.LocalTimestamp, t.Id)
}

// EventKind tags which of BookUpdate/Trade an Event carries.
type EventKind int

const (
	BookUpdateEvent EventKind = iota
	TradeEvent
)

// Event is the tagged union a feed reader / MarketFeed emits, carrying
// exactly one of BookUpdate or Trade.
type Event struct {
	Kind       EventKind
	BookUpdate BookUpdate
	Trade      Trade
}

// Timestamp returns the event's exchange timestamp regardless of kind.
func (e Event) Timestamp() Timestamp {
	if e.Kind == TradeEvent {
		return e.Trade.ExchTimestamp
	}
	return e.BookUpdate.ExchTimestamp
}
