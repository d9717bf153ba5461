// Package model holds the primitive types and entities shared by every
// component of the backtest core: the order book, the matcher, the
// scheduler, and the engine itself.
package model

// Timestamp is microseconds since an arbitrary epoch. The core never
// interprets it as wall-clock time; only relative ordering matters.
type Timestamp = uint64

// Ticks is an integer price expressed as a multiple of an asset's tick
// size. The order book is keyed by Ticks so that lookups never depend on
// floating-point equality.
type Ticks = int64

// Price and Quantity are natural-unit floating point values. Quantity is
// expected to be a lot-rounded multiple of an asset's lot size; the core
// does not enforce this itself (see ticks.QuantityToLot).
type Price = float64
type Quantity = float64

// OrderId is monotonically increasing within one engine instance.
type OrderId = uint64

// AssetId is a small integer identifying one traded instrument.
type AssetId = int

// Side is the resting/standing side of an order in the book.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "Bid"
	case Ask:
		return "Ask"
	default:
		return "Unknown"
	}
}

// TradeSide is the side of a taker action or a public trade print.
type TradeSide int

const (
	Buy TradeSide = iota
	Sell
)

func (s TradeSide) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// OrderType distinguishes market orders from limit orders.
type OrderType int

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "Limit"
	case Market:
		return "Market"
	default:
		return "Unknown"
	}
}

// TimeInForce governs how a limit order is handled when it can't fully
// execute immediately. GTC limit orders are always post-only in this core;
// a plain crossing GTC limit order is out of scope.
type TimeInForce int

const (
	GTC TimeInForce = iota
	IOC
	FOK
)

func (t TimeInForce) String() string {
	switch t {
	case GTC:
		return "GTC"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "Unknown"
	}
}

// OrderStatus is the order state machine (spec §4.3).
type OrderStatus int

const (
	New OrderStatus = iota
	Active
	PartiallyFilled
	Filled
	Cancelled
	Rejected
	Expired
)

func (s OrderStatus) String() string {
	switch s {
	case New:
		return "NEW"
	case Active:
		return "ACTIVE"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rejected:
		return "REJECTED"
	case Expired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the status will never transition further.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case Filled, Cancelled, Rejected, Expired:
		return true
	default:
		return false
	}
}

// BookUpdateKind distinguishes a full snapshot from an incremental delta.
type BookUpdateKind int

const (
	Incremental BookUpdateKind = iota
	Snapshot
)

func (k BookUpdateKind) String() string {
	switch k {
	case Incremental:
		return "Incremental"
	case Snapshot:
		return "Snapshot"
	default:
		return "Unknown"
	}
}

// OrderEventKind tags the variants of an OrderUpdate emitted by the matcher.
type OrderEventKind int

const (
	Acknowledged OrderEventKind = iota
	FillEvent
	CancelledEvent
	RejectedEvent
)

func (k OrderEventKind) String() string {
	switch k {
	case Acknowledged:
		return "Acknowledged"
	case FillEvent:
		return "Fill"
	case CancelledEvent:
		return "Cancelled"
	case RejectedEvent:
		return "Rejected"
	default:
		return "Unknown"
	}
}
