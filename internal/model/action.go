package model

// ActionKind tags the variant carried by a DelayedAction.
type ActionKind int

const (
	SubmitBuy ActionKind = iota
	SubmitSell
	Cancel
	LocalProcessFill
	LocalBookUpdate
	LocalOrderUpdate
)

func (k ActionKind) String() string {
	switch k {
	case SubmitBuy:
		return "SubmitBuy"
	case SubmitSell:
		return "SubmitSell"
	case Cancel:
		return "Cancel"
	case LocalProcessFill:
		return "LocalProcessFill"
	case LocalBookUpdate:
		return "LocalBookUpdate"
	case LocalOrderUpdate:
		return "LocalOrderUpdate"
	default:
		return "Unknown"
	}
}

// DelayedAction is the scheduler payload: a tagged union carrying exactly
// the fields its Kind needs. Every variant carries AssetId and ExecuteTime;
// the scheduler dispatches by Kind alone, never by a nil-field check, so
// each field below is populated only for its owning kind(s).
type DelayedAction struct {
	Kind        ActionKind
	AssetId     AssetId
	ExecuteTime Timestamp

	// SubmitBuy / SubmitSell
	Order Order

	// Cancel
	OrderId OrderId

	// LocalProcessFill
	Fill Fill

	// LocalBookUpdate
	BookUpdate BookUpdate

	// LocalOrderUpdate
	UpdateKind OrderEventKind
	Snapshot   Order
}
