package model

// AssetConfig is immutable per-asset configuration. ContractMultiplier and
// IsInverse are reserved for future use; the core never reads them.
type AssetConfig struct {
	Name              string
	BookUpdateFile    string
	TradeFile         string
	TickSize          Price
	LotSize           Quantity
	ContractMultiplier Price
	IsInverse         bool
	MakerFee          Price
	TakerFee          Price
}

// Depth is the level-1 (and summary) order book view returned to a
// strategy by BacktestEngine.Depth.
type Depth struct {
	BestBid  Price
	BestAsk  Price
	BidQty   Quantity
	AskQty   Quantity
	BidDepth int
	AskDepth int
	TickSize Price
	LotSize  Quantity
}
