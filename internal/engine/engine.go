// Package engine implements BacktestEngine (C5): the component a strategy
// actually drives. It composes the market feed, the exchange matcher, and
// the delayed-action scheduler, and maintains the latency-delayed local
// (shadow) view of cash, positions, orders, and per-asset order books that
// a strategy sees through the public API in api.go.
package engine

import (
	"github.com/rs/zerolog"

	"backtestcore/internal/book"
	"backtestcore/internal/feed"
	"backtestcore/internal/idgen"
	"backtestcore/internal/matcher"
	"backtestcore/internal/model"
	"backtestcore/internal/scheduler"
)

// Config holds the three latency budgets and the starting cash balance.
// Zero-value latencies are valid (a frictionless simulation).
type Config struct {
	OrderEntryLatencyUs    model.Timestamp
	OrderResponseLatencyUs model.Timestamp
	MarketFeedLatencyUs    model.Timestamp
	StartingCash           model.Price
}

type assetState struct {
	config       model.AssetConfig
	localBook    *book.OrderBook
	position     model.Quantity
	numTrades    int
	tradingVolume model.Quantity
	tradingValue  model.Price
	realizedPnL   model.Price
}

// BacktestEngine drives one simulated trading session across a set of
// assets, replaying recorded book-update and trade streams through a
// latency-delayed local view.
type BacktestEngine struct {
	cfg Config

	currentTimeUs model.Timestamp

	feed      *feed.MarketFeed
	matcher   *matcher.Matcher
	scheduler *scheduler.Scheduler
	idgen     *idgen.Generator

	assets map[model.AssetId]*assetState

	localCash     model.Price
	activeOrders  map[model.OrderId]model.Order

	onFill        func(model.AssetId, model.Fill)
	onOrderUpdate func(model.AssetId, model.OrderUpdate)

	logger zerolog.Logger
}

// OnFill registers a callback invoked every time a fill reaches the
// local (latency-delayed) view, after local accounting has already been
// applied. Intended for an external observer (e.g. internal/gateway's
// broadcast, or internal/recorder) rather than strategy logic, which
// should read state through Position/Cash/Orders instead.
func (e *BacktestEngine) OnFill(cb func(model.AssetId, model.Fill)) {
	e.onFill = cb
}

// OnOrderUpdate registers a callback invoked every time an order update
// reaches the local view, after the local active-orders view has already
// been updated.
func (e *BacktestEngine) OnOrderUpdate(cb func(model.AssetId, model.OrderUpdate)) {
	e.onOrderUpdate = cb
}

// New constructs an engine for the given per-asset configs and feed
// readers (book reader, trade reader — either may be nil).
func New(configs map[model.AssetId]model.AssetConfig, readers map[model.AssetId][2]feed.Reader, cfg Config, logger zerolog.Logger) *BacktestEngine {
	mf := feed.New()
	assets := make(map[model.AssetId]*assetState, len(configs))
	for assetId, c := range configs {
		rs := readers[assetId]
		mf.AddAsset(assetId, rs[0], rs[1])
		assets[assetId] = &assetState{
			config:    c,
			localBook: book.New(c.TickSize),
		}
	}

	return &BacktestEngine{
		cfg:          cfg,
		feed:         mf,
		matcher:      matcher.New(configs, cfg.OrderResponseLatencyUs, logger),
		scheduler:    scheduler.New(),
		idgen:        &idgen.Generator{},
		assets:       assets,
		localCash:    cfg.StartingCash,
		activeOrders: make(map[model.OrderId]model.Order),
		logger:       logger,
	}
}

// CurrentTime returns the simulation's current timestamp.
func (e *BacktestEngine) CurrentTime() model.Timestamp {
	return e.currentTimeUs
}
