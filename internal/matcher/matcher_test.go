package matcher

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"backtestcore/internal/model"
)

const responseLatencyUs = model.Timestamp(500)

func newTestMatcher() *Matcher {
	cfg := map[model.AssetId]model.AssetConfig{
		1: {Name: "TEST", TickSize: 1.0, LotSize: 0.01},
	}
	return New(cfg, responseLatencyUs, zerolog.Nop())
}

func seedBook(t *testing.T, m *Matcher, assetId model.AssetId) {
	t.Helper()
	for _, u := range []model.BookUpdate{
		{Side: model.Ask, Price: 101, Quantity: 2},
		{Side: model.Ask, Price: 102, Quantity: 3},
		{Side: model.Bid, Price: 99, Quantity: 2},
		{Side: model.Bid, Price: 98, Quantity: 4},
	} {
		u.Kind = model.Incremental
		assert.NoError(t, m.HandleBookUpdate(assetId, u))
	}
}

func TestMarketOrderWalksLevels(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Market, Quantity: 3, ExchTimestamp: 1000})

	fills := m.DrainFills()
	assert.Len(t, fills, 2)
	assert.Equal(t, model.Price(101), fills[0].Price)
	assert.Equal(t, model.Quantity(2), fills[0].Quantity)
	assert.Equal(t, model.Price(102), fills[1].Price)
	assert.Equal(t, model.Quantity(1), fills[1].Quantity)
	assert.Equal(t, model.Timestamp(1000+uint64(responseLatencyUs)), fills[0].LocalTimestamp)

	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.Filled, updates[len(updates)-1].Snapshot.Status)
}

func TestMarketOrderPartialWhenBookExhausted(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Market, Quantity: 10, ExchTimestamp: 1000})

	fills := m.DrainFills()
	var total model.Quantity
	for _, f := range fills {
		total += f.Quantity
	}
	assert.Equal(t, model.Quantity(5), total)

	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.PartiallyFilled, updates[len(updates)-1].Snapshot.Status)
}

func TestFOKRejectsWhenInsufficientLiquidity(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.FOK, Price: 102, Quantity: 10, ExchTimestamp: 1000})

	assert.Empty(t, m.DrainFills())
	updates := m.DrainOrderUpdates()
	assert.Len(t, updates, 1)
	assert.Equal(t, model.RejectedEvent, updates[0].Kind)
}

func TestFOKFillsWhenLiquiditySufficient(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.FOK, Price: 102, Quantity: 5, ExchTimestamp: 1000})

	fills := m.DrainFills()
	var total model.Quantity
	for _, f := range fills {
		total += f.Quantity
	}
	assert.Equal(t, model.Quantity(5), total)
}

func TestIOCDiscardsUnfilledRemainder(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.IOC, Price: 101, Quantity: 10, ExchTimestamp: 1000})

	fills := m.DrainFills()
	assert.Len(t, fills, 1)
	assert.Equal(t, model.Quantity(2), fills[0].Quantity)

	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.PartiallyFilled, updates[len(updates)-1].Snapshot.Status)
}

func TestIOCRejectedWhenNothingFills(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.IOC, Price: 90, Quantity: 1, ExchTimestamp: 1000})

	assert.Empty(t, m.DrainFills())
	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.RejectedEvent, updates[0].Kind)
}

func TestGTCRejectedWhenCrossing(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 101, Quantity: 1, ExchTimestamp: 1000})

	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.RejectedEvent, updates[0].Kind)
}

func TestGTCRestsAndTracksQueueEst(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 99, Quantity: 1, ExchTimestamp: 1000})

	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.Acknowledged, updates[0].Kind)
	assert.Equal(t, model.Active, updates[0].Snapshot.Status)
	assert.Equal(t, model.Quantity(2), updates[0].Snapshot.QueueEst)

	orders := m.Orders(1)
	assert.Len(t, orders, 1)
}

func TestQueueEstDecreasesOnBookReduction(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 99, Quantity: 1, ExchTimestamp: 1000})
	m.DrainOrderUpdates()

	assert.NoError(t, m.HandleBookUpdate(1, model.BookUpdate{Kind: model.Incremental, Side: model.Bid, Price: 99, Quantity: 0.5}))

	orders := m.Orders(1)
	assert.Less(t, orders[0].QueueEst, model.Quantity(2))
}

func TestQueueEstUnaffectedByIncrease(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 99, Quantity: 1, ExchTimestamp: 1000})
	m.DrainOrderUpdates()

	assert.NoError(t, m.HandleBookUpdate(1, model.BookUpdate{Kind: model.Incremental, Side: model.Bid, Price: 99, Quantity: 5}))

	orders := m.Orders(1)
	assert.Equal(t, model.Quantity(2), orders[0].QueueEst)
}

func TestTradeImprintFillsFrontOfQueueOrder(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 99, Quantity: 1, ExchTimestamp: 1000})
	m.DrainOrderUpdates()

	// Drain the book down to our level so queue_est reaches 0.
	assert.NoError(t, m.HandleBookUpdate(1, model.BookUpdate{Kind: model.Incremental, Side: model.Bid, Price: 99, Quantity: 0}))
	orders := m.Orders(1)
	assert.Equal(t, model.Quantity(0), orders[0].QueueEst)

	m.HandleTrade(1, model.Trade{AssetId: 1, ExchTimestamp: 2000, TakerSide: model.Sell, Price: 99, Quantity: 0.5})

	fills := m.DrainFills()
	assert.Len(t, fills, 1)
	assert.True(t, fills[0].IsMaker)
	assert.Equal(t, model.Quantity(0.5), fills[0].Quantity)
}

func TestTradeImprintIgnoresOrdersPlacedAfterTrade(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 99, Quantity: 1, ExchTimestamp: 5000})
	m.DrainOrderUpdates()
	m.HandleBookUpdate(1, model.BookUpdate{Kind: model.Incremental, Side: model.Bid, Price: 99, Quantity: 0})

	m.HandleTrade(1, model.Trade{AssetId: 1, ExchTimestamp: 4000, TakerSide: model.Sell, Price: 99, Quantity: 0.5})

	assert.Empty(t, m.DrainFills())
}

func TestCancelMarksTerminalAndClearInactiveOrdersSweeps(t *testing.T) {
	m := newTestMatcher()
	seedBook(t, m, 1)

	m.Submit(1, model.Order{OrderId: 1, AssetId: 1, Side: model.Bid, Type: model.Limit, TIF: model.GTC, Price: 99, Quantity: 1, ExchTimestamp: 1000})
	m.DrainOrderUpdates()

	m.Cancel(1, 1, 2000)
	updates := m.DrainOrderUpdates()
	assert.Equal(t, model.CancelledEvent, updates[0].Kind)

	assert.Len(t, m.Orders(1), 1, "order stays tracked until ClearInactiveOrders sweeps it")
	m.ClearInactiveOrders()
	assert.Empty(t, m.Orders(1))
}
