package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"backtestcore/internal/feed"
	"backtestcore/internal/model"
)

type sliceReader struct {
	events []model.Event
	idx    int
}

func (s *sliceReader) Peek() (model.Event, bool) {
	if s == nil || s.idx >= len(s.events) {
		return model.Event{}, false
	}
	return s.events[s.idx], true
}

func (s *sliceReader) Next() (model.Event, bool) {
	ev, ok := s.Peek()
	if ok {
		s.idx++
	}
	return ev, ok
}

func bookUpd(ts model.Timestamp, side model.Side, price, qty float64) model.Event {
	return model.Event{Kind: model.BookUpdateEvent, BookUpdate: model.BookUpdate{
		AssetId: 1, ExchTimestamp: ts, LocalTimestamp: ts + 100,
		Kind: model.Incremental, Side: side, Price: price, Quantity: qty,
	}}
}

func newTestEngine(bookEvents []model.Event) *BacktestEngine {
	configs := map[model.AssetId]model.AssetConfig{
		1: {Name: "TEST", TickSize: 1.0, LotSize: 0.01, MakerFee: 0, TakerFee: 0.001},
	}
	readers := map[model.AssetId][2]feed.Reader{
		1: {&sliceReader{events: bookEvents}, nil},
	}
	cfg := Config{OrderEntryLatencyUs: 1000, OrderResponseLatencyUs: 500, MarketFeedLatencyUs: 100, StartingCash: 10000}
	return New(configs, readers, cfg, zerolog.Nop())
}

func TestElapseAppliesFeedEventsAndAdvancesClock(t *testing.T) {
	e := newTestEngine([]model.Event{
		bookUpd(100, model.Ask, 101, 2),
		bookUpd(200, model.Bid, 99, 3),
	})

	e.Elapse(50)
	assert.Equal(t, model.Timestamp(50), e.CurrentTime())

	e.Elapse(500)
	assert.Equal(t, model.Timestamp(550), e.CurrentTime())
	// local book sees the update only after market_feed_latency (100us)
	assert.Equal(t, model.Price(101), e.Depth(1).BestAsk)
}

func TestSubmitBuyMarketFillsAndUpdatesLocalState(t *testing.T) {
	e := newTestEngine([]model.Event{
		bookUpd(10, model.Ask, 101, 2),
		bookUpd(20, model.Bid, 99, 3),
	})

	e.Elapse(5000) // let the book populate on the exchange side

	_, err := e.SubmitBuy(1, 0, 1.0, model.GTC, model.Market)
	assert.NoError(t, err)

	e.Elapse(5000)

	assert.Equal(t, model.Quantity(1.0), e.Position(1))
	assert.Less(t, e.Cash(), model.Price(10000), "cash decreases after a buy fill")
}

func TestSubmitBuyLimitValidatesSynchronously(t *testing.T) {
	e := newTestEngine(nil)
	_, err := e.SubmitBuy(1, 0, 1.0, model.GTC, model.Limit)
	assert.ErrorIs(t, err, model.ErrInvalidOrder)

	_, err = e.SubmitBuy(1, 100, 0, model.GTC, model.Limit)
	assert.ErrorIs(t, err, model.ErrInvalidOrder)
}

func TestCancelOrderReachesExchangeAfterEntryLatency(t *testing.T) {
	e := newTestEngine([]model.Event{bookUpd(10, model.Bid, 50, 5)})
	e.Elapse(1000)

	orderId, err := e.SubmitBuy(1, 50, 1.0, model.GTC, model.Limit)
	assert.NoError(t, err)

	e.Elapse(5000)
	assert.Len(t, e.Orders(1), 1)

	e.Cancel(1, orderId)
	e.Elapse(5000)
	assert.Empty(t, e.Orders(1))
}
