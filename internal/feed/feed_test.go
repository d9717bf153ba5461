package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backtestcore/internal/model"
)

type sliceReader struct {
	events []model.Event
	idx    int
}

func (s *sliceReader) Peek() (model.Event, bool) {
	if s.idx >= len(s.events) {
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

func tradeAt(assetId model.AssetId, ts model.Timestamp) model.Event {
	return model.Event{Kind: model.TradeEvent, Trade: model.Trade{AssetId: assetId, ExchTimestamp: ts}}
}

func bookAt(assetId model.AssetId, ts model.Timestamp) model.Event {
	return model.Event{Kind: model.BookUpdateEvent, BookUpdate: model.BookUpdate{AssetId: assetId, ExchTimestamp: ts}}
}

func TestMarketFeedOrdersByTimestamp(t *testing.T) {
	f := New()
	f.AddAsset(1, &sliceReader{events: []model.Event{bookAt(1, 30)}}, &sliceReader{events: []model.Event{tradeAt(1, 10)}})

	ts, ok := f.PeekTimestamp()
	assert.True(t, ok)
	assert.Equal(t, model.Timestamp(10), ts)

	assetId, ev, ok := f.NextEvent()
	assert.True(t, ok)
	assert.Equal(t, 1, assetId)
	assert.Equal(t, model.TradeEvent, ev.Kind)

	assetId, ev, ok = f.NextEvent()
	assert.True(t, ok)
	assert.Equal(t, 1, assetId)
	assert.Equal(t, model.BookUpdateEvent, ev.Kind)

	_, _, ok = f.NextEvent()
	assert.False(t, ok)
}

func TestMarketFeedTradeBeforeBookOnTie(t *testing.T) {
	f := New()
	f.AddAsset(1, &sliceReader{events: []model.Event{bookAt(1, 100)}}, &sliceReader{events: []model.Event{tradeAt(1, 100)}})

	_, ev, ok := f.NextEvent()
	assert.True(t, ok)
	assert.Equal(t, model.TradeEvent, ev.Kind, "trade must be dispatched before book update at equal timestamps")
}

func TestMarketFeedAssetIdTieBreak(t *testing.T) {
	f := New()
	f.AddAsset(2, &sliceReader{events: []model.Event{bookAt(2, 100)}}, nil)
	f.AddAsset(1, &sliceReader{events: []model.Event{bookAt(1, 100)}}, nil)

	assetId, _, ok := f.NextEvent()
	assert.True(t, ok)
	assert.Equal(t, 1, assetId, "lower asset id wins ties over a higher asset id's different sub-stream")
}
