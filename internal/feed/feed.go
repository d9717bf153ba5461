// Package feed implements the market-data feed merge (C2): an n-way
// merge of per-asset book-update and trade sub-streams in strict
// exch_timestamp order.
package feed

import (
	"sort"

	"backtestcore/internal/model"
)

// Reader is the feed-reader contract external collaborators implement
// (CSV files, a live WebSocket collector, ...). Peek must not advance the
// stream; Next both returns and advances it.
type Reader interface {
	Peek() (model.Event, bool)
	Next() (model.Event, bool)
}

type assetStreams struct {
	assetId model.AssetId
	book    Reader
	trade   Reader
}

// MarketFeed merges k per-asset (book, trade) stream pairs into a single
// timestamp-ordered sequence.
type MarketFeed struct {
	streams []assetStreams
}

// New constructs an empty feed; assets are registered with AddAsset.
func New() *MarketFeed {
	return &MarketFeed{}
}

// AddAsset registers the book and trade sub-streams for one asset. Either
// reader may be nil if that sub-stream doesn't exist for this asset.
func (f *MarketFeed) AddAsset(assetId model.AssetId, bookReader, tradeReader Reader) {
	f.streams = append(f.streams, assetStreams{assetId: assetId, book: bookReader, trade: tradeReader})
	sort.Slice(f.streams, func(i, j int) bool { return f.streams[i].assetId < f.streams[j].assetId })
}

// candidateKind orders trade before book when timestamps and asset ids
// are otherwise tied.
const (
	kindTrade = 0
	kindBook  = 1
)

type candidate struct {
	found   bool
	ts      model.Timestamp
	assetId model.AssetId
	kind    int
	event   model.Event
	stream  Reader
}

// less implements the deterministic tie-break: (exch_timestamp, asset_id,
// sub-stream order), with trade preferred over book for the same asset.
func (c candidate) less(o candidate) bool {
	if c.ts != o.ts {
		return c.ts < o.ts
	}
	if c.assetId != o.assetId {
		return c.assetId < o.assetId
	}
	return c.kind < o.kind
}

func (f *MarketFeed) best() candidate {
	var best candidate
	for _, s := range f.streams {
		if s.trade != nil {
			if ev, ok := s.trade.Peek(); ok {
				cand := candidate{found: true, ts: ev.Timestamp(), assetId: s.assetId, kind: kindTrade, event: ev, stream: s.trade}
				if !best.found || cand.less(best) {
					best = cand
				}
			}
		}
		if s.book != nil {
			if ev, ok := s.book.Peek(); ok {
				cand := candidate{found: true, ts: ev.Timestamp(), assetId: s.assetId, kind: kindBook, event: ev, stream: s.book}
				if !best.found || cand.less(best) {
					best = cand
				}
			}
		}
	}
	return best
}

// PeekTimestamp returns the minimum exch_timestamp across all
// non-exhausted sub-streams, and false if every stream is exhausted.
func (f *MarketFeed) PeekTimestamp() (model.Timestamp, bool) {
	best := f.best()
	return best.ts, best.found
}

// NextEvent removes and returns the event with the smallest exch_timestamp
// across all sub-streams, applying the deterministic tie-break.
func (f *MarketFeed) NextEvent() (model.AssetId, model.Event, bool) {
	best := f.best()
	if !best.found {
		return 0, model.Event{}, false
	}
	_, _ = best.stream.Next()
	return best.assetId, best.event, true
}
