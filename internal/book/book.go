// Package book implements the per-asset limit order book (C1): two
// price-level maps keyed by integer Ticks, backed by a B-tree so that
// best-of-book access stays O(log n) without the O(n log n) cache rebuild
// a plain hash map would need (spec §9's "persistent ordered map"
// alternative).
package book

import (
	"errors"

	"github.com/tidwall/btree"

	"backtestcore/internal/model"
	"backtestcore/internal/ticks"
)

// ErrInvalidBookUpdate is returned by ApplyUpdate for a non-positive price
// or a negative quantity.
var ErrInvalidBookUpdate = errors.New("invalid book update: price must be positive and quantity non-negative")

// level is one price level: an integer tick and the resting quantity
// there. Quantity is never part of tree ordering, only Ticks is.
type level struct {
	Ticks    model.Ticks
	Quantity model.Quantity
}

// OrderBook holds one asset's bid and ask sides.
type OrderBook struct {
	tickSize model.Price

	bids *btree.BTreeG[level] // ordered best (highest) first
	asks *btree.BTreeG[level] // ordered best (lowest) first

	lastKind model.BookUpdateKind

	bidsDirty   bool
	asksDirty   bool
	sortedBids  []level
	sortedAsks  []level
}

// New constructs an empty order book for an asset with the given tick size.
func New(tickSize model.Price) *OrderBook {
	bids := btree.NewBTreeG(func(a, b level) bool { return a.Ticks > b.Ticks })
	asks := btree.NewBTreeG(func(a, b level) bool { return a.Ticks < b.Ticks })
	return &OrderBook{
		tickSize: tickSize,
		bids:     bids,
		asks:     asks,
	}
}

func (b *OrderBook) levelsFor(side model.Side) *btree.BTreeG[level] {
	if side == model.Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) markDirty(side model.Side) {
	if side == model.Bid {
		b.bidsDirty = true
	} else {
		b.asksDirty = true
	}
}

// ApplyUpdate validates and applies a single BookUpdate. A Snapshot update
// arriving after any Incremental clears the whole book first. A quantity
// of 0 deletes the level.
func (b *OrderBook) ApplyUpdate(u model.BookUpdate) error {
	if u.Price <= 0 || u.Quantity < 0 {
		return ErrInvalidBookUpdate
	}

	if u.Kind == model.Snapshot && b.lastKind == model.Incremental {
		b.bids.Clear()
		b.asks.Clear()
		b.bidsDirty = true
		b.asksDirty = true
	}
	b.lastKind = u.Kind

	t := ticks.PriceToTicks(u.Price, b.tickSize)
	levels := b.levelsFor(u.Side)
	if u.Quantity == 0 {
		levels.Delete(level{Ticks: t})
	} else {
		levels.Set(level{Ticks: t, Quantity: u.Quantity})
	}
	b.markDirty(u.Side)
	return nil
}

// BestBid returns the best bid price, or 0 if the bid side is empty.
func (b *OrderBook) BestBid() model.Price {
	if lvl, ok := b.bids.Min(); ok {
		return ticks.TicksToPrice(lvl.Ticks, b.tickSize)
	}
	return 0
}

// BestAsk returns the best ask price, or 0 if the ask side is empty.
func (b *OrderBook) BestAsk() model.Price {
	if lvl, ok := b.asks.Min(); ok {
		return ticks.TicksToPrice(lvl.Ticks, b.tickSize)
	}
	return 0
}

// MidPrice returns (BestBid+BestAsk)/2, or 0 if either side is empty.
func (b *OrderBook) MidPrice() model.Price {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// DepthAt returns the resting quantity at an exact tick, or 0.
func (b *OrderBook) DepthAt(side model.Side, t model.Ticks) model.Quantity {
	if lvl, ok := b.levelsFor(side).Get(level{Ticks: t}); ok {
		return lvl.Quantity
	}
	return 0
}

// DepthAtPrice is DepthAt with a natural-unit price.
func (b *OrderBook) DepthAtPrice(side model.Side, price model.Price) model.Quantity {
	return b.DepthAt(side, ticks.PriceToTicks(price, b.tickSize))
}

// sorted returns the best-first materialised slice for a side, rebuilding
// the cache if it was invalidated by a mutation since the last call.
func (b *OrderBook) sorted(side model.Side) []level {
	if side == model.Bid {
		if b.bidsDirty {
			b.sortedBids = b.sortedBids[:0]
			b.bids.Scan(func(lvl level) bool {
				b.sortedBids = append(b.sortedBids, lvl)
				return true
			})
			b.bidsDirty = false
		}
		return b.sortedBids
	}
	if b.asksDirty {
		b.sortedAsks = b.sortedAsks[:0]
		b.asks.Scan(func(lvl level) bool {
			b.sortedAsks = append(b.sortedAsks, lvl)
			return true
		})
		b.asksDirty = false
	}
	return b.sortedAsks
}

// DepthAtLevel returns the quantity at the 0-based, best-first level
// index, or 0 if out of range.
func (b *OrderBook) DepthAtLevel(side model.Side, lvl int) model.Quantity {
	s := b.sorted(side)
	if lvl < 0 || lvl >= len(s) {
		return 0
	}
	return s[lvl].Quantity
}

// PriceAtLevel returns the price at the 0-based, best-first level index,
// or 0 if out of range.
func (b *OrderBook) PriceAtLevel(side model.Side, lvl int) model.Price {
	s := b.sorted(side)
	if lvl < 0 || lvl >= len(s) {
		return 0
	}
	return ticks.TicksToPrice(s[lvl].Ticks, b.tickSize)
}

// Levels returns the number of resting price levels on a side.
func (b *OrderBook) Levels(side model.Side) int {
	return b.levelsFor(side).Len()
}

// TickSize returns the asset's tick size this book was built with.
func (b *OrderBook) TickSize() model.Price {
	return b.tickSize
}
