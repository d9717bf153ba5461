package book

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backtestcore/internal/model"
)

func upd(side model.Side, price, qty float64) model.BookUpdate {
	return model.BookUpdate{Kind: model.Incremental, Side: side, Price: price, Quantity: qty}
}

func TestApplyUpdateBasic(t *testing.T) {
	b := New(1.0)
	assert.NoError(t, b.ApplyUpdate(upd(model.Ask, 101.0, 2.0)))
	assert.NoError(t, b.ApplyUpdate(upd(model.Ask, 102.0, 3.0)))
	assert.NoError(t, b.ApplyUpdate(upd(model.Bid, 99.0, 1.0)))

	assert.Equal(t, 101.0, b.BestAsk())
	assert.Equal(t, 99.0, b.BestBid())
	assert.Equal(t, 100.0, b.MidPrice())
	assert.Equal(t, 2.0, b.DepthAtPrice(model.Ask, 101.0))
	assert.Equal(t, 101.0, b.PriceAtLevel(model.Ask, 0))
	assert.Equal(t, 102.0, b.PriceAtLevel(model.Ask, 1))
	assert.Equal(t, 0.0, b.PriceAtLevel(model.Ask, 2))
}

func TestApplyUpdateDeletesOnZeroQuantity(t *testing.T) {
	b := New(1.0)
	assert.NoError(t, b.ApplyUpdate(upd(model.Bid, 99.0, 1.0)))
	assert.Equal(t, 99.0, b.BestBid())
	assert.NoError(t, b.ApplyUpdate(upd(model.Bid, 99.0, 0)))
	assert.Equal(t, 0.0, b.BestBid())
}

func TestApplyUpdateRejectsInvalid(t *testing.T) {
	b := New(1.0)
	assert.ErrorIs(t, b.ApplyUpdate(upd(model.Bid, 0, 1.0)), ErrInvalidBookUpdate)
	assert.ErrorIs(t, b.ApplyUpdate(upd(model.Bid, 99.0, -1.0)), ErrInvalidBookUpdate)
}

func TestSnapshotAfterIncrementalClearsBook(t *testing.T) {
	b := New(1.0)
	assert.NoError(t, b.ApplyUpdate(upd(model.Bid, 99.0, 1.0)))
	assert.NoError(t, b.ApplyUpdate(upd(model.Ask, 101.0, 1.0)))

	snap := upd(model.Bid, 98.0, 5.0)
	snap.Kind = model.Snapshot
	assert.NoError(t, b.ApplyUpdate(snap))

	assert.Equal(t, 98.0, b.BestBid())
	assert.Equal(t, 0.0, b.BestAsk(), "ask side must be cleared by the snapshot")
}

func TestSnapshotIdempotent(t *testing.T) {
	b1 := New(1.0)
	snap := upd(model.Bid, 99.0, 5.0)
	snap.Kind = model.Snapshot
	assert.NoError(t, b1.ApplyUpdate(snap))
	assert.NoError(t, b1.ApplyUpdate(snap))

	b2 := New(1.0)
	assert.NoError(t, b2.ApplyUpdate(snap))

	assert.Equal(t, b2.BestBid(), b1.BestBid())
	assert.Equal(t, b2.DepthAtPrice(model.Bid, 99.0), b1.DepthAtPrice(model.Bid, 99.0))
}
