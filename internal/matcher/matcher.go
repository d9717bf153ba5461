// Package matcher implements the exchange matching engine (C3): per-asset
// order books, a taker/maker execution model (MARKET, LIMIT/FOK,
// LIMIT/IOC, LIMIT/GTC post-only), and the queue-position estimator for
// resting orders.
package matcher

import (
	"github.com/rs/zerolog"

	"backtestcore/internal/book"
	"backtestcore/internal/model"
	"backtestcore/internal/ticks"
)

type assetState struct {
	book      *book.OrderBook
	makerBid  map[model.Ticks]model.OrderId
	makerAsk  map[model.Ticks]model.OrderId
	activeIds map[model.OrderId]struct{}
}

// Matcher holds, per asset, the real order book and the maker book of our
// own resting orders, plus the single-writer outbound queues the engine
// drains after every dispatch.
type Matcher struct {
	configs map[model.AssetId]model.AssetConfig
	assets  map[model.AssetId]*assetState
	orders  map[model.OrderId]*model.Order // dense arena: every other structure holds only the OrderId

	responseLatencyUs model.Timestamp

	fills        []model.Fill
	orderUpdates []model.OrderUpdate

	logger zerolog.Logger
}

// New constructs a matcher for the given asset configs. responseLatencyUs
// is used to stamp Fill.LocalTimestamp and OrderUpdate.LocalTimestamp.
func New(configs map[model.AssetId]model.AssetConfig, responseLatencyUs model.Timestamp, logger zerolog.Logger) *Matcher {
	m := &Matcher{
		configs:           configs,
		assets:            make(map[model.AssetId]*assetState),
		orders:            make(map[model.OrderId]*model.Order),
		responseLatencyUs: responseLatencyUs,
		logger:            logger,
	}
	for assetId, cfg := range configs {
		m.assets[assetId] = &assetState{
			book:      book.New(cfg.TickSize),
			makerBid:  make(map[model.Ticks]model.OrderId),
			makerAsk:  make(map[model.Ticks]model.OrderId),
			activeIds: make(map[model.OrderId]struct{}),
		}
	}
	return m
}

// Book returns the exchange's true order book for an asset (the
// authoritative view, ahead of the latency-delayed local shadow book).
func (m *Matcher) Book(assetId model.AssetId) *book.OrderBook {
	return m.assets[assetId].book
}

// DrainFills returns and clears the accumulated fills since the last drain.
func (m *Matcher) DrainFills() []model.Fill {
	out := m.fills
	m.fills = nil
	return out
}

// DrainOrderUpdates returns and clears the accumulated order updates since
// the last drain.
func (m *Matcher) DrainOrderUpdates() []model.OrderUpdate {
	out := m.orderUpdates
	m.orderUpdates = nil
	return out
}

func (m *Matcher) emitFill(assetId model.AssetId, orderId model.OrderId, side model.TradeSide, price model.Price, qty model.Quantity, isMaker bool, exchTs model.Timestamp) {
	m.fills = append(m.fills, model.Fill{
		AssetId:        assetId,
		OrderId:        orderId,
		Side:           side,
		Price:          price,
		Quantity:       qty,
		IsMaker:        isMaker,
		ExchTimestamp:  exchTs,
		LocalTimestamp: exchTs + m.responseLatencyUs,
	})
}

func (m *Matcher) emitUpdate(assetId model.AssetId, orderId model.OrderId, kind model.OrderEventKind, snapshot model.Order, exchTs model.Timestamp) {
	m.orderUpdates = append(m.orderUpdates, model.OrderUpdate{
		AssetId:        assetId,
		OrderId:        orderId,
		Kind:           kind,
		Snapshot:       snapshot,
		ExchTimestamp:  exchTs,
		LocalTimestamp: exchTs + m.responseLatencyUs,
	})
}

// takerSide returns the aggressing trade side for an order, derived from
// the resting side it would occupy (Bid orders are buys, Ask orders are
// sells).
func takerSide(side model.Side) model.TradeSide {
	if side == model.Bid {
		return model.Buy
	}
	return model.Sell
}

func opposite(side model.Side) model.Side {
	if side == model.Bid {
		return model.Ask
	}
	return model.Bid
}

// Submit processes a newly-arrived order (local_timestamp/exch_timestamp
// and OrderId are already set by the engine). The order is registered in
// the arena before execution so fills/updates can always resolve it.
func (m *Matcher) Submit(assetId model.AssetId, order model.Order) {
	st := m.assets[assetId]
	ob := st.book

	stored := order
	m.orders[order.OrderId] = &stored
	st.activeIds[order.OrderId] = struct{}{}

	switch {
	case stored.Type == model.Market:
		m.executeMarket(assetId, st, ob, &stored)
	case stored.TIF == model.FOK:
		m.executeFOK(assetId, st, ob, &stored)
	case stored.TIF == model.IOC:
		m.executeIOC(assetId, st, ob, &stored)
	default: // LIMIT / GTC, post-only
		m.placeGTC(assetId, st, ob, &stored)
	}
}

func (m *Matcher) executeMarket(assetId model.AssetId, st *assetState, ob *book.OrderBook, order *model.Order) {
	m.sweep(assetId, ob, order, false, 0)
	if order.FilledQuantity >= order.Quantity {
		order.Status = model.Filled
	} else {
		order.Status = model.PartiallyFilled
	}
	m.emitFillUpdates(assetId, order)
}

func (m *Matcher) executeFOK(assetId model.AssetId, st *assetState, ob *book.OrderBook, order *model.Order) {
	oppSide := opposite(order.Side)
	available := availableWithinLimit(ob, oppSide, order.Price)
	if available < order.Quantity {
		order.Status = model.Rejected
		m.emitUpdate(assetId, order.OrderId, model.RejectedEvent, *order, order.ExchTimestamp)
		return
	}
	m.sweep(assetId, ob, order, true, order.Price)
	order.Status = model.Filled
	m.emitFillUpdates(assetId, order)
}

func (m *Matcher) executeIOC(assetId model.AssetId, st *assetState, ob *book.OrderBook, order *model.Order) {
	m.sweep(assetId, ob, order, true, order.Price)
	switch {
	case order.FilledQuantity == 0:
		order.Status = model.Rejected
		m.emitUpdate(assetId, order.OrderId, model.RejectedEvent, *order, order.ExchTimestamp)
		return
	case order.FilledQuantity < order.Quantity:
		order.Status = model.PartiallyFilled
	default:
		order.Status = model.Filled
	}
	m.emitFillUpdates(assetId, order)
}

func (m *Matcher) placeGTC(assetId model.AssetId, st *assetState, ob *book.OrderBook, order *model.Order) {
	bestBid, bestAsk := ob.BestBid(), ob.BestAsk()
	crosses := (order.Side == model.Bid && bestAsk != 0 && order.Price >= bestAsk) ||
		(order.Side == model.Ask && bestBid != 0 && order.Price <= bestBid)
	if crosses {
		order.Status = model.Rejected
		m.emitUpdate(assetId, order.OrderId, model.RejectedEvent, *order, order.ExchTimestamp)
		return
	}

	t := ticks.PriceToTicks(order.Price, ob.TickSize())
	order.QueueEst = ob.DepthAt(order.Side, t)
	order.Status = model.Active
	if order.Side == model.Bid {
		st.makerBid[t] = order.OrderId
	} else {
		st.makerAsk[t] = order.OrderId
	}
	m.emitUpdate(assetId, order.OrderId, model.Acknowledged, *order, order.ExchTimestamp)
}

// sweep walks the opposite side of the book from best outward, consuming
// min(level_depth, remaining) at each level. If hasLimit, levels worse than
// limitPrice are not consumed.
func (m *Matcher) sweep(assetId model.AssetId, ob *book.OrderBook, order *model.Order, hasLimit bool, limitPrice model.Price) {
	oppSide := opposite(order.Side)
	side := takerSide(order.Side)
	level := 0
	for order.Remaining() > 0 && level < ob.Levels(oppSide) {
		levelPrice := ob.PriceAtLevel(oppSide, level)
		if hasLimit && beyondLimit(oppSide, levelPrice, limitPrice) {
			break
		}
		levelQty := ob.DepthAtLevel(oppSide, level)
		consume := min(levelQty, order.Remaining())
		m.emitFill(assetId, order.OrderId, side, levelPrice, consume, false, order.ExchTimestamp)
		order.FilledQuantity += consume
		level++
	}
}

func beyondLimit(oppSide model.Side, levelPrice, limitPrice model.Price) bool {
	if oppSide == model.Ask {
		return levelPrice > limitPrice
	}
	return levelPrice < limitPrice
}

func availableWithinLimit(ob *book.OrderBook, oppSide model.Side, limitPrice model.Price) model.Quantity {
	var total model.Quantity
	for level := 0; level < ob.Levels(oppSide); level++ {
		price := ob.PriceAtLevel(oppSide, level)
		if beyondLimit(oppSide, price, limitPrice) {
			break
		}
		total += ob.DepthAtLevel(oppSide, level)
	}
	return total
}

// emitFillUpdates emits one OrderUpdate{Fill} per fill just produced for
// this order, per spec: "OrderUpdate{Fill} on every fill (partial or
// full) carrying the post-mutation snapshot".
func (m *Matcher) emitFillUpdates(assetId model.AssetId, order *model.Order) {
	for i := range m.fills {
		f := &m.fills[i]
		if f.OrderId == order.OrderId && f.AssetId == assetId {
			m.emitUpdate(assetId, order.OrderId, model.FillEvent, *order, f.ExchTimestamp)
		}
	}
}
