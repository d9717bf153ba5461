package matcher

import (
	"backtestcore/internal/model"
	"backtestcore/internal/ticks"
)

// HandleTrade fills a resting order by trade imprint: the top order on the
// side opposite the trade's taker side, at the trade price, is filled if
// it was placed strictly before the trade and is at the front of its queue
// (queue_est == 0).
func (m *Matcher) HandleTrade(assetId model.AssetId, trade model.Trade) {
	st := m.assets[assetId]

	restingSide := model.Ask
	if trade.TakerSide == model.Sell {
		restingSide = model.Bid
	}
	maker := st.makerAsk
	if restingSide == model.Bid {
		maker = st.makerBid
	}

	t := ticks.PriceToTicks(trade.Price, st.book.TickSize())
	orderId, ok := maker[t]
	if !ok {
		return
	}
	order := m.orders[orderId]
	if order.ExchTimestamp >= trade.ExchTimestamp {
		return
	}
	if order.QueueEst != 0 || order.Remaining() <= 0 {
		return
	}

	fillQty := min(trade.Quantity, order.Remaining())
	order.FilledQuantity += fillQty
	if order.FilledQuantity >= order.Quantity {
		order.Status = model.Filled
	} else {
		order.Status = model.PartiallyFilled
	}

	side := takerSide(order.Side)
	m.emitFill(assetId, order.OrderId, side, trade.Price, fillQty, true, trade.ExchTimestamp)
	m.emitUpdate(assetId, order.OrderId, model.FillEvent, *order, trade.ExchTimestamp)
}
