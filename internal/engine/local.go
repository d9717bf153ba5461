package engine

import "backtestcore/internal/model"

// processFillLocal updates position, trading stats, and cash for a fill
// that has just reached the local (latency-delayed) view.
func (e *BacktestEngine) processFillLocal(assetId model.AssetId, fill model.Fill) {
	st := e.assets[assetId]

	signedQty := fill.Quantity
	if fill.Side == model.Sell {
		signedQty = -fill.Quantity
	}
	st.position += signedQty
	st.numTrades++
	st.tradingVolume += fill.Quantity
	st.tradingValue += fill.Quantity * fill.Price

	feeRate := st.config.TakerFee
	if fill.IsMaker {
		feeRate = st.config.MakerFee
	}
	fee := fill.Quantity * fill.Price * feeRate
	e.localCash += -signedQty*fill.Price - fee

	e.logger.Debug().
		Int("asset", assetId).
		Float64("price", fill.Price).
		Float64("qty", fill.Quantity).
		Bool("maker", fill.IsMaker).
		Msg("fill processed locally")

	if e.onFill != nil {
		e.onFill(assetId, fill)
	}
}

// processBookUpdateLocal applies a feed book update to the local shadow
// book, delayed by market_feed_latency relative to the exchange's view.
func (e *BacktestEngine) processBookUpdateLocal(assetId model.AssetId, update model.BookUpdate) {
	if err := e.assets[assetId].localBook.ApplyUpdate(update); err != nil {
		e.logger.Warn().Err(err).Int("asset", assetId).Msg("local book update rejected")
	}
}

// processOrderUpdateLocal mirrors an exchange-side order transition into
// the local active-orders view, delayed by order_response_latency.
func (e *BacktestEngine) processOrderUpdateLocal(assetId model.AssetId, kind model.OrderEventKind, orderId model.OrderId, snapshot model.Order) {
	switch kind {
	case model.Acknowledged:
		e.activeOrders[orderId] = snapshot
	case model.CancelledEvent:
		delete(e.activeOrders, orderId)
	case model.FillEvent:
		e.activeOrders[orderId] = snapshot
	case model.RejectedEvent:
		// Rejections never entered the local active-orders view; nothing to do.
	}

	if e.onOrderUpdate != nil {
		e.onOrderUpdate(assetId, model.OrderUpdate{
			AssetId:  assetId,
			OrderId:  orderId,
			Kind:     kind,
			Snapshot: snapshot,
		})
	}
}
