package engine

import "backtestcore/internal/model"

// Depth returns the local (latency-delayed) level-1 view of an asset's
// order book.
func (e *BacktestEngine) Depth(assetId model.AssetId) model.Depth {
	st := e.assets[assetId]
	ob := st.localBook
	bestBid, bestAsk := ob.BestBid(), ob.BestAsk()
	return model.Depth{
		BestBid:  bestBid,
		BestAsk:  bestAsk,
		BidQty:   ob.DepthAtPrice(model.Bid, bestBid),
		AskQty:   ob.DepthAtPrice(model.Ask, bestAsk),
		BidDepth: ob.Levels(model.Bid),
		AskDepth: ob.Levels(model.Ask),
		TickSize: st.config.TickSize,
		LotSize:  st.config.LotSize,
	}
}

// Orders returns the local snapshot of every still-active order for an
// asset (orders the local view has seen acknowledged and not yet seen
// reach a terminal state, as of the local view's latency).
func (e *BacktestEngine) Orders(assetId model.AssetId) []model.Order {
	var out []model.Order
	for _, o := range e.activeOrders {
		if o.AssetId == assetId && !o.Status.IsTerminal() {
			out = append(out, o)
		}
	}
	return out
}

// Position returns the local net position for an asset.
func (e *BacktestEngine) Position(assetId model.AssetId) model.Quantity {
	st, ok := e.assets[assetId]
	if !ok {
		return 0
	}
	return st.position
}

// Cash returns the local cash balance.
func (e *BacktestEngine) Cash() model.Price {
	return e.localCash
}

// Equity returns cash plus the mark-to-mid value of every local position.
func (e *BacktestEngine) Equity() model.Price {
	value := e.localCash
	for _, st := range e.assets {
		if st.position != 0 {
			value += st.position * st.localBook.MidPrice()
		}
	}
	return value
}

// SubmitBuy validates and schedules a buy order for exchange arrival
// after order_entry_latency. Validation errors are returned immediately
// and the order never enters the scheduler.
func (e *BacktestEngine) SubmitBuy(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error) {
	return e.submit(assetId, model.Bid, price, quantity, tif, orderType)
}

// SubmitSell validates and schedules a sell order for exchange arrival
// after order_entry_latency.
func (e *BacktestEngine) SubmitSell(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error) {
	return e.submit(assetId, model.Ask, price, quantity, tif, orderType)
}

func (e *BacktestEngine) submit(assetId model.AssetId, side model.Side, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error) {
	if quantity <= 0 {
		return 0, model.ErrInvalidOrder
	}
	if orderType == model.Limit && price <= 0 {
		return 0, model.ErrInvalidOrder
	}

	orderId := e.idgen.Next()
	exchTs := e.currentTimeUs + e.cfg.OrderEntryLatencyUs
	order := model.Order{
		OrderId:        orderId,
		AssetId:        assetId,
		Side:           side,
		Price:          price,
		Quantity:       quantity,
		Type:           orderType,
		TIF:            tif,
		Status:         model.New,
		LocalTimestamp: e.currentTimeUs,
		ExchTimestamp:  exchTs,
	}

	kind := model.SubmitBuy
	if side == model.Ask {
		kind = model.SubmitSell
	}
	e.scheduler.Push(exchTs, model.DelayedAction{
		Kind:        kind,
		AssetId:     assetId,
		Order:       order,
		ExecuteTime: exchTs,
	})

	e.logger.Debug().Uint64("order", orderId).Int("asset", assetId).Msg("order submitted to exchange")
	return orderId, nil
}

// Cancel requests cancellation of a resting order. Per the core's
// latency model, the request reaches the exchange after
// order_entry_latency; both the scheduler key and the DelayedAction's
// ExecuteTime use that same value, so the cancel is neither visible to
// the local view nor executed on the exchange before it has actually
// arrived there.
func (e *BacktestEngine) Cancel(assetId model.AssetId, orderId model.OrderId) {
	execTime := e.currentTimeUs + e.cfg.OrderEntryLatencyUs
	e.scheduler.Push(execTime, model.DelayedAction{
		Kind:        model.Cancel,
		AssetId:     assetId,
		OrderId:     orderId,
		ExecuteTime: execTime,
	})
}

// Drained reports whether the feed has no more events and the scheduler
// has nothing left pending — the main driver loop's "feed exhaustion"
// stop condition.
func (e *BacktestEngine) Drained() bool {
	_, hasEvent := e.feed.PeekTimestamp()
	return !hasEvent && e.scheduler.Len() == 0
}

// ClearInactiveOrders sweeps terminal orders from both the exchange
// matcher and the local active-orders view.
func (e *BacktestEngine) ClearInactiveOrders() {
	e.matcher.ClearInactiveOrders()
	for id, o := range e.activeOrders {
		if o.Status.IsTerminal() {
			delete(e.activeOrders, id)
		}
	}
}
