package matcher

import "backtestcore/internal/model"

// Cancel marks a resting order cancelled. The order is left in place in
// the maker book and arena until ClearInactiveOrders sweeps it; this
// mirrors the exchange's own bookkeeping where a cancel is acknowledged
// immediately but the slot is reclaimed lazily.
func (m *Matcher) Cancel(assetId model.AssetId, orderId model.OrderId, now model.Timestamp) {
	order, ok := m.orders[orderId]
	if !ok || order.Status.IsTerminal() {
		return
	}
	order.Status = model.Cancelled
	m.emitUpdate(assetId, orderId, model.CancelledEvent, *order, now)
}

// ClearInactiveOrders sweeps every asset's maker book and order arena,
// reclaiming terminal orders.
func (m *Matcher) ClearInactiveOrders() {
	for _, st := range m.assets {
		for t, orderId := range st.makerBid {
			if order, ok := m.orders[orderId]; ok && order.Status.IsTerminal() {
				delete(st.makerBid, t)
			}
		}
		for t, orderId := range st.makerAsk {
			if order, ok := m.orders[orderId]; ok && order.Status.IsTerminal() {
				delete(st.makerAsk, t)
			}
		}
		for orderId := range st.activeIds {
			order, ok := m.orders[orderId]
			if !ok || order.Status.IsTerminal() {
				delete(st.activeIds, orderId)
				delete(m.orders, orderId)
			}
		}
	}
}

// Orders returns a snapshot of every order still tracked for an asset
// (active or pending cleanup), in no particular order.
func (m *Matcher) Orders(assetId model.AssetId) []model.Order {
	st, ok := m.assets[assetId]
	if !ok {
		return nil
	}
	out := make([]model.Order, 0, len(st.activeIds))
	for orderId := range st.activeIds {
		if order, ok := m.orders[orderId]; ok {
			out = append(out, *order)
		}
	}
	return out
}
