package matcher

import (
	"math"

	"backtestcore/internal/model"
	"backtestcore/internal/ticks"
)

// f is the saturating weight function used by the queue-position
// estimator: f(x) = ln(1+x).
func f(x model.Quantity) float64 {
	return math.Log(1 + float64(x))
}

// HandleBookUpdate advances the queue-position estimate of any resting
// order at the update's price before applying the update to the exchange
// book. The estimate only moves on reductions (deltaQ < 0): trade prints
// at our own level are handled separately by HandleTrade, which never
// changes queue_est.
func (m *Matcher) HandleBookUpdate(assetId model.AssetId, update model.BookUpdate) error {
	st := m.assets[assetId]
	ob := st.book

	Qn := ob.DepthAtPrice(update.Side, update.Price)
	deltaQ := update.Quantity - Qn

	if deltaQ < 0 {
		t := ticks.PriceToTicks(update.Price, ob.TickSize())
		maker := st.makerBid
		if update.Side == model.Ask {
			maker = st.makerAsk
		}
		if orderId, ok := maker[t]; ok {
			order := m.orders[orderId]
			S := order.Remaining()
			Vn := order.QueueEst
			fVn := f(Vn)
			var pn float64
			if fVn > 0 {
				pn = fVn / (fVn + f(max(Qn-S-Vn, 0)))
			}
			order.QueueEst = max(Vn+model.Quantity(pn)*deltaQ, 0)
		}
	}

	return ob.ApplyUpdate(update)
}
