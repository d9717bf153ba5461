package engine

import (
	"backtestcore/internal/model"
)

// Elapse advances the simulated clock by deltaUs, interleaving every
// scheduled DelayedAction due in the window with every feed event due in
// the window, in strict timestamp order. It always returns true and always
// leaves CurrentTime at the end of the window, even once the feed is
// exhausted; feed exhaustion is reported by Drained, not by this return
// value.
func (e *BacktestEngine) Elapse(deltaUs model.Timestamp) bool {
	nextIntervalUs := e.currentTimeUs + deltaUs

	for e.currentTimeUs < nextIntervalUs {
		nextEventUs, hasEvent := e.feed.PeekTimestamp()
		if !hasEvent {
			nextEventUs = ^model.Timestamp(0)
		}
		intervalEndUs := min(nextEventUs, nextIntervalUs)

		for {
			batch := e.scheduler.PopBefore(intervalEndUs)
			if len(batch) == 0 {
				break
			}
			for _, action := range batch {
				e.currentTimeUs = action.ExecuteTime
				e.dispatch(action)
				e.drainExchangeOutput()
			}
		}

		if hasEvent && nextEventUs < nextIntervalUs {
			assetId, ev, ok := e.feed.NextEvent()
			if ok {
				e.handleFeedEvent(assetId, ev)
			}
			e.currentTimeUs = nextEventUs
		} else {
			e.currentTimeUs = nextIntervalUs
		}
	}

	e.currentTimeUs = nextIntervalUs
	return true
}

func (e *BacktestEngine) dispatch(action model.DelayedAction) {
	switch action.Kind {
	case model.SubmitBuy, model.SubmitSell:
		e.matcher.Submit(action.AssetId, action.Order)
	case model.Cancel:
		e.matcher.Cancel(action.AssetId, action.OrderId, e.currentTimeUs)
	case model.LocalProcessFill:
		e.processFillLocal(action.AssetId, action.Fill)
	case model.LocalBookUpdate:
		e.processBookUpdateLocal(action.AssetId, action.BookUpdate)
	case model.LocalOrderUpdate:
		e.processOrderUpdateLocal(action.AssetId, action.UpdateKind, action.OrderId, action.Snapshot)
	}
}

// drainExchangeOutput pulls every fill and order update the matcher has
// produced since the last drain and re-schedules each as a local-origin
// DelayedAction at its own LocalTimestamp, simulating the response
// latency back to the strategy's shadow view.
func (e *BacktestEngine) drainExchangeOutput() {
	for _, fill := range e.matcher.DrainFills() {
		e.scheduler.Push(fill.LocalTimestamp, model.DelayedAction{
			Kind:        model.LocalProcessFill,
			AssetId:     fill.AssetId,
			Fill:        fill,
			ExecuteTime: fill.LocalTimestamp,
		})
	}
	for _, upd := range e.matcher.DrainOrderUpdates() {
		e.scheduler.Push(upd.LocalTimestamp, model.DelayedAction{
			Kind:        model.LocalOrderUpdate,
			AssetId:     upd.AssetId,
			OrderId:     upd.OrderId,
			UpdateKind:  upd.Kind,
			Snapshot:    upd.Snapshot,
			ExecuteTime: upd.LocalTimestamp,
		})
	}
}

// handleFeedEvent applies a book update to the exchange's true book
// synchronously (the matcher's queue-position estimator needs to see it
// immediately), while the local shadow book only sees it after
// market_feed_latency, via a scheduled DelayedAction. A trade print is
// handled synchronously too: HandleTrade may fill a resting order on the
// exchange side, and the resulting fills and order updates reach the local
// view only after order_response_latency.
func (e *BacktestEngine) handleFeedEvent(assetId model.AssetId, ev model.Event) {
	switch ev.Kind {
	case model.TradeEvent:
		e.matcher.HandleTrade(assetId, ev.Trade)
		e.drainExchangeOutput()
	case model.BookUpdateEvent:
		if err := e.matcher.HandleBookUpdate(assetId, ev.BookUpdate); err != nil {
			e.logger.Warn().Err(err).Int("asset", assetId).Msg("exchange book update rejected")
			return
		}
		e.scheduler.Push(ev.BookUpdate.LocalTimestamp, model.DelayedAction{
			Kind:        model.LocalBookUpdate,
			AssetId:     assetId,
			BookUpdate:  ev.BookUpdate,
			ExecuteTime: ev.BookUpdate.LocalTimestamp,
		})
	}
}
