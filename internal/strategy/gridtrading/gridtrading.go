// Package gridtrading implements a symmetric grid-of-limit-orders sample
// strategy, driven entirely through a backtest engine's public API.
package gridtrading

import (
	"math"

	"github.com/rs/zerolog"

	"backtestcore/internal/config"
	"backtestcore/internal/model"
	"backtestcore/internal/ticks"
)

// Engine is the subset of BacktestEngine's public API the strategy
// drives itself through.
type Engine interface {
	Depth(assetId model.AssetId) model.Depth
	Position(assetId model.AssetId) model.Quantity
	Orders(assetId model.AssetId) []model.Order
	SubmitBuy(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error)
	SubmitSell(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error)
	Cancel(assetId model.AssetId, orderId model.OrderId)
}

// Strategy quotes gridNum resting bids and gridNum resting asks spaced
// gridInterval ticks apart, starting halfSpread ticks off the mid price.
// Quoting stops on one side once the local position reaches
// positionLimit in that direction.
type Strategy struct {
	assetId          model.AssetId
	gridNum          int
	gridInterval     model.Ticks
	halfSpread       model.Ticks
	positionLimit    model.Quantity
	notionalOrderQty model.Quantity
	logger           zerolog.Logger
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// New builds a Strategy for assetId from a loaded grid-trading
// configuration.
func New(assetId model.AssetId, cfg config.GridTradingConfig, logger zerolog.Logger) *Strategy {
	return &Strategy{
		assetId:          assetId,
		gridNum:          cfg.GridNum,
		gridInterval:     cfg.GridInterval,
		halfSpread:       cfg.HalfSpread,
		positionLimit:    cfg.PositionLimit,
		notionalOrderQty: cfg.NotionalOrderQty,
		logger:           logger,
	}
}

// OnElapse re-quotes the grid against the engine's current local view.
// Called once per main-loop Elapse step.
func (s *Strategy) OnElapse(engine Engine) {
	depth := engine.Depth(s.assetId)
	position := engine.Position(s.assetId)
	orders := engine.Orders(s.assetId)

	tickSize := depth.TickSize
	lotSize := depth.LotSize
	bestBid, bestAsk := depth.BestBid, depth.BestAsk

	if bestBid <= 0 || bestAsk <= 0 || !isFinite(bestBid) || !isFinite(bestAsk) {
		s.logger.Debug().Int("asset", s.assetId).Float64("bid", bestBid).Float64("ask", bestAsk).
			Msg("skipping grid setup: invalid bid/ask")
		return
	}

	mid := (bestBid + bestAsk) / 2.0
	step := float64(s.gridInterval) * tickSize

	newBidTicks := make(map[model.Ticks]struct{})
	if position < s.positionLimit {
		bidPrice := math.Floor((mid-float64(s.halfSpread)*tickSize)/step) * step
		for i := 0; i < s.gridNum; i++ {
			newBidTicks[ticks.PriceToTicks(bidPrice, tickSize)] = struct{}{}
			bidPrice -= step
		}
	}
	newAskTicks := make(map[model.Ticks]struct{})
	if position > -s.positionLimit {
		askPrice := math.Ceil((mid+float64(s.halfSpread)*tickSize)/step) * step
		for i := 0; i < s.gridNum; i++ {
			newAskTicks[ticks.PriceToTicks(askPrice, tickSize)] = struct{}{}
			askPrice += step
		}
	}

	existingBidTicks := make(map[model.Ticks]struct{})
	existingAskTicks := make(map[model.Ticks]struct{})
	for _, order := range orders {
		if order.Status != model.Active && order.Status != model.PartiallyFilled {
			continue
		}
		orderTicks := ticks.PriceToTicks(order.Price, tickSize)
		if order.Side == model.Bid {
			existingBidTicks[orderTicks] = struct{}{}
			if _, keep := newBidTicks[orderTicks]; !keep {
				engine.Cancel(s.assetId, order.OrderId)
			}
		} else {
			existingAskTicks[orderTicks] = struct{}{}
			if _, keep := newAskTicks[orderTicks]; !keep {
				engine.Cancel(s.assetId, order.OrderId)
			}
		}
	}

	orderQty := ticks.QuantityToLot(s.notionalOrderQty/mid, lotSize)

	for tk := range newBidTicks {
		if _, exists := existingBidTicks[tk]; exists {
			continue
		}
		if tk <= 0 || orderQty <= 0 {
			continue
		}
		price := ticks.TicksToPrice(tk, tickSize)
		if _, err := engine.SubmitBuy(s.assetId, price, orderQty, model.GTC, model.Limit); err != nil {
			s.logger.Warn().Err(err).Int("asset", s.assetId).Float64("price", price).Msg("grid buy rejected")
		}
	}
	for tk := range newAskTicks {
		if _, exists := existingAskTicks[tk]; exists {
			continue
		}
		if tk <= 0 || orderQty <= 0 {
			continue
		}
		price := ticks.TicksToPrice(tk, tickSize)
		if _, err := engine.SubmitSell(s.assetId, price, orderQty, model.GTC, model.Limit); err != nil {
			s.logger.Warn().Err(err).Int("asset", s.assetId).Float64("price", price).Msg("grid sell rejected")
		}
	}
}
