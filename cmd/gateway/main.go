// Command gateway runs a backtest engine behind the TCP control-plane
// adapter in internal/gateway, letting an out-of-process strategy
// submit/cancel orders and stream back reports.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"backtestcore/internal/config"
	"backtestcore/internal/engine"
	"backtestcore/internal/feed"
	"backtestcore/internal/gateway"
	"backtestcore/internal/model"
)

// serializedEngine mutex-guards a BacktestEngine so the gateway's worker
// pool and the clock-advancing goroutine below can safely share one
// instance; BacktestEngine itself assumes a single-threaded simulation
// core, same as the engine it's grounded on.
type serializedEngine struct {
	mu  sync.Mutex
	eng *engine.BacktestEngine
}

func (s *serializedEngine) SubmitBuy(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.SubmitBuy(assetId, price, quantity, tif, orderType)
}

func (s *serializedEngine) SubmitSell(assetId model.AssetId, price model.Price, quantity model.Quantity, tif model.TimeInForce, orderType model.OrderType) (model.OrderId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.SubmitSell(assetId, price, quantity, tif, orderType)
}

func (s *serializedEngine) Cancel(assetId model.AssetId, orderId model.OrderId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.Cancel(assetId, orderId)
}

func (s *serializedEngine) Elapse(deltaUs model.Timestamp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Elapse(deltaUs)
}

func (s *serializedEngine) Drained() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Drained()
}

type assetFlags []string

func (a *assetFlags) String() string { return "" }
func (a *assetFlags) Set(path string) error {
	*a = append(*a, path)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var assetPaths assetFlags
	flag.Var(&assetPaths, "asset", "path to an asset config file (repeatable, one per traded instrument)")
	engineCfgPath := flag.String("engine", "backtest_engine.cfg", "path to the engine config file")
	address := flag.String("address", "0.0.0.0", "listen address")
	port := flag.Int("port", 9001, "listen port")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if len(assetPaths) == 0 {
		logger.Error().Msg("at least one -asset config is required")
		return 1
	}

	engineCfg, err := config.LoadEngineConfig(*engineCfgPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *engineCfgPath).Msg("failed to load engine config")
		return 1
	}

	configs := make(map[model.AssetId]model.AssetConfig, len(assetPaths))
	readers := make(map[model.AssetId][2]feed.Reader, len(assetPaths))
	for i, path := range assetPaths {
		assetId := i + 1
		assetCfg, err := config.LoadAssetConfig(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("failed to load asset config")
			return 1
		}
		configs[assetId] = assetCfg

		var bookReader, tradeReader feed.Reader
		if assetCfg.BookUpdateFile != "" {
			r, err := feed.NewBookCSVReader(assetId, assetCfg.BookUpdateFile, engineCfg.MarketFeedLatencyUs, logger)
			if err != nil {
				logger.Error().Err(err).Str("path", assetCfg.BookUpdateFile).Msg("failed to load book update file")
				return 1
			}
			bookReader = r
		}
		if assetCfg.TradeFile != "" {
			r, err := feed.NewTradeCSVReader(assetId, assetCfg.TradeFile, engineCfg.MarketFeedLatencyUs, logger)
			if err != nil {
				logger.Error().Err(err).Str("path", assetCfg.TradeFile).Msg("failed to load trade file")
				return 1
			}
			tradeReader = r
		}
		readers[assetId] = [2]feed.Reader{bookReader, tradeReader}
	}

	eng := engine.New(configs, readers, engineCfg, logger)

	sharedEng := &serializedEngine{eng: eng}
	srv := gateway.New(*address, *port, sharedEng, logger)
	eng.OnFill(func(_ model.AssetId, fill model.Fill) { srv.BroadcastFill(fill) })
	eng.OnOrderUpdate(func(_ model.AssetId, update model.OrderUpdate) { srv.BroadcastOrderUpdate(update) })

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Drive the simulated clock forward on a fixed tick while the gateway
	// serves remote submit/cancel requests concurrently; both share the
	// engine only through sharedEng's mutex.
	go func() {
		const tickUs model.Timestamp = 1_000_000
		for !sharedEng.Drained() {
			select {
			case <-ctx.Done():
				return
			default:
				sharedEng.Elapse(tickUs)
			}
		}
		stop()
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("gateway server exited")
		return 1
	}
	return 0
}
