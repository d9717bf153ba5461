// Command backtest runs a grid-trading strategy against recorded
// per-asset book-update/trade CSV files, per the configuration surface
// in config/types.go, and writes an equity curve on completion.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"backtestcore/internal/config"
	"backtestcore/internal/engine"
	"backtestcore/internal/feed"
	"backtestcore/internal/model"
	"backtestcore/internal/recorder"
	"backtestcore/internal/strategy/gridtrading"
)

// assetFlags collects repeated -asset flags, one per traded instrument;
// assetId is assigned by flag order (1-based).
type assetFlags []string

func (a *assetFlags) String() string { return fmt.Sprint([]string(*a)) }
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
	backtestCfgPath := flag.String("backtest", "backtest.cfg", "path to the main-loop config file")
	recorderCfgPath := flag.String("recorder", "recorder.cfg", "path to the recorder config file")
	gridCfgPath := flag.String("grid", "grid_trading.cfg", "path to the grid-trading strategy config file")
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
	backtestCfg, err := config.LoadBacktestConfig(*backtestCfgPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *backtestCfgPath).Msg("failed to load backtest config")
		return 1
	}
	recorderCfg, err := config.LoadRecorderConfig(*recorderCfgPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *recorderCfgPath).Msg("failed to load recorder config")
		return 1
	}
	gridCfg, err := config.LoadGridTradingConfig(*gridCfgPath)
	if err != nil {
		logger.Error().Err(err).Str("path", *gridCfgPath).Msg("failed to load grid-trading config")
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
	rec := recorder.New(recorderCfg.IntervalUs)

	strategies := make([]*gridtrading.Strategy, 0, len(configs))
	for assetId := range configs {
		strategies = append(strategies, gridtrading.New(assetId, gridCfg, logger))
	}

	iterations := backtestCfg.Iterations
	for eng.Elapse(backtestCfg.ElapseUs) && iterations > 0 && !eng.Drained() {
		for _, s := range strategies {
			s.OnElapse(eng)
		}
		rec.RecordAt(eng.CurrentTime(), eng.Equity())
		iterations--
	}
	rec.RecordAt(eng.CurrentTime(), eng.Equity())

	if err := rec.WriteCSV(recorderCfg.OutputFile); err != nil {
		logger.Error().Err(err).Str("path", recorderCfg.OutputFile).Msg("failed to write equity curve")
		return 1
	}

	if sharpe, err := rec.Sharpe(); err == nil {
		logger.Info().Float64("sharpe", sharpe).Msg("run complete")
	} else {
		logger.Info().Msg("run complete")
	}
	return 0
}
