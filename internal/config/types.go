package config

import (
	"backtestcore/internal/engine"
	"backtestcore/internal/model"
)

// LoadAssetConfig reads an `asset` file (§6 config table) into a
// model.AssetConfig.
func LoadAssetConfig(path string) (model.AssetConfig, error) {
	f, err := Load(path)
	if err != nil {
		return model.AssetConfig{}, err
	}
	return model.AssetConfig{
		Name:               f.String("name", ""),
		BookUpdateFile:     f.String("book_update_file", ""),
		TradeFile:          f.String("trade_file", ""),
		TickSize:           f.Float64("tick_size", 0.01),
		LotSize:            f.Float64("lot_size", 0.001),
		ContractMultiplier: f.Float64("contract_multiplier", 1),
		IsInverse:          f.Bool("is_inverse", false),
		MakerFee:           f.Float64("maker_fee", 0),
		TakerFee:           f.Float64("taker_fee", 0),
	}, nil
}

// LoadEngineConfig reads a `backtest_engine` file into an engine.Config.
func LoadEngineConfig(path string) (engine.Config, error) {
	f, err := Load(path)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		StartingCash:           f.Float64("initial_cash", 0),
		OrderEntryLatencyUs:    f.Uint64("order_entry_latency_us", 0),
		OrderResponseLatencyUs: f.Uint64("order_response_latency_us", 0),
		MarketFeedLatencyUs:    f.Uint64("market_feed_latency_us", 0),
	}, nil
}

// BacktestConfig drives the top-level `cmd/backtest` main loop.
type BacktestConfig struct {
	ElapseUs   model.Timestamp
	Iterations int
}

// LoadBacktestConfig reads a `backtest` file.
func LoadBacktestConfig(path string) (BacktestConfig, error) {
	f, err := Load(path)
	if err != nil {
		return BacktestConfig{}, err
	}
	return BacktestConfig{
		ElapseUs:   f.Uint64("elapse_us", 1_000_000),
		Iterations: f.Int("iterations", 1_000_000),
	}, nil
}

// RecorderConfig drives equity-curve sampling.
type RecorderConfig struct {
	IntervalUs model.Timestamp
	OutputFile string
}

// LoadRecorderConfig reads a `recorder` file.
func LoadRecorderConfig(path string) (RecorderConfig, error) {
	f, err := Load(path)
	if err != nil {
		return RecorderConfig{}, err
	}
	return RecorderConfig{
		IntervalUs: f.Uint64("interval_us", 1_000_000),
		OutputFile: f.String("output_file", "equity.csv"),
	}, nil
}

// GridTradingConfig parameterises the sample grid-trading strategy.
// GridInterval and HalfSpread are expressed in ticks, not price, matching
// the strategy's own internal unit.
type GridTradingConfig struct {
	TickSize         model.Price
	LotSize          model.Quantity
	GridNum          int
	GridInterval     model.Ticks
	HalfSpread       model.Ticks
	PositionLimit    model.Quantity
	NotionalOrderQty model.Quantity
}

// LoadGridTradingConfig reads a `grid_trading` file.
func LoadGridTradingConfig(path string) (GridTradingConfig, error) {
	f, err := Load(path)
	if err != nil {
		return GridTradingConfig{}, err
	}
	return GridTradingConfig{
		TickSize:         f.Float64("tick_size", 0.01),
		LotSize:          f.Float64("lot_size", 0.001),
		GridNum:          f.Int("grid_num", 5),
		GridInterval:     int64(f.Uint64("grid_interval", 1)),
		HalfSpread:       int64(f.Uint64("half_spread", 1)),
		PositionLimit:    f.Float64("position_limit", 10),
		NotionalOrderQty: f.Float64("notional_order_qty", 1),
	}, nil
}
