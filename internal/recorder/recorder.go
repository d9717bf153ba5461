// Package recorder samples an equity curve over the course of a backtest
// and derives risk ratios (Sharpe, Sortino, max drawdown) from it.
package recorder

import (
	"math"

	"backtestcore/internal/model"
)

// EquitySnapshot is one point on the equity curve.
type EquitySnapshot struct {
	Timestamp model.Timestamp
	Equity    model.Price
}

// Recorder accumulates equity snapshots at arbitrary, non-uniform
// timestamps and resamples them onto a fixed interval to compute return
// series and risk ratios.
type Recorder struct {
	intervalUs model.Timestamp
	records    []EquitySnapshot
}

// New returns a Recorder that resamples onto intervalUs when computing
// returns.
func New(intervalUs model.Timestamp) *Recorder {
	return &Recorder{intervalUs: intervalUs}
}

// Record appends an equity snapshot. Snapshots must be recorded in
// non-decreasing timestamp order.
func (r *Recorder) Record(snapshot EquitySnapshot) {
	r.records = append(r.records, snapshot)
}

// RecordAt is a convenience wrapper around Record.
func (r *Recorder) RecordAt(timestamp model.Timestamp, equity model.Price) {
	r.Record(EquitySnapshot{Timestamp: timestamp, Equity: equity})
}

// Len reports how many snapshots have been recorded.
func (r *Recorder) Len() int {
	return len(r.records)
}

// IntervalReturns resamples the recorded (non-uniformly spaced) equity
// curve onto intervalUs-spaced points and returns the fractional return
// between each consecutive pair. Fewer than two records yields nil.
func (r *Recorder) IntervalReturns() []float64 {
	if len(r.records) < 2 {
		return nil
	}

	startTime := r.records[0].Timestamp
	endTime := r.records[len(r.records)-1].Timestamp
	lastValue := r.records[0].Equity
	i := 0

	var returns []float64
	for t := startTime; t <= endTime; t += r.intervalUs {
		for i+1 < len(r.records) && r.records[i+1].Timestamp <= t+r.intervalUs {
			i++
		}
		currentValue := r.records[i].Equity
		if lastValue > 0 {
			returns = append(returns, (currentValue-lastValue)/lastValue)
		} else {
			returns = append(returns, 0)
		}
		lastValue = currentValue
	}
	return returns
}

// annualizationFactor scales a per-interval ratio up to an annualized
// one, assuming a 365-day year.
func (r *Recorder) annualizationFactor() float64 {
	const secondsPerYear = 365 * 24 * 60 * 60
	intervalSeconds := float64(r.intervalUs) / 1_000_000.0
	return math.Sqrt(secondsPerYear / intervalSeconds)
}

// Sharpe returns the annualized Sharpe ratio of the recorded interval
// returns.
func (r *Recorder) Sharpe() (float64, error) {
	returns := r.IntervalReturns()
	if len(returns) == 0 {
		return 0, ErrNoReturns
	}

	retStddev := stddev(returns)
	if math.Abs(retStddev) <= 1e-9 {
		return 0, ErrZeroStddev
	}
	return r.annualizationFactor() * mean(returns) / retStddev, nil
}

// Sortino returns the annualized Sortino ratio, using only the negative
// interval returns to compute downside deviation.
func (r *Recorder) Sortino() (float64, error) {
	returns := r.IntervalReturns()
	if len(returns) == 0 {
		return 0, ErrNoReturns
	}

	var negReturns []float64
	for _, v := range returns {
		if v < 0 {
			negReturns = append(negReturns, v)
		}
	}
	if len(negReturns) == 0 {
		return 0, ErrNoDownside
	}

	downsideDev := stddev(negReturns)
	if math.Abs(downsideDev) <= 1e-9 {
		return 0, ErrZeroDownsideDeviation
	}
	return r.annualizationFactor() * mean(returns) / downsideDev, nil
}

// MaxDrawdown returns the largest peak-to-trough decline across the
// recorded equity curve, as a fraction of the peak (0.0 to 1.0).
func (r *Recorder) MaxDrawdown() (float64, error) {
	if len(r.records) == 0 {
		return 0, ErrNoRecords
	}

	peak := r.records[0].Equity
	maxDD := 0.0
	for _, snapshot := range r.records {
		if snapshot.Equity > peak {
			peak = snapshot.Equity
			continue
		}
		drawdown := (peak - snapshot.Equity) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD, nil
}
