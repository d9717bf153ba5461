package recorder

import "errors"

var (
	// ErrNoReturns is returned by Sharpe/Sortino when fewer than two
	// equity snapshots have been recorded.
	ErrNoReturns = errors.New("recorder: no returns data")
	// ErrZeroStddev is returned by Sharpe when the return series has
	// (near) zero standard deviation.
	ErrZeroStddev = errors.New("recorder: return series has zero standard deviation")
	// ErrNoDownside is returned by Sortino when no interval return was
	// negative, so a downside deviation cannot be computed.
	ErrNoDownside = errors.New("recorder: no negative returns, cannot compute downside deviation")
	// ErrZeroDownsideDeviation is returned by Sortino when the negative
	// returns have (near) zero standard deviation.
	ErrZeroDownsideDeviation = errors.New("recorder: downside deviation is zero")
	// ErrNoRecords is returned by MaxDrawdown when nothing has been
	// recorded yet.
	ErrNoRecords = errors.New("recorder: no records available")
)
