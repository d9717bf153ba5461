// Package idgen hands out monotonically increasing OrderIds for one
// engine instance.
package idgen

import (
	"sync/atomic"

	"backtestcore/internal/model"
)

// Generator is an atomic monotonic counter starting at 1.
type Generator struct {
	counter uint64
}

// Next returns the next OrderId. Safe for concurrent use, though the core
// itself is single-threaded.
func (g *Generator) Next() model.OrderId {
	return atomic.AddUint64(&g.counter, 1)
}
