// Package ticks implements the price <-> tick and quantity <-> lot
// conversions used at the boundary between the order book (keyed by
// integer Ticks) and the rest of the core (which works in natural-unit
// floating point Price/Quantity).
package ticks

import (
	"math"

	"backtestcore/internal/model"
)

// lotEpsilon defeats floating-point drift when rounding a quantity to the
// nearest lot (e.g. 0.1 + 0.2 style representation error).
const lotEpsilon = 1e-9

// PriceToTicks converts a price to its integer tick representation.
// ticks = round(price / tickSize).
func PriceToTicks(price model.Price, tickSize model.Price) model.Ticks {
	return model.Ticks(math.Round(price / tickSize))
}

// TicksToPrice converts an integer tick back to a natural-unit price.
func TicksToPrice(t model.Ticks, tickSize model.Price) model.Price {
	return model.Price(t) * tickSize
}

// QuantityToLot rounds a quantity to the nearest multiple of lotSize,
// nudging by lotEpsilon first so that values that should land exactly on
// a lot boundary aren't rounded down by representation error.
func QuantityToLot(qty model.Quantity, lotSize model.Quantity) model.Quantity {
	return math.Round((qty+lotEpsilon)/lotSize) * lotSize
}
