package market

import (
	"math"

	"github.com/shopspring/decimal"
)

// PricePrecision is the number of decimal places kept for every stored price.
const PricePrecision int32 = 2

// DefaultFloor is the smallest price the synthetic feed will ever store.
const DefaultFloor = 1.0

// RoundPrice rounds x half away from zero to PricePrecision places.
// NaN and infinities are returned unchanged.
func RoundPrice(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(PricePrecision).InexactFloat64()
}

// ClampPrice rounds x and raises it to floor when it would fall below.
// NaN and infinities become the floor.
// A floor that is not positive is treated as DefaultFloor.
func ClampPrice(x, floor float64) float64 {
	if floor <= 0 || math.IsNaN(floor) {
		floor = DefaultFloor
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return RoundPrice(floor)
	}
	p := RoundPrice(x)
	if p < floor {
		return RoundPrice(floor)
	}
	return p
}

// ValidPrice reports whether x can be stored as a price.
func ValidPrice(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}
