package common

import (
	"github.com/shopspring/decimal"
	"math"
)

// DecimalToFixed rounds num to precision decimal places, half away from zero.
// It goes through a decimal representation so that values like 1.00000005
// round the way they read, instead of the way their binary approximation does.
func DecimalToFixed(num float64, precision int) float64 {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return num
	}
	out, _ := decimal.NewFromFloat(num).Round(int32(precision)).Float64()
	return out
}
