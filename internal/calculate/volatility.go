package calculate

import (
	"math"

	"github.com/Alias1177/AviatorPredictor/models"
)

// Volatility levels for display
const (
	VolatilityLow    = "Low"
	VolatilityMedium = "Medium"
	VolatilityHigh   = "High"
)

// Volatility calculates the population standard deviation of the multipliers
func Volatility(outcomes []models.Outcome) float64 {
	if len(outcomes) <= 1 {
		return 0
	}

	values := Multipliers(outcomes)
	if isConstant(values) {
		// the float mean of equal values can be one ulp off
		return 0
	}
	mean := calculateAverage(values)

	var variance float64
	for _, v := range values {
		variance += math.Pow(v-mean, 2)
	}

	return math.Sqrt(variance / float64(len(values)))
}

// VolatilityLevel describes a volatility value
func VolatilityLevel(volatility float64) string {
	if volatility < 1 {
		return VolatilityLow
	}
	if volatility < 2 {
		return VolatilityMedium
	}
	return VolatilityHigh
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
