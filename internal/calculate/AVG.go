package calculate

import "github.com/Alias1177/AviatorPredictor/models"

// calculateAverage calculates simple average
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}

// MovingAverage returns the mean multiplier of the last windowSize outcomes.
// It returns 0 when the window cannot be filled.
func MovingAverage(outcomes []models.Outcome, windowSize int) float64 {
	if len(outcomes) == 0 || windowSize <= 0 || windowSize > len(outcomes) {
		return 0
	}

	var sum float64
	for i := len(outcomes) - windowSize; i < len(outcomes); i++ {
		sum += outcomes[i].Multiplier
	}

	return sum / float64(windowSize)
}

// Multipliers extracts the multiplier series
func Multipliers(outcomes []models.Outcome) []float64 {
	values := make([]float64, len(outcomes))
	for i, o := range outcomes {
		values[i] = o.Multiplier
	}
	return values
}
