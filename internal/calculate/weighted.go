package calculate

import (
	"math"

	"github.com/Alias1177/AviatorPredictor/models"
)

// DefaultDecayFactor is the decay applied per step back in time
const DefaultDecayFactor = 0.9

// WeightedAverage calculates an exponentially decayed average of the
// multipliers. The newest outcome has weight 1 and every older one is
// multiplied by decayFactor once more; the sum is normalized by the total
// weight.
func WeightedAverage(outcomes []models.Outcome, decayFactor float64) float64 {
	if len(outcomes) == 0 {
		return 0
	}

	n := len(outcomes)
	var totalWeight, weightedSum float64
	for i := 0; i < n; i++ {
		weight := math.Pow(decayFactor, float64(n-1-i))
		weightedSum += outcomes[i].Multiplier * weight
		totalWeight += weight
	}

	return weightedSum / totalWeight
}
