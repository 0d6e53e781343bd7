package analyze

import (
	"math"

	"github.com/Alias1177/AviatorPredictor/internal/calculate"
	"github.com/Alias1177/AviatorPredictor/internal/patterns"
	"github.com/Alias1177/AviatorPredictor/models"
)

// MinOutcomes is the shortest history that yields a prediction
const MinOutcomes = 10

const (
	weightedShare = 0.7
	movingShare   = 0.3

	lowStreakBoost   = 1.2
	increasingBoost  = 1.1
	decreasingDamper = 0.9

	baseConfidence      = 70
	calmBonus           = 10
	turbulentPenalty    = 10
	streakBonus         = 5
	calmVolatility      = 1.0
	turbulentVolatility = 2.0
)

// Insufficient returns the result used when there is not enough history
func Insufficient() models.PredictionResult {
	return models.PredictionResult{
		PredictedMultiplier: 0,
		Confidence:          0,
		Patterns: models.Patterns{
			Streaks:    []string{},
			Volatility: 0,
			Trend:      patterns.TrendInsufficientData.String(),
		},
	}
}

// Predict estimates the next multiplier from outcomes ordered oldest first
func Predict(outcomes []models.Outcome) models.PredictionResult {
	return PredictWithParams(outcomes, DefaultParams())
}

// PredictWithParams is Predict with tuned parameters. The caller is
// responsible for validating params.
func PredictWithParams(outcomes []models.Outcome, params Params) models.PredictionResult {
	if len(outcomes) < params.minOutcomes() {
		return Insufficient()
	}

	movingAvg := calculate.MovingAverage(outcomes, params.MovingAvgWindow)
	weightedAvg := calculate.WeightedAverage(outcomes, params.DecayFactor)
	volatility := calculate.Volatility(outcomes)
	streaks := patterns.DetectStreaks(outcomes, params.LowThreshold)
	trend := patterns.DetermineTrend(outcomes)

	predicted := weightedAvg*weightedShare + movingAvg*movingShare

	// a run of low multipliers is read as a higher next outcome
	if patterns.HasLowStreak(streaks) {
		predicted *= lowStreakBoost
	}

	if trend.Increasing() {
		predicted *= increasingBoost
	} else if trend.Decreasing() {
		predicted *= decreasingDamper
	}

	return models.PredictionResult{
		PredictedMultiplier: roundTo(predicted, 2),
		Confidence:          confidence(params.ConfidenceBase, volatility, len(streaks) > 0),
		Patterns: models.Patterns{
			Streaks:    streaks,
			Volatility: volatility,
			Trend:      trend.String(),
		},
	}
}

func confidence(base int, volatility float64, hasStreaks bool) int {
	c := base

	if volatility < calmVolatility {
		c += calmBonus
	}
	if volatility > turbulentVolatility {
		c -= turbulentPenalty
	}
	if hasStreaks {
		c += streakBonus
	}

	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// roundTo rounds half away from zero
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
