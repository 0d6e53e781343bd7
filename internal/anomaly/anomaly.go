package anomaly

import (
	"fmt"
	"math"

	"github.com/Alias1177/AviatorPredictor/internal/calculate"
	"github.com/Alias1177/AviatorPredictor/models"
)

// Anomaly types
const (
	TypeMultiplierSpike = "MULTIPLIER_SPIKE"
	TypeVolatilityShift = "VOLATILITY_SHIFT"
)

const (
	minRounds      = 20
	recentWindow   = 10
	spikeZScore    = 3.0
	volatilityRate = 2.0
)

// Detection describes unusual recent behaviour of the multipliers
type Detection struct {
	IsAnomaly bool     `json:"is_anomaly"`
	Score     float64  `json:"score"` // 0..1
	Types     []string `json:"types"`
	Details   string   `json:"details,omitempty"`
}

// Detect checks the newest outcome against the history before it and
// compares recent volatility with the whole window. It needs at least 20
// outcomes; fewer yield an empty detection.
func Detect(outcomes []models.Outcome) Detection {
	result := Detection{Types: []string{}}
	if len(outcomes) < minRounds {
		return result
	}

	last := outcomes[len(outcomes)-1]
	baseline := outcomes[:len(outcomes)-1]

	// 1. Newest multiplier far outside the baseline
	mean := calculate.MovingAverage(baseline, len(baseline))
	stdDev := calculate.Volatility(baseline)
	if stdDev > 0 {
		z := (last.Multiplier - mean) / stdDev
		if z > spikeZScore {
			result.IsAnomaly = true
			result.Types = append(result.Types, TypeMultiplierSpike)
			result.Score = math.Min(z/(2*spikeZScore), 1)
			result.Details = fmt.Sprintf("Multiplier %.2fx is %.1f standard deviations above the mean", last.Multiplier, z)
		}
	}

	// 2. Recent rounds much more volatile than the window
	overall := calculate.Volatility(outcomes)
	recent := calculate.Volatility(outcomes[len(outcomes)-recentWindow:])
	if overall > 0 && recent/overall > volatilityRate {
		ratio := recent / overall
		result.IsAnomaly = true
		result.Types = append(result.Types, TypeVolatilityShift)
		result.Score = math.Min(math.Max(result.Score, ratio/(2*volatilityRate))+0.1, 1)
		if result.Details == "" {
			result.Details = fmt.Sprintf("Recent volatility %.1f times the window average", ratio)
		}
	}

	return result
}
