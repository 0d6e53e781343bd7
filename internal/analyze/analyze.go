package analyze

import (
	"github.com/Alias1177/AviatorPredictor/internal/anomaly"
	"github.com/Alias1177/AviatorPredictor/internal/calculate"
	"github.com/Alias1177/AviatorPredictor/internal/patterns"
	"github.com/Alias1177/AviatorPredictor/models"
)

// PatternReport describes recent outcomes without predicting anything
type PatternReport struct {
	Rounds          int               `json:"rounds"`
	Streaks         []string          `json:"streaks"`
	Volatility      float64           `json:"volatility"`
	VolatilityLevel string            `json:"volatility_level"`
	Trend           string            `json:"trend"`
	MovingAverage   float64           `json:"moving_average"`
	WeightedAverage float64           `json:"weighted_average"`
	Anomaly         anomaly.Detection `json:"anomaly"`
}

// AnalyzePatterns computes the pattern signals for any history length.
// Unlike Predict it has no minimum; each signal applies its own.
func AnalyzePatterns(outcomes []models.Outcome, params Params) PatternReport {
	volatility := calculate.Volatility(outcomes)

	return PatternReport{
		Rounds:          len(outcomes),
		Streaks:         patterns.DetectStreaks(outcomes, params.LowThreshold),
		Volatility:      volatility,
		VolatilityLevel: calculate.VolatilityLevel(volatility),
		Trend:           patterns.DetermineTrend(outcomes).String(),
		MovingAverage:   calculate.MovingAverage(outcomes, params.MovingAvgWindow),
		WeightedAverage: calculate.WeightedAverage(outcomes, params.DecayFactor),
		Anomaly:         anomaly.Detect(outcomes),
	}
}
