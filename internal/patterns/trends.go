package patterns

import (
	"strings"

	"github.com/Alias1177/AviatorPredictor/models"
)

// Trend is a label describing the recent direction of multipliers
type Trend string

const (
	TrendInsufficientData   Trend = "Insufficient data"
	TrendStronglyIncreasing Trend = "Strongly increasing multipliers"
	TrendSlightlyIncreasing Trend = "Slightly increasing multipliers"
	TrendStronglyDecreasing Trend = "Strongly decreasing multipliers"
	TrendSlightlyDecreasing Trend = "Slightly decreasing multipliers"
	TrendStable             Trend = "Stable multipliers"
)

const (
	trendWindow      = 5
	trendHalf        = 2
	strongTrendDelta = 0.5
	slightTrendDelta = 0.1
)

func (t Trend) String() string {
	return string(t)
}

// Increasing reports whether the label describes a rising trend
func (t Trend) Increasing() bool {
	return strings.Contains(string(t), "increasing")
}

// Decreasing reports whether the label describes a falling trend
func (t Trend) Decreasing() bool {
	return strings.Contains(string(t), "decreasing")
}

// DetermineTrend compares the mean of the two oldest and the two newest of
// the last five outcomes. The middle outcome belongs to neither half.
func DetermineTrend(outcomes []models.Outcome) Trend {
	if len(outcomes) < trendWindow {
		return TrendInsufficientData
	}

	recent := outcomes[len(outcomes)-trendWindow:]

	var firstHalf, secondHalf float64
	for i := 0; i < trendHalf; i++ {
		firstHalf += recent[i].Multiplier
		secondHalf += recent[trendWindow-trendHalf+i].Multiplier
	}
	firstHalf /= trendHalf
	secondHalf /= trendHalf

	diff := secondHalf - firstHalf

	// strong bands are checked first, they overlap the slight ones
	switch {
	case diff > strongTrendDelta:
		return TrendStronglyIncreasing
	case diff > slightTrendDelta:
		return TrendSlightlyIncreasing
	case diff < -strongTrendDelta:
		return TrendStronglyDecreasing
	case diff < -slightTrendDelta:
		return TrendSlightlyDecreasing
	}
	return TrendStable
}
