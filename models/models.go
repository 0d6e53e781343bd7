package models

import (
	"time"
)

// Outcome is a single completed round, normalized for analysis
type Outcome struct {
	ID         string  `json:"id"`
	Timestamp  int64   `json:"timestamp"` // unix milliseconds
	Multiplier float64 `json:"multiplier"`
}

// Time returns the outcome timestamp as time.Time
func (o Outcome) Time() time.Time {
	return time.UnixMilli(o.Timestamp).UTC()
}

// Round represents a stored game round
type Round struct {
	ID         int64     `json:"id"`
	Multiplier float64   `json:"multiplier"`
	Timestamp  time.Time `json:"timestamp"`
	InsertedBy string    `json:"inserted_by,omitempty"`
}

// Patterns holds the descriptive signals behind a prediction
type Patterns struct {
	Streaks    []string `json:"streaks"`
	Volatility float64  `json:"volatility"`
	Trend      string   `json:"trend"`
}

// PredictionResult stores the outcome of a prediction.
// A zero multiplier together with zero confidence means there was not enough data.
type PredictionResult struct {
	PredictedMultiplier float64  `json:"predictedMultiplier"`
	Confidence          int      `json:"confidence"`
	Patterns            Patterns `json:"patterns"`
}

// Available reports whether the result carries a real prediction
func (p PredictionResult) Available() bool {
	return p.PredictedMultiplier != 0 || p.Confidence != 0
}

// Prediction status constants
const (
	PredictionStatusPending = "pending"
	PredictionStatusSuccess = "success"
	PredictionStatusFail    = "fail"
)

// PredictionRecord is a persisted prediction and its lifecycle status
type PredictionRecord struct {
	ID                  int64     `json:"id"`
	RoundID             *int64    `json:"round_id,omitempty"`
	PredictedMultiplier float64   `json:"predicted_multiplier"`
	Confidence          int       `json:"confidence"`
	PredictionTime      time.Time `json:"prediction_time"`
	ResultStatus        string    `json:"result_status"` // pending, success, fail
	InsertedBy          string    `json:"inserted_by,omitempty"`
}

// PredictionStats summarizes resolved predictions
type PredictionStats struct {
	TotalPredictions   int       `json:"total_predictions"`
	CorrectPredictions int       `json:"correct_predictions"`
	PendingPredictions int       `json:"pending_predictions"`
	Accuracy           float64   `json:"accuracy"` // percent of resolved predictions
	LastUpdated        time.Time `json:"last_updated"`
}

// Confidence tiers used for display and alerts
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// ConfidenceTier maps a 0-100 confidence score to a display tier
func ConfidenceTier(confidence int) string {
	switch {
	case confidence > 70:
		return ConfidenceHigh
	case confidence > 50:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
