package models

import "context"

// RoundSource supplies recent rounds ordered oldest first
type RoundSource interface {
	RecentRounds(ctx context.Context, limit int) ([]Round, error)
}

// PredictionSink persists predictions and manages their status lifecycle
type PredictionSink interface {
	AddPrediction(ctx context.Context, p PredictionRecord) (*PredictionRecord, error)
	UpdatePredictionStatus(ctx context.Context, id int64, status string) error
}
