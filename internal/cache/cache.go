// Package cache keeps the most recent prediction for the API
package cache

import (
	"context"

	"github.com/Alias1177/AviatorPredictor/models"
)

// Store holds the latest prediction result
type Store interface {
	SetLatest(ctx context.Context, result models.PredictionResult) error
	Latest(ctx context.Context) (models.PredictionResult, error)
}

var (
	_ Store = (*RedisCache)(nil)
	_ Store = (*Memory)(nil)
)
