package cache

import (
	"context"
	"sync"

	"github.com/Alias1177/AviatorPredictor/models"
)

// Memory keeps the latest prediction in process
type Memory struct {
	mu     sync.RWMutex
	result models.PredictionResult
	set    bool
}

// NewMemory creates an empty in-process cache
func NewMemory() *Memory {
	return &Memory{}
}

// SetLatest stores the latest prediction
func (m *Memory) SetLatest(ctx context.Context, result models.PredictionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
	m.set = true
	return nil
}

// Latest returns the stored prediction or ErrCacheMiss
func (m *Memory) Latest(ctx context.Context) (models.PredictionResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return models.PredictionResult{}, ErrCacheMiss
	}
	return m.result, nil
}
