package analyze

import (
	"fmt"

	"github.com/Alias1177/AviatorPredictor/internal/calculate"
	"github.com/Alias1177/AviatorPredictor/internal/patterns"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Params holds the tunable knobs of the prediction model
type Params struct {
	MovingAvgWindow int     `json:"moving_avg_window" validate:"min=5,max=50"`
	LowThreshold    float64 `json:"low_threshold" validate:"gte=1.1,lte=3"`
	DecayFactor     float64 `json:"decay_factor" validate:"gte=0.5,lte=0.99"`
	ConfidenceBase  int     `json:"confidence_base" validate:"min=50,max=90"`
}

// DefaultParams returns the parameters Predict uses
func DefaultParams() Params {
	return Params{
		MovingAvgWindow: MinOutcomes,
		LowThreshold:    patterns.DefaultStreakThreshold,
		DecayFactor:     calculate.DefaultDecayFactor,
		ConfidenceBase:  baseConfidence,
	}
}

// Validate checks the parameters against their allowed ranges
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid prediction params: %w", err)
	}
	return nil
}

// minOutcomes is the number of outcomes a prediction needs with these params
func (p Params) minOutcomes() int {
	if p.MovingAvgWindow > MinOutcomes {
		return p.MovingAvgWindow
	}
	return MinOutcomes
}
