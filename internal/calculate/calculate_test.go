package calculate

import (
	"math"
	"testing"

	"github.com/Alias1177/AviatorPredictor/models"
)

func outcomesOf(values ...float64) []models.Outcome {
	outcomes := make([]models.Outcome, len(values))
	for i, v := range values {
		outcomes[i] = models.Outcome{
			ID:         string(rune('a' + i%26)),
			Timestamp:  int64(1000 * (i + 1)),
			Multiplier: v,
		}
	}
	return outcomes
}

var stableSeries = []float64{1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		window   int
		expected float64
	}{
		{"empty", nil, 3, 0},
		{"window larger than data", []float64{1, 2}, 3, 0},
		{"zero window", []float64{1, 2}, 0, 0},
		{"negative window", []float64{1, 2}, -1, 0},
		{"whole series", stableSeries, 10, 1.3},
		{"suffix only", []float64{100, 1, 2, 3}, 3, 2},
		{"single", []float64{4.2}, 1, 4.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(outcomesOf(tt.values...), tt.window)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("MovingAverage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWeightedAverage(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := WeightedAverage(nil, DefaultDecayFactor); got != 0 {
			t.Errorf("WeightedAverage(nil) = %v, want 0", got)
		}
	})

	t.Run("single element is exact for any decay", func(t *testing.T) {
		for _, decay := range []float64{0.1, 0.5, 0.9, 0.99} {
			if got := WeightedAverage(outcomesOf(2.37), decay); got != 2.37 {
				t.Errorf("decay %v: got %v, want 2.37", decay, got)
			}
		}
	})

	t.Run("two elements", func(t *testing.T) {
		// weights 0.5 and 1
		got := WeightedAverage(outcomesOf(1, 4), 0.5)
		if math.Abs(got-3) > 1e-12 {
			t.Errorf("got %v, want 3", got)
		}
	})

	t.Run("favors recent outcomes", func(t *testing.T) {
		seq := outcomesOf(stableSeries...)
		got := WeightedAverage(seq, DefaultDecayFactor)
		if got <= 1.1 || got >= 1.6 {
			t.Errorf("got %v, want strictly between min and max", got)
		}

		rising := WeightedAverage(outcomesOf(1, 1, 1, 1, 5), DefaultDecayFactor)
		if rising <= MovingAverage(outcomesOf(1, 1, 1, 1, 5), 5) {
			t.Errorf("recent spike should outweigh plain mean, got %v", rising)
		}
	})

	t.Run("normalized for constant series", func(t *testing.T) {
		got := WeightedAverage(outcomesOf(2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2), DefaultDecayFactor)
		if math.Abs(got-2) > 1e-12 {
			t.Errorf("got %v, want 2", got)
		}
	})
}

func TestVolatility(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3}, 0},
		{"equal values", []float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, 0},
		{"population std dev", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
		{"pair", []float64{1, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Volatility(outcomesOf(tt.values...))
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Volatility() = %v, want %v", got, tt.expected)
			}
		})
	}

	if got := Volatility(outcomesOf(1.37, 1.37, 1.37)); got != 0 {
		t.Errorf("equal values must give exactly 0, got %v", got)
	}
}

func TestVolatilityLevel(t *testing.T) {
	tests := map[float64]string{
		0:    VolatilityLow,
		0.99: VolatilityLow,
		1:    VolatilityMedium,
		1.99: VolatilityMedium,
		2:    VolatilityHigh,
		7.5:  VolatilityHigh,
	}
	for v, expected := range tests {
		if got := VolatilityLevel(v); got != expected {
			t.Errorf("VolatilityLevel(%v) = %v, want %v", v, got, expected)
		}
	}
}

func TestIdempotence(t *testing.T) {
	seq := outcomesOf(stableSeries...)
	if MovingAverage(seq, 10) != MovingAverage(seq, 10) {
		t.Error("MovingAverage is not deterministic")
	}
	if WeightedAverage(seq, 0.9) != WeightedAverage(seq, 0.9) {
		t.Error("WeightedAverage is not deterministic")
	}
	if Volatility(seq) != Volatility(seq) {
		t.Error("Volatility is not deterministic")
	}
}
