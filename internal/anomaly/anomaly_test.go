package anomaly

import (
	"strconv"
	"testing"

	"github.com/Alias1177/AviatorPredictor/models"
)

func series(values ...float64) []models.Outcome {
	out := make([]models.Outcome, len(values))
	for i, v := range values {
		out[i] = models.Outcome{ID: strconv.Itoa(i), Timestamp: int64(i), Multiplier: v}
	}
	return out
}

func repeat(pattern []float64, n int) []float64 {
	var out []float64
	for len(out) < n {
		out = append(out, pattern...)
	}
	return out[:n]
}

func TestDetect(t *testing.T) {
	calm := repeat([]float64{1.2, 1.5, 1.8, 1.4}, 30)

	tests := []struct {
		name      string
		values    []float64
		isAnomaly bool
		types     []string
	}{
		{"too short", calm[:10], false, nil},
		{"calm", calm, false, nil},
		{"constant", repeat([]float64{2}, 25), false, nil},
		{"spike", append(append([]float64{}, calm...), 50), true, []string{TypeMultiplierSpike}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(series(tt.values...))
			if got.IsAnomaly != tt.isAnomaly {
				t.Fatalf("IsAnomaly = %v, want %v (%+v)", got.IsAnomaly, tt.isAnomaly, got)
			}
			if got.Types == nil {
				t.Fatal("Types must not be nil")
			}
			for _, typ := range tt.types {
				found := false
				for _, g := range got.Types {
					found = found || g == typ
				}
				if !found {
					t.Errorf("expected type %s in %v", typ, got.Types)
				}
			}
			if got.Score < 0 || got.Score > 1 {
				t.Errorf("Score = %v out of range", got.Score)
			}
		})
	}
}

func TestDetectVolatilityShift(t *testing.T) {
	values := append(repeat([]float64{1.5}, 90), repeat([]float64{1.0, 9.0}, 10)...)

	got := Detect(series(values...))
	if !got.IsAnomaly {
		t.Fatalf("expected anomaly, got %+v", got)
	}

	found := false
	for _, typ := range got.Types {
		found = found || typ == TypeVolatilityShift
	}
	if !found {
		t.Errorf("expected %s in %v", TypeVolatilityShift, got.Types)
	}
}
