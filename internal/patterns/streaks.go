package patterns

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alias1177/AviatorPredictor/models"
)

// DefaultStreakThreshold separates low multipliers from the rest.
// High multipliers are those above twice the threshold.
const DefaultStreakThreshold = 1.5

const streakLength = 3

// DetectStreaks scans from the newest outcome back to the oldest and reports
// every run of low or high multipliers at the moment its counter reaches
// exactly three. Longer runs are reported once; a run only reports again
// after something interrupts it.
func DetectStreaks(outcomes []models.Outcome, threshold float64) []string {
	streaks := make([]string, 0)

	if len(outcomes) < streakLength {
		return streaks
	}

	high := threshold * 2
	lowMsg := fmt.Sprintf("%d consecutive multipliers below %sx", streakLength, formatThreshold(threshold))
	highMsg := fmt.Sprintf("%d consecutive multipliers above %sx", streakLength, formatThreshold(high))

	var lowStreak, highStreak int
	for i := len(outcomes) - 1; i >= 0; i-- {
		m := outcomes[i].Multiplier

		switch {
		case m < threshold:
			lowStreak++
			highStreak = 0
		case m > high:
			highStreak++
			lowStreak = 0
		default:
			lowStreak = 0
			highStreak = 0
		}

		if lowStreak == streakLength {
			streaks = append(streaks, lowMsg)
		}
		if highStreak == streakLength {
			streaks = append(streaks, highMsg)
		}
	}

	return streaks
}

// HasLowStreak reports whether any streak message describes low multipliers
func HasLowStreak(streaks []string) bool {
	for _, s := range streaks {
		if strings.Contains(s, "below") {
			return true
		}
	}
	return false
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
