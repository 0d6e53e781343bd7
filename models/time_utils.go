package models

import (
	"fmt"
	"time"
)

// Period is a lookback window for round queries
type Period string

const (
	Period5m  Period = "5m"
	Period15m Period = "15m"
	Period1h  Period = "1h"
	Period24h Period = "24h"
)

// ParsePeriod validates a period string
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case Period5m, Period15m, Period1h, Period24h:
		return p, nil
	}
	return "", fmt.Errorf("unsupported period %q", s)
}

// Duration returns the length of the period
func (p Period) Duration() time.Duration {
	switch p {
	case Period5m:
		return 5 * time.Minute
	case Period15m:
		return 15 * time.Minute
	case Period1h:
		return time.Hour
	case Period24h:
		return 24 * time.Hour
	}
	return 0
}

// Since returns the start of the period relative to now
func (p Period) Since(now time.Time) time.Time {
	return now.Add(-p.Duration())
}
