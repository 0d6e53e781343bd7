package outcome

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Alias1177/AviatorPredictor/models"
)

// ErrInvalidOutcome is returned for records that cannot be analyzed
var ErrInvalidOutcome = errors.New("invalid outcome")

// Record is an outcome as received from an external source.
// Timestamp may be epoch milliseconds (any numeric type or a numeric
// string), an ISO-8601 string or a time.Time.
type Record struct {
	ID         string      `json:"id"`
	Timestamp  interface{} `json:"timestamp"`
	Multiplier float64     `json:"multiplier"`

	// raw multiplier text that could not be parsed as a number
	badMultiplier string
}

// UnmarshalJSON accepts numeric or string ids and numeric or string
// multipliers. A malformed multiplier does not fail decoding; Adapt
// rejects the record instead.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         interface{}     `json:"id"`
		Timestamp  interface{}     `json:"timestamp"`
		Multiplier json.RawMessage `json:"multiplier"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*r = Record{Timestamp: raw.Timestamp}
	switch id := raw.ID.(type) {
	case nil:
	case string:
		r.ID = id
	case json.Number:
		r.ID = id.String()
	default:
		r.ID = fmt.Sprint(id)
	}

	m, ok := parseMultiplier(raw.Multiplier)
	if !ok {
		r.Multiplier = math.NaN()
		r.badMultiplier = string(raw.Multiplier)
		return nil
	}
	r.Multiplier = m
	return nil
}

// parseMultiplier reads a JSON number or a numeric string. A missing or
// null value yields NaN.
func parseMultiplier(raw json.RawMessage) (float64, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return math.NaN(), true
	}

	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}

	m, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return m, true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Adapt normalizes a record into an Outcome
func Adapt(rec Record) (models.Outcome, error) {
	if rec.badMultiplier != "" {
		return models.Outcome{}, fmt.Errorf("%w: record %q: unparseable multiplier %s", ErrInvalidOutcome, rec.ID, rec.badMultiplier)
	}
	if math.IsNaN(rec.Multiplier) || math.IsInf(rec.Multiplier, 0) {
		return models.Outcome{}, fmt.Errorf("%w: record %q: multiplier is not finite", ErrInvalidOutcome, rec.ID)
	}
	if rec.Multiplier < 0 {
		return models.Outcome{}, fmt.Errorf("%w: record %q: negative multiplier %v", ErrInvalidOutcome, rec.ID, rec.Multiplier)
	}

	ts, err := normalizeTimestamp(rec.Timestamp)
	if err != nil {
		return models.Outcome{}, fmt.Errorf("%w: record %q: %v", ErrInvalidOutcome, rec.ID, err)
	}

	return models.Outcome{
		ID:         rec.ID,
		Timestamp:  ts,
		Multiplier: rec.Multiplier,
	}, nil
}

// AdaptAll converts every record, failing on the first invalid one
func AdaptAll(recs []Record) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, 0, len(recs))
	for i, rec := range recs {
		o, err := Adapt(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// AdaptValid converts the records it can and reports the rejected ones
// as a single joined error.
func AdaptValid(recs []Record) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, 0, len(recs))
	var errs []error
	for _, rec := range recs {
		o, err := Adapt(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, errors.Join(errs...)
}

// FromRound adapts a stored round
func FromRound(r models.Round) (models.Outcome, error) {
	return Adapt(Record{
		ID:         strconv.FormatInt(r.ID, 10),
		Timestamp:  r.Timestamp,
		Multiplier: r.Multiplier,
	})
}

// FromRounds adapts stored rounds, skipping invalid ones
func FromRounds(rounds []models.Round) ([]models.Outcome, error) {
	recs := make([]Record, len(rounds))
	for i, r := range rounds {
		recs[i] = Record{
			ID:         strconv.FormatInt(r.ID, 10),
			Timestamp:  r.Timestamp,
			Multiplier: r.Multiplier,
		}
	}
	return AdaptValid(recs)
}

func normalizeTimestamp(v interface{}) (int64, error) {
	switch ts := v.(type) {
	case nil:
		return 0, errors.New("missing timestamp")
	case time.Time:
		if ts.IsZero() {
			return 0, errors.New("zero timestamp")
		}
		return ts.UnixMilli(), nil
	case *time.Time:
		if ts == nil || ts.IsZero() {
			return 0, errors.New("zero timestamp")
		}
		return ts.UnixMilli(), nil
	case int:
		return int64(ts), nil
	case int64:
		return ts, nil
	case float64:
		return epochFromFloat(ts)
	case json.Number:
		if i, err := ts.Int64(); err == nil {
			return i, nil
		}
		f, err := ts.Float64()
		if err != nil {
			return 0, fmt.Errorf("unparseable timestamp %q", ts.String())
		}
		return epochFromFloat(f)
	case string:
		return parseTimestampString(ts)
	}
	return 0, fmt.Errorf("unsupported timestamp type %T", v)
}

func epochFromFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("timestamp is not finite")
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("timestamp %v out of range", f)
	}
	return int64(f), nil
}

func parseTimestampString(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty timestamp")
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unparseable timestamp %q", s)
}
