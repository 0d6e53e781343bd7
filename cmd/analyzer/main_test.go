package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
)

const history = `[
	{"id": 1, "timestamp": 1000, "multiplier": 1.2},
	{"id": 2, "timestamp": 2000, "multiplier": 1.3},
	{"id": 3, "timestamp": 3000, "multiplier": 1.1},
	{"id": 4, "timestamp": 4000, "multiplier": 1.4},
	{"id": 5, "timestamp": 5000, "multiplier": 1.2},
	{"id": 6, "timestamp": 6000, "multiplier": 1.3},
	{"id": 7, "timestamp": 7000, "multiplier": 1.6},
	{"id": 8, "timestamp": 8000, "multiplier": 1.2},
	{"id": 9, "timestamp": 9000, "multiplier": 1.4},
	{"id": 10, "timestamp": 10000, "multiplier": 1.3}
]`

func defaultOptions() options {
	return options{input: "-", params: analyze.DefaultParams()}
}

func TestRunFromStdin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader(history), &out, defaultOptions()))

	var got output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 1.41, got.PredictedMultiplier)
	assert.Equal(t, 85, got.Confidence)
	assert.Nil(t, got.Report)
}

func TestRunFromFileWithReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rounds.json")
	require.NoError(t, os.WriteFile(path, []byte(history), 0o600))

	opts := defaultOptions()
	opts.input = path
	opts.patterns = true

	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader(""), &out, opts))

	var got output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.NotNil(t, got.Report)
	assert.Equal(t, 10, got.Report.Rounds)
}

func TestRunInvalidRecords(t *testing.T) {
	input := `[{"id": 1, "timestamp": 1000, "multiplier": -1}]`

	opts := defaultOptions()
	opts.strict = true
	assert.Error(t, run(strings.NewReader(input), &bytes.Buffer{}, opts))

	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader(input), &out, defaultOptions()))
	assert.Contains(t, out.String(), `"trend": "Insufficient data"`)
}

func TestRunRejectsBadParams(t *testing.T) {
	opts := defaultOptions()
	opts.params.DecayFactor = 1.5
	assert.Error(t, run(strings.NewReader(history), &bytes.Buffer{}, opts))
}

func TestRunBadJSON(t *testing.T) {
	assert.Error(t, run(strings.NewReader("{"), &bytes.Buffer{}, defaultOptions()))
}
