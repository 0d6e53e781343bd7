package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
	"github.com/Alias1177/AviatorPredictor/internal/logger"
	"github.com/Alias1177/AviatorPredictor/internal/outcome"
	"github.com/Alias1177/AviatorPredictor/models"
)

type options struct {
	input    string
	strict   bool
	sortIn   bool
	patterns bool
	logLevel string
	params   analyze.Params
}

type output struct {
	models.PredictionResult
	Report *analyze.PatternReport `json:"report,omitempty"`
}

func main() {
	opts := options{params: analyze.DefaultParams()}

	rootCmd := &cobra.Command{
		Use:   "analyzer",
		Short: "Predict the next Aviator multiplier from a JSON round history",
		Long: `Reads a JSON array of rounds ({"id", "timestamp", "multiplier"}) ordered
oldest first from a file or stdin and prints the prediction as JSON.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(opts.logLevel, "console")
			return run(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "-", "Path to the JSON history, - for stdin")
	flags.BoolVar(&opts.strict, "strict", false, "Fail on the first invalid record instead of skipping it")
	flags.BoolVar(&opts.sortIn, "sort", false, "Sort records by timestamp before predicting")
	flags.BoolVar(&opts.patterns, "patterns", false, "Include the full pattern report")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.IntVar(&opts.params.MovingAvgWindow, "window", opts.params.MovingAvgWindow, "Moving average window")
	flags.Float64Var(&opts.params.LowThreshold, "threshold", opts.params.LowThreshold, "Low streak threshold")
	flags.Float64Var(&opts.params.DecayFactor, "decay", opts.params.DecayFactor, "Weighted average decay factor")
	flags.IntVar(&opts.params.ConfidenceBase, "confidence-base", opts.params.ConfidenceBase, "Base confidence")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(stdin io.Reader, stdout io.Writer, opts options) error {
	if err := opts.params.Validate(); err != nil {
		return err
	}

	in := stdin
	if opts.input != "" && opts.input != "-" {
		f, err := os.Open(opts.input)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
	}

	var records []outcome.Record
	if err := json.NewDecoder(in).Decode(&records); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	outcomes, err := adapt(records, opts.strict)
	if err != nil {
		return err
	}

	if opts.sortIn {
		sort.SliceStable(outcomes, func(i, j int) bool {
			return outcomes[i].Timestamp < outcomes[j].Timestamp
		})
	}

	result := output{PredictionResult: analyze.PredictWithParams(outcomes, opts.params)}
	if opts.patterns {
		report := analyze.AnalyzePatterns(outcomes, opts.params)
		result.Report = &report
	}

	if !result.Available() {
		log.Warn().Int("rounds", len(outcomes)).Msg("Not enough rounds for a prediction")
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func adapt(records []outcome.Record, strict bool) ([]models.Outcome, error) {
	if strict {
		return outcome.AdaptAll(records)
	}

	outcomes, err := outcome.AdaptValid(records)
	if err != nil {
		log.Warn().Err(err).Int("skipped", len(records)-len(outcomes)).Msg("Skipped invalid records")
	}
	return outcomes, nil
}
