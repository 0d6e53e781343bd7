package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
	"github.com/Alias1177/AviatorPredictor/internal/cache"
	"github.com/Alias1177/AviatorPredictor/internal/logger"
	"github.com/Alias1177/AviatorPredictor/internal/metrics"
	"github.com/Alias1177/AviatorPredictor/internal/notify"
	"github.com/Alias1177/AviatorPredictor/models"
)

// PredictionStore persists predictions and resolves them against rounds
type PredictionStore interface {
	models.PredictionSink
	ResolvePrediction(ctx context.Context, id, roundID int64, status string) error
}

// pendingLister is implemented by stores that can list unresolved predictions
type pendingLister interface {
	PendingPredictions(ctx context.Context) ([]models.PredictionRecord, error)
}

// Options configures the prediction service
type Options struct {
	Params              analyze.Params
	NotifyMinConfidence int
	InsertedBy          string
	// LinkRounds records the resolving round on the prediction. Only set
	// it when outcome IDs are ids of stored rounds.
	LinkRounds bool
}

// Deps are the collaborators of the service. Store and Notifier are optional.
type Deps struct {
	Store    PredictionStore
	Cache    cache.Store
	Metrics  *metrics.Recorder
	Notifier notify.Notifier
}

// Service turns buffer updates into predictions and feeds the sinks
type Service struct {
	opts     Options
	store    PredictionStore
	cache    cache.Store
	metrics  *metrics.Recorder
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending []models.PredictionRecord
}

// New creates a prediction service
func New(opts Options, deps Deps) *Service {
	if deps.Cache == nil {
		deps.Cache = cache.NewMemory()
	}
	if opts.InsertedBy == "" {
		opts.InsertedBy = "predictor"
	}

	return &Service{
		opts:     opts,
		store:    deps.Store,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		notifier: deps.Notifier,
		logger:   logger.Component("prediction_service"),
		now:      time.Now,
	}
}

// HandleUpdate matches feed.Handler
func (s *Service) HandleUpdate(ctx context.Context, snapshot, fresh []models.Outcome) {
	s.Update(ctx, snapshot, fresh)
}

// Update resolves pending predictions against the first outcome of
// snapshot made after them, predicts from snapshot and hands the result to
// every sink. Sink failures are logged and counted.
func (s *Service) Update(ctx context.Context, snapshot, fresh []models.Outcome) models.PredictionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(fresh) > 0 {
		s.recordRounds(fresh)
		s.resolvePending(ctx, snapshot)
	}

	start := time.Now()
	result := analyze.PredictWithParams(snapshot, s.opts.Params)
	s.observe("predict", start)

	if err := s.cache.SetLatest(ctx, result); err != nil {
		s.logger.Error().Err(err).Msg("Failed to cache prediction")
		s.countError("cache")
	}

	if !result.Available() {
		s.logger.Debug().Int("rounds", len(snapshot)).Msg("Not enough rounds to predict")
		return result
	}

	if s.metrics != nil {
		s.metrics.RecordPrediction(models.ConfidenceTier(result.Confidence),
			result.PredictedMultiplier, result.Confidence, result.Patterns.Volatility)
	}

	s.logger.Info().
		Float64("predicted", result.PredictedMultiplier).
		Int("confidence", result.Confidence).
		Str("trend", result.Patterns.Trend).
		Strs("streaks", result.Patterns.Streaks).
		Msg("New prediction")

	s.persist(ctx, result)
	s.alert(ctx, result)

	return result
}

// Latest returns the most recent prediction
func (s *Service) Latest(ctx context.Context) (models.PredictionResult, error) {
	return s.cache.Latest(ctx)
}

// Restore adopts the newest unresolved prediction from the store so that
// the first round made after it resolves it once the window is loaded.
func (s *Service) Restore(ctx context.Context) error {
	lister, ok := s.store.(pendingLister)
	if !ok {
		return nil
	}

	pending, err := lister.PendingPredictions(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newest := pending[len(pending)-1]
	s.pending = append(s.pending, newest)
	s.logger.Info().
		Int64("prediction_id", newest.ID).
		Int("stale", len(pending)-1).
		Msg("Restored pending prediction")
	return nil
}

// Resolve reports whether a prediction was met by the actual multiplier
func Resolve(predicted, actual float64) string {
	if actual >= predicted {
		return models.PredictionStatusSuccess
	}
	return models.PredictionStatusFail
}

func (s *Service) resolvePending(ctx context.Context, snapshot []models.Outcome) {
	if len(s.pending) == 0 || len(snapshot) == 0 {
		return
	}

	var still []models.PredictionRecord
	for _, p := range s.pending {
		i := firstAfter(snapshot, p.PredictionTime)
		switch {
		case i < 0:
			// no round after it yet
			still = append(still, p)
		case i == 0:
			// the window starts after the prediction, its next round is gone
			s.logger.Warn().Int64("prediction_id", p.ID).
				Time("prediction_time", p.PredictionTime).
				Msg("Prediction is older than the round window, leaving it unresolved")
		default:
			s.resolve(ctx, p, snapshot[i])
		}
	}
	s.pending = still
}

// firstAfter returns the index of the first outcome later than t, or -1
func firstAfter(snapshot []models.Outcome, t time.Time) int {
	for i, o := range snapshot {
		if o.Time().After(t) {
			return i
		}
	}
	return -1
}

func (s *Service) resolve(ctx context.Context, p models.PredictionRecord, next models.Outcome) {
	status := Resolve(p.PredictedMultiplier, next.Multiplier)
	if s.metrics != nil {
		s.metrics.RecordResolved(status)
	}

	logger := s.logger.With().Int64("prediction_id", p.ID).Str("status", status).Str("round", next.ID).Logger()

	if s.store == nil {
		logger.Debug().Msg("Prediction resolved")
		return
	}

	err := s.storeResolution(ctx, p.ID, next.ID, status)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve prediction")
		s.countError("database")
		return
	}
	logger.Debug().Float64("actual", next.Multiplier).Msg("Prediction resolved")
}

func (s *Service) storeResolution(ctx context.Context, predictionID int64, roundID, status string) error {
	if s.opts.LinkRounds {
		if id, err := strconv.ParseInt(roundID, 10, 64); err == nil {
			return s.store.ResolvePrediction(ctx, predictionID, id, status)
		}
	}
	return s.store.UpdatePredictionStatus(ctx, predictionID, status)
}

func (s *Service) persist(ctx context.Context, result models.PredictionResult) {
	record := models.PredictionRecord{
		PredictedMultiplier: result.PredictedMultiplier,
		Confidence:          result.Confidence,
		PredictionTime:      s.now().UTC(),
		ResultStatus:        models.PredictionStatusPending,
		InsertedBy:          s.opts.InsertedBy,
	}

	if s.store == nil {
		s.pending = append(s.pending, record)
		return
	}

	start := time.Now()
	saved, err := s.store.AddPrediction(ctx, record)
	s.observe("store_prediction", start)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to store prediction")
		s.countError("database")
		return
	}
	s.pending = append(s.pending, *saved)
}

func (s *Service) alert(ctx context.Context, result models.PredictionResult) {
	if s.notifier == nil || result.Confidence < s.opts.NotifyMinConfidence {
		return
	}

	if err := s.notifier.Notify(ctx, result); err != nil {
		s.logger.Error().Err(err).Msg("Failed to send alert")
		s.countError("notify")
	}
}

func (s *Service) recordRounds(fresh []models.Outcome) {
	if s.metrics != nil {
		s.metrics.RecordRounds(len(fresh), fresh[len(fresh)-1].Multiplier)
	}
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordLatency(op, time.Since(start).Seconds())
	}
}

func (s *Service) countError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}
