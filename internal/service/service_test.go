package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
	"github.com/Alias1177/AviatorPredictor/internal/cache"
	"github.com/Alias1177/AviatorPredictor/internal/metrics"
	"github.com/Alias1177/AviatorPredictor/models"
)

type resolution struct {
	id, roundID int64
	status      string
}

type fakeStore struct {
	added    []models.PredictionRecord
	resolved []resolution
	updated  []resolution
	addErr   error
}

func (f *fakeStore) AddPrediction(ctx context.Context, p models.PredictionRecord) (*models.PredictionRecord, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	p.ID = int64(len(f.added) + 1)
	f.added = append(f.added, p)
	return &p, nil
}

func (f *fakeStore) UpdatePredictionStatus(ctx context.Context, id int64, status string) error {
	f.updated = append(f.updated, resolution{id: id, status: status})
	return nil
}

func (f *fakeStore) ResolvePrediction(ctx context.Context, id, roundID int64, status string) error {
	f.resolved = append(f.resolved, resolution{id: id, roundID: roundID, status: status})
	return nil
}

type fakeNotifier struct {
	sent []models.PredictionResult
}

func (f *fakeNotifier) Notify(ctx context.Context, result models.PredictionResult) error {
	f.sent = append(f.sent, result)
	return nil
}

func history(values ...float64) []models.Outcome {
	out := make([]models.Outcome, len(values))
	for i, v := range values {
		out[i] = models.Outcome{ID: strconv.Itoa(i + 1), Timestamp: int64(i+1) * 1000, Multiplier: v}
	}
	return out
}

func newTestService(store PredictionStore, notifier *fakeNotifier, minConfidence int) *Service {
	deps := Deps{
		Cache:   cache.NewMemory(),
		Metrics: metrics.New(prometheus.NewRegistry()),
	}
	if store != nil {
		deps.Store = store
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	svc := New(Options{
		Params:              analyze.DefaultParams(),
		NotifyMinConfidence: minConfidence,
		LinkRounds:          true,
	}, deps)
	// between the 10th and 11th round of history()
	svc.now = func() time.Time { return time.UnixMilli(10500) }
	return svc
}

func TestUpdateInsufficientData(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil, 75)

	snap := history(1.2, 1.5, 2.0)
	result := svc.Update(context.Background(), snap, snap)

	assert.False(t, result.Available())
	assert.Empty(t, store.added)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Insufficient data", latest.Patterns.Trend)
}

func TestUpdatePersistsAndAlerts(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := newTestService(store, notifier, 75)

	snap := history(1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3)
	result := svc.Update(context.Background(), snap, snap)

	assert.Equal(t, 1.41, result.PredictedMultiplier)
	assert.Equal(t, 85, result.Confidence)

	require.Len(t, store.added, 1)
	assert.Equal(t, models.PredictionStatusPending, store.added[0].ResultStatus)
	assert.Equal(t, "predictor", store.added[0].InsertedBy)
	require.Len(t, notifier.sent, 1)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.PredictedMultiplier, latest.PredictedMultiplier)
}

func TestUpdateSkipsAlertBelowThreshold(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(nil, notifier, 90)

	snap := history(1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3)
	svc.Update(context.Background(), snap, snap)

	assert.Empty(t, notifier.sent)
}

func TestUpdateResolvesPendingPrediction(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil, 100)
	ctx := context.Background()

	values := []float64{1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3}
	snap := history(values...)
	svc.Update(ctx, snap, snap)

	// 2.5 >= 1.41
	next := history(append(values, 2.5)...)
	svc.Update(ctx, next[1:], next[10:])

	require.Len(t, store.resolved, 1)
	assert.Equal(t, resolution{id: 1, roundID: 11, status: models.PredictionStatusSuccess}, store.resolved[0])
	assert.Len(t, store.added, 2)
}

func TestUpdateResolvesWithoutNumericRoundID(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil, 100)
	ctx := context.Background()

	snap := history(1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3)
	svc.Update(ctx, snap, snap)

	next := models.Outcome{ID: "round-x", Timestamp: 99000, Multiplier: 1.0}
	svc.Update(ctx, append(snap[1:], next), []models.Outcome{next})

	require.Len(t, store.updated, 1)
	assert.Equal(t, models.PredictionStatusFail, store.updated[0].status)
}

func TestUpdateSurvivesStoreFailure(t *testing.T) {
	store := &fakeStore{addErr: errors.New("connection refused")}
	svc := newTestService(store, nil, 100)

	snap := history(1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3)
	result := svc.Update(context.Background(), snap, snap)

	assert.True(t, result.Available())
	assert.Empty(t, svc.pending)
}

type listingStore struct {
	fakeStore
	pending []models.PredictionRecord
}

func (l *listingStore) PendingPredictions(ctx context.Context) ([]models.PredictionRecord, error) {
	return l.pending, nil
}

func TestRestoreAdoptsNewestPending(t *testing.T) {
	store := &listingStore{pending: []models.PredictionRecord{
		{ID: 3, PredictedMultiplier: 2.0, PredictionTime: time.UnixMilli(1500), ResultStatus: models.PredictionStatusPending},
		{ID: 4, PredictedMultiplier: 1.8, PredictionTime: time.UnixMilli(2500), ResultStatus: models.PredictionStatusPending},
	}}
	svc := newTestService(store, nil, 100)
	ctx := context.Background()

	require.NoError(t, svc.Restore(ctx))

	snap := history(1.2, 1.3, 1.9)
	svc.Update(ctx, snap, snap[2:])

	require.Len(t, store.resolved, 1)
	assert.Equal(t, resolution{id: 4, roundID: 3, status: models.PredictionStatusSuccess}, store.resolved[0])
}

func TestRestoreWaitsForRoundAfterPrediction(t *testing.T) {
	madeAt := time.Date(2026, 10, 19, 0, 21, 55, 0, time.UTC)
	store := &listingStore{pending: []models.PredictionRecord{
		{ID: 42, PredictedMultiplier: 1.4, PredictionTime: madeAt, ResultStatus: models.PredictionStatusPending},
	}}
	svc := newTestService(store, nil, 100)
	svc.now = func() time.Time { return madeAt.Add(time.Minute) }
	ctx := context.Background()

	require.NoError(t, svc.Restore(ctx))

	// the window loaded on start holds only rounds from before the prediction
	window := make([]models.Outcome, 12)
	for i := range window {
		ts := madeAt.Add(-time.Hour + time.Duration(i)*time.Second)
		window[i] = models.Outcome{ID: strconv.Itoa(100 + i), Timestamp: ts.UnixMilli(), Multiplier: 1.2 + 0.1*float64(i%4)}
	}
	svc.Update(ctx, window, window)

	assert.Empty(t, store.resolved)
	assert.Empty(t, store.updated)
	require.Len(t, store.added, 1)

	// the first round after both predictions resolves them
	next := models.Outcome{ID: "200", Timestamp: madeAt.Add(2 * time.Minute).UnixMilli(), Multiplier: 1.0}
	svc.Update(ctx, append(window[1:], next), []models.Outcome{next})

	require.Len(t, store.resolved, 2)
	assert.Equal(t, resolution{id: 42, roundID: 200, status: models.PredictionStatusFail}, store.resolved[0])
	assert.Equal(t, int64(200), store.resolved[1].roundID)
}

func TestPredictionOlderThanWindowIsNotResolved(t *testing.T) {
	madeAt := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	store := &listingStore{pending: []models.PredictionRecord{
		{ID: 7, PredictedMultiplier: 1.4, PredictionTime: madeAt, ResultStatus: models.PredictionStatusPending},
	}}
	svc := newTestService(store, nil, 100)
	ctx := context.Background()

	require.NoError(t, svc.Restore(ctx))

	window := []models.Outcome{
		{ID: "1", Timestamp: madeAt.Add(time.Hour).UnixMilli(), Multiplier: 2.0},
		{ID: "2", Timestamp: madeAt.Add(time.Hour + time.Second).UnixMilli(), Multiplier: 2.0},
	}
	svc.Update(ctx, window, window)

	assert.Empty(t, store.resolved)
	assert.Empty(t, store.updated)
	assert.Empty(t, svc.pending)
}

func TestUpdateDoesNotLinkRemoteRounds(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, nil, 100)
	svc.opts.LinkRounds = false
	ctx := context.Background()

	values := []float64{1.2, 1.3, 1.1, 1.4, 1.2, 1.3, 1.6, 1.2, 1.4, 1.3}
	snap := history(values...)
	svc.Update(ctx, snap, snap)

	next := history(append(values, 2.5)...)
	svc.Update(ctx, next[1:], next[10:])

	assert.Empty(t, store.resolved)
	require.Len(t, store.updated, 1)
	assert.Equal(t, resolution{id: 1, status: models.PredictionStatusSuccess}, store.updated[0])
}

func TestRestoreWithoutStore(t *testing.T) {
	svc := newTestService(nil, nil, 100)
	assert.NoError(t, svc.Restore(context.Background()))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, models.PredictionStatusSuccess, Resolve(1.5, 1.5))
	assert.Equal(t, models.PredictionStatusSuccess, Resolve(1.5, 3))
	assert.Equal(t, models.PredictionStatusFail, Resolve(1.5, 1.49))
}
