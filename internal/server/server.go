package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
	"github.com/Alias1177/AviatorPredictor/internal/logger"
	"github.com/Alias1177/AviatorPredictor/models"
)

// RoundRepository reads and stores rounds
type RoundRepository interface {
	RecentRounds(ctx context.Context, limit int) ([]models.Round, error)
	RoundsForPeriod(ctx context.Context, period models.Period, now time.Time) ([]models.Round, error)
	AddRound(ctx context.Context, multiplier float64, insertedBy string) (*models.Round, error)
}

// PredictionRepository reads stored predictions
type PredictionRepository interface {
	RecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error)
	Stats(ctx context.Context) (*models.PredictionStats, error)
}

// LatestPrediction returns the newest computed prediction
type LatestPrediction interface {
	Latest(ctx context.Context) (models.PredictionResult, error)
}

// Snapshotter returns the outcomes currently held for analysis
type Snapshotter interface {
	Snapshot() []models.Outcome
}

// HandlerDeps are the collaborators of the HTTP API. Rounds and
// Predictions may be nil when no database is configured.
type HandlerDeps struct {
	Rounds      RoundRepository
	Predictions PredictionRepository
	Latest      LatestPrediction
	Buffer      Snapshotter
	Params      analyze.Params
	Gatherer    prometheus.Gatherer
}

// Handler serves the prediction API
type Handler struct {
	rounds      RoundRepository
	predictions PredictionRepository
	latest      LatestPrediction
	buffer      Snapshotter
	params      analyze.Params
	gatherer    prometheus.Gatherer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewHandler creates the API handler
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		rounds:      deps.Rounds,
		predictions: deps.Predictions,
		latest:      deps.Latest,
		buffer:      deps.Buffer,
		params:      deps.Params,
		gatherer:    deps.Gatherer,
		logger:      logger.Component("http"),
		now:         time.Now,
	}
}

// Router builds the chi router with every endpoint mounted
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         60 * 15,
	}))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(rr chi.Router) {
		rr.Get("/prediction", h.Prediction)
		rr.Get("/patterns", h.Patterns)
		rr.Get("/rounds", h.ListRounds)
		rr.Post("/rounds", h.AddRound)
		rr.Get("/predictions", h.ListPredictions)
		rr.Get("/stats", h.Stats)
	})

	return r
}

// Server wraps http.Server with graceful shutdown
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

// New creates a server listening on addr
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.Component("http"),
	}
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("Starting HTTP server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP server")
	return s.srv.Shutdown(shutdownCtx)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		evt := h.logger.Debug()
		if ww.Status() >= http.StatusInternalServerError {
			evt = h.logger.Error()
		}
		evt.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
