package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/Alias1177/AviatorPredictor/internal/analyze"
	"github.com/Alias1177/AviatorPredictor/internal/cache"
	"github.com/Alias1177/AviatorPredictor/models"
)

const (
	defaultLimit = 50
	maxLimit     = 1000
)

type addRoundRequest struct {
	Multiplier *float64 `json:"multiplier"`
	InsertedBy string   `json:"inserted_by"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Prediction returns the latest prediction. Until one exists the
// insufficient-data result is returned with 503.
func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	result, err := h.latest.Latest(r.Context())
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Error().Err(err).Msg("Reading latest prediction")
		}
		writeJSON(w, http.StatusServiceUnavailable, analyze.Insufficient())
		return
	}

	if !result.Available() {
		writeJSON(w, http.StatusServiceUnavailable, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Patterns describes the buffered outcomes
func (h *Handler) Patterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analyze.AnalyzePatterns(h.buffer.Snapshot(), h.params))
}

// ListRounds returns stored rounds, either the newest limit or a period
func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	if h.rounds == nil {
		writeError(w, http.StatusNotImplemented, "round storage is not configured")
		return
	}

	var (
		rounds []models.Round
		err    error
	)

	if p := r.URL.Query().Get("period"); p != "" {
		period, perr := models.ParsePeriod(p)
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		rounds, err = h.rounds.RoundsForPeriod(r.Context(), period, h.now())
	} else {
		limit, lerr := parseLimit(r)
		if lerr != nil {
			writeError(w, http.StatusBadRequest, lerr.Error())
			return
		}
		rounds, err = h.rounds.RecentRounds(r.Context(), limit)
	}

	if err != nil {
		h.logger.Error().Err(err).Msg("Listing rounds")
		writeError(w, http.StatusInternalServerError, "failed to list rounds")
		return
	}
	if rounds == nil {
		rounds = []models.Round{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

// AddRound stores a manually entered round
func (h *Handler) AddRound(w http.ResponseWriter, r *http.Request) {
	if h.rounds == nil {
		writeError(w, http.StatusNotImplemented, "round storage is not configured")
		return
	}

	var req addRoundRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Multiplier == nil {
		writeError(w, http.StatusBadRequest, "multiplier is required")
		return
	}
	m := *req.Multiplier
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		writeError(w, http.StatusBadRequest, "multiplier must be a non-negative number")
		return
	}
	if req.InsertedBy == "" {
		req.InsertedBy = "api"
	}

	round, err := h.rounds.AddRound(r.Context(), m, req.InsertedBy)
	if err != nil {
		h.logger.Error().Err(err).Msg("Adding round")
		writeError(w, http.StatusInternalServerError, "failed to add round")
		return
	}

	h.logger.Info().Int64("round_id", round.ID).Float64("multiplier", round.Multiplier).Msg("Round added")
	writeJSON(w, http.StatusCreated, round)
}

// ListPredictions returns the newest stored predictions
func (h *Handler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	if h.predictions == nil {
		writeError(w, http.StatusNotImplemented, "prediction storage is not configured")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := h.predictions.RecentPredictions(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Listing predictions")
		writeError(w, http.StatusInternalServerError, "failed to list predictions")
		return
	}
	if predictions == nil {
		predictions = []models.PredictionRecord{}
	}
	writeJSON(w, http.StatusOK, predictions)
}

// Stats returns prediction accuracy
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.predictions == nil {
		writeError(w, http.StatusNotImplemented, "prediction storage is not configured")
		return
	}

	stats, err := h.predictions.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Reading stats")
		writeError(w, http.StatusInternalServerError, "failed to read stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
