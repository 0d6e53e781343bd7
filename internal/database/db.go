package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/AviatorPredictor/models"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds the lib/pq connection string
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id BIGSERIAL PRIMARY KEY,
			multiplier DOUBLE PRECISION NOT NULL CHECK (multiplier >= 0),
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			inserted_by TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS rounds_timestamp_idx ON rounds (timestamp)`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id BIGSERIAL PRIMARY KEY,
			round_id BIGINT REFERENCES rounds (id),
			predicted_multiplier DOUBLE PRECISION NOT NULL,
			confidence INTEGER NOT NULL,
			prediction_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			result_status TEXT NOT NULL DEFAULT 'pending'
				CHECK (result_status IN ('pending', 'success', 'fail')),
			inserted_by TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS predictions_time_idx ON predictions (prediction_time)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecentRounds returns the newest limit rounds, oldest first
func (db *DB) RecentRounds(ctx context.Context, limit int) ([]models.Round, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, multiplier, timestamp, COALESCE(inserted_by, '')
		FROM (
			SELECT id, multiplier, timestamp, inserted_by
			FROM rounds
			ORDER BY timestamp DESC, id DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC, id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent rounds: %w", err)
	}
	return scanRounds(rows)
}

// RoundsForPeriod returns the rounds of the last period, oldest first
func (db *DB) RoundsForPeriod(ctx context.Context, period models.Period, now time.Time) ([]models.Round, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, multiplier, timestamp, COALESCE(inserted_by, '')
		FROM rounds
		WHERE timestamp >= $1
		ORDER BY timestamp ASC, id ASC
	`, period.Since(now))
	if err != nil {
		return nil, fmt.Errorf("querying rounds for period %s: %w", period, err)
	}
	return scanRounds(rows)
}

// AddRound stores a new round
func (db *DB) AddRound(ctx context.Context, multiplier float64, insertedBy string) (*models.Round, error) {
	var r models.Round
	var by sql.NullString

	err := db.QueryRowContext(ctx, `
		INSERT INTO rounds (multiplier, inserted_by)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, multiplier, timestamp, inserted_by
	`, multiplier, insertedBy).Scan(&r.ID, &r.Multiplier, &r.Timestamp, &by)
	if err != nil {
		return nil, fmt.Errorf("inserting round: %w", err)
	}

	if by.Valid {
		r.InsertedBy = by.String
	}
	return &r, nil
}

// AddPrediction stores a new prediction
func (db *DB) AddPrediction(ctx context.Context, p models.PredictionRecord) (*models.PredictionRecord, error) {
	if p.ResultStatus == "" {
		p.ResultStatus = models.PredictionStatusPending
	}
	if err := validateStatus(p.ResultStatus); err != nil {
		return nil, err
	}

	var roundID sql.NullInt64
	if p.RoundID != nil {
		roundID = sql.NullInt64{Int64: *p.RoundID, Valid: true}
	}

	err := db.QueryRowContext(ctx, `
		INSERT INTO predictions (round_id, predicted_multiplier, confidence, result_status, inserted_by)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING id, prediction_time
	`, roundID, p.PredictedMultiplier, p.Confidence, p.ResultStatus, p.InsertedBy).Scan(&p.ID, &p.PredictionTime)
	if err != nil {
		return nil, fmt.Errorf("inserting prediction: %w", err)
	}

	return &p, nil
}

// RecentPredictions returns the newest predictions, newest first
func (db *DB) RecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, round_id, predicted_multiplier, confidence, prediction_time, result_status, COALESCE(inserted_by, '')
		FROM predictions
		ORDER BY prediction_time DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	return scanPredictions(rows)
}

// PendingPredictions returns unresolved predictions, oldest first
func (db *DB) PendingPredictions(ctx context.Context) ([]models.PredictionRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, round_id, predicted_multiplier, confidence, prediction_time, result_status, COALESCE(inserted_by, '')
		FROM predictions
		WHERE result_status = $1
		ORDER BY prediction_time ASC, id ASC
	`, models.PredictionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("querying pending predictions: %w", err)
	}
	return scanPredictions(rows)
}

// UpdatePredictionStatus updates a prediction's status
func (db *DB) UpdatePredictionStatus(ctx context.Context, id int64, status string) error {
	if err := validateStatus(status); err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE predictions
		SET result_status = $1
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("updating prediction %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating prediction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("prediction %d: %w", id, ErrNotFound)
	}
	return nil
}

// ResolvePrediction links a prediction to the round it was checked against
func (db *DB) ResolvePrediction(ctx context.Context, id, roundID int64, status string) error {
	if err := validateStatus(status); err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		UPDATE predictions
		SET result_status = $1, round_id = $2
		WHERE id = $3
	`, status, roundID, id)
	if err != nil {
		return fmt.Errorf("resolving prediction %d: %w", id, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("prediction %d: %w", id, ErrNotFound)
	}
	return nil
}

// Stats summarizes the prediction lifecycle
func (db *DB) Stats(ctx context.Context) (*models.PredictionStats, error) {
	var stats models.PredictionStats
	var last sql.NullTime

	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE result_status <> 'pending'),
			COUNT(*) FILTER (WHERE result_status = 'success'),
			COUNT(*) FILTER (WHERE result_status = 'pending'),
			MAX(prediction_time)
		FROM predictions
	`).Scan(&stats.TotalPredictions, &stats.CorrectPredictions, &stats.PendingPredictions, &last)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}

	if last.Valid {
		stats.LastUpdated = last.Time
	}
	stats.Accuracy = Accuracy(stats.CorrectPredictions, stats.TotalPredictions)
	return &stats, nil
}

// Accuracy returns the percentage of correct predictions rounded to an integer
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64((correct*100 + total/2) / total)
}

func validateStatus(status string) error {
	switch status {
	case models.PredictionStatusPending, models.PredictionStatusSuccess, models.PredictionStatusFail:
		return nil
	}
	return fmt.Errorf("invalid prediction status %q", status)
}

func scanRounds(rows *sql.Rows) ([]models.Round, error) {
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		var r models.Round
		if err := rows.Scan(&r.ID, &r.Multiplier, &r.Timestamp, &r.InsertedBy); err != nil {
			return nil, fmt.Errorf("scanning round: %w", err)
		}
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rounds: %w", err)
	}
	return rounds, nil
}

func scanPredictions(rows *sql.Rows) ([]models.PredictionRecord, error) {
	defer rows.Close()

	var predictions []models.PredictionRecord
	for rows.Next() {
		var p models.PredictionRecord
		var roundID sql.NullInt64
		if err := rows.Scan(&p.ID, &roundID, &p.PredictedMultiplier, &p.Confidence,
			&p.PredictionTime, &p.ResultStatus, &p.InsertedBy); err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		if roundID.Valid {
			id := roundID.Int64
			p.RoundID = &id
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating predictions: %w", err)
	}
	return predictions, nil
}
