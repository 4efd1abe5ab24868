package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Alias1177/Forecaster/internal/forecast"
	"github.com/Alias1177/Forecaster/models"
)

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

// DSN returns the lib/pq connection string
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
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forecast_runs (
			run_id TEXT PRIMARY KEY,
			symbol TEXT NOT NULL,
			interval_seconds BIGINT NOT NULL,
			generated_at TIMESTAMPTZ NOT NULL,
			last_observed TIMESTAMPTZ NOT NULL,
			last_close DOUBLE PRECISION NOT NULL,
			train_pairs INTEGER NOT NULL,
			test_pairs INTEGER NOT NULL,
			final_loss DOUBLE PRECISION NOT NULL,
			test_rmse DOUBLE PRECISION NOT NULL,
			directional_accuracy DOUBLE PRECISION NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create forecast_runs: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forecast_points (
			run_id TEXT NOT NULL REFERENCES forecast_runs(run_id) ON DELETE CASCADE,
			step INTEGER NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			predicted_price DOUBLE PRECISION NOT NULL,
			direction TEXT NOT NULL,
			PRIMARY KEY (run_id, step)
		)
	`)
	if err != nil {
		return fmt.Errorf("create forecast_points: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS forecast_runs_symbol_generated_idx
		ON forecast_runs (symbol, generated_at DESC)
	`)
	return err
}

// SaveForecast stores a run and its points in one transaction
func (db *DB) SaveForecast(ctx context.Context, res *forecast.Result) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO forecast_runs (
			run_id, symbol, interval_seconds, generated_at, last_observed, last_close,
			train_pairs, test_pairs, final_loss, test_rmse, directional_accuracy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		res.RunID, res.Symbol, int64(res.Interval/time.Second), res.GeneratedAt, res.LastObserved, res.LastClose,
		res.TrainPairs, res.TestPairs, res.Training.FinalLoss, res.Evaluation.RMSE, res.Evaluation.DirectionalAccuracy)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("forecast_points", "run_id", "step", "ts", "predicted_price", "direction"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for _, r := range res.Records {
		if _, err := stmt.ExecContext(ctx, res.RunID, r.Step, r.Timestamp, r.PredictedPrice, string(r.Direction)); err != nil {
			stmt.Close()
			return fmt.Errorf("copy point %d: %w", r.Step, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush points: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return tx.Commit()
}

// LatestForecast returns the most recent stored run for symbol, or nil if none
func (db *DB) LatestForecast(ctx context.Context, symbol string) (*forecast.Result, error) {
	var res forecast.Result
	var intervalSeconds int64

	err := db.QueryRowContext(ctx, `
		SELECT run_id, symbol, interval_seconds, generated_at, last_observed, last_close,
			train_pairs, test_pairs, final_loss, test_rmse, directional_accuracy
		FROM forecast_runs
		WHERE symbol = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, symbol).Scan(
		&res.RunID, &res.Symbol, &intervalSeconds, &res.GeneratedAt, &res.LastObserved, &res.LastClose,
		&res.TrainPairs, &res.TestPairs, &res.Training.FinalLoss, &res.Evaluation.RMSE, &res.Evaluation.DirectionalAccuracy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No forecast found
		}
		return nil, err
	}
	res.Interval = time.Duration(intervalSeconds) * time.Second

	rows, err := db.QueryContext(ctx, `
		SELECT step, ts, predicted_price, direction
		FROM forecast_points
		WHERE run_id = $1
		ORDER BY step
	`, res.RunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r models.PredictionRecord
		var direction string
		if err := rows.Scan(&r.Step, &r.Timestamp, &r.PredictedPrice, &direction); err != nil {
			return nil, err
		}
		r.Direction = models.Direction(direction)
		res.Records = append(res.Records, r)
	}
	return &res, rows.Err()
}

// PruneForecasts deletes runs generated before cutoff
func (db *DB) PruneForecasts(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM forecast_runs WHERE generated_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
