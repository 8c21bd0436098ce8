package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ducminhle1904/dca-montecarlo/pkg/orchestrator"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets reports read while a watch run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                    TEXT PRIMARY KEY,
			timestamp             INTEGER NOT NULL,
			symbol                TEXT,
			monthly_investment    REAL,
			simulation_count      INTEGER,
			seed                  TEXT,
			start_price           REAL,
			source                TEXT,
			synthetic             INTEGER,
			mean_return           REAL,
			std_return            REAL,
			annualized_return     REAL,
			annualized_volatility REAL,
			duration_ms           INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS horizon_results (
			id                       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id                   TEXT NOT NULL REFERENCES runs(id),
			horizon_months           INTEGER NOT NULL,
			total_invested           REAL,
			p5                       REAL,
			p25                      REAL,
			median                   REAL,
			p75                      REAL,
			p95                      REAL,
			median_units             REAL,
			median_roi               REAL,
			median_annualized_return REAL,
			break_even_probability   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_horizon_run ON horizon_results(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run and all its horizons in one transaction.
func (r *SQLiteRecorder) RecordRun(run *orchestrator.RunResult) error {
	if run == nil || run.Calibration == nil {
		return fmt.Errorf("run has no calibration")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// uint64 seeds do not fit an SQLite INTEGER, so they are stored as text
	var seed interface{}
	if run.Seed != nil {
		seed = strconv.FormatUint(*run.Seed, 10)
	}

	cal := run.Calibration
	if _, err := tx.Exec(`INSERT INTO runs
		(id, timestamp, symbol, monthly_investment, simulation_count, seed, start_price, source, synthetic,
		 mean_return, std_return, annualized_return, annualized_volatility, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), run.Symbol, run.MonthlyInvestment, run.SimulationCount, seed,
		cal.StartPrice(), cal.Source, cal.Synthetic,
		cal.Stats.MeanPeriodReturn, cal.Stats.StdPeriodReturn,
		cal.Stats.AnnualizedReturn, cal.Stats.AnnualizedVolatility,
		run.Duration().Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, h := range run.Horizons {
		if _, err := tx.Exec(`INSERT INTO horizon_results
			(run_id, horizon_months, total_invested, p5, p25, median, p75, p95,
			 median_units, median_roi, median_annualized_return, break_even_probability)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, h.HorizonMonths, h.TotalInvested,
			h.Percentiles.P5, h.Percentiles.P25, h.Percentiles.Median, h.Percentiles.P75, h.Percentiles.P95,
			h.MedianUnits, h.MedianROI, h.MedianAnnualizedReturn, h.BreakEvenProbability,
		); err != nil {
			return fmt.Errorf("insert horizon %d: %w", h.HorizonMonths, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, symbol, monthly_investment, simulation_count,
		seed, start_price, source, synthetic
		FROM runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []RunSummary
	for rows.Next() {
		var (
			s    RunSummary
			ts   int64
			seed sql.NullString
		)
		if err := rows.Scan(&s.ID, &ts, &s.Symbol, &s.MonthlyInvestment, &s.SimulationCount,
			&seed, &s.StartPrice, &s.Source, &s.Synthetic); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Timestamp = time.Unix(ts, 0)
		if seed.Valid {
			v, err := strconv.ParseUint(seed.String, 10, 64)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("parse seed of run %s: %w", s.ID, err)
			}
			s.Seed = &v
		}
		runs = append(runs, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		horizons, err := r.horizons(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Horizons = horizons
	}
	return runs, nil
}

func (r *SQLiteRecorder) horizons(runID string) ([]HorizonSummary, error) {
	rows, err := r.db.Query(`SELECT horizon_months, total_invested, p5, median, p95, median_roi, break_even_probability
		FROM horizon_results WHERE run_id = ? ORDER BY horizon_months`, runID)
	if err != nil {
		return nil, fmt.Errorf("query horizons: %w", err)
	}
	defer rows.Close()

	var out []HorizonSummary
	for rows.Next() {
		var h HorizonSummary
		if err := rows.Scan(&h.HorizonMonths, &h.TotalInvested, &h.P5, &h.Median, &h.P95,
			&h.MedianROI, &h.BreakEvenProbability); err != nil {
			return nil, fmt.Errorf("scan horizon: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
