package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"DipSentinel/internal/logger"
	"DipSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder stores the latest snapshot in a SQLite database so it survives
// restarts and can be read by external dashboards.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logger.Nop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a pass is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", logger.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS latest_snapshot (
			id          INTEGER PRIMARY KEY CHECK (id = 1),
			run_id      TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			universe    INTEGER,
			error       TEXT,
			payload     TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS latest_results (
			symbol       TEXT PRIMARY KEY,
			run_id       TEXT NOT NULL,
			score        INTEGER,
			tier         TEXT,
			close        REAL,
			change_pct   REAL,
			volume_ratio REAL,
			rsi          REAL,
			ema          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_latest_results_score ON latest_results(score)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Record replaces the stored snapshot and its per-symbol rows in one transaction.
func (r *SQLiteRecorder) Record(snap *model.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO latest_snapshot
		(id, run_id, started_at, finished_at, universe, error, payload)
		VALUES (1,?,?,?,?,?,?)`,
		snap.RunID, snap.StartedAt.UnixMilli(), snap.FinishedAt.UnixMilli(),
		snap.Universe, snap.Error, string(payload),
	); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM latest_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	if snap.Report != nil {
		stmt, err := tx.Prepare(`INSERT INTO latest_results
			(symbol, run_id, score, tier, close, change_pct, volume_ratio, rsi, ema)
			VALUES (?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare results: %w", err)
		}
		defer stmt.Close()
		for _, res := range snap.Report.Results {
			ind := res.Indicators
			if _, err := stmt.Exec(res.Symbol, snap.RunID, res.Score, string(res.Tier),
				ind.Close, ind.ChangePct, ind.VolumeRatio, ind.RSI, ind.EMA); err != nil {
				return fmt.Errorf("write result %s: %w", res.Symbol, err)
			}
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) Latest() (*model.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var payload string
	err := r.db.QueryRow(`SELECT payload FROM latest_snapshot WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap := &model.Snapshot{}
	if err := json.Unmarshal([]byte(payload), snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
