package bench

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Schema: таблица агрегированных результатов запусков.
const Schema = `
CREATE TABLE IF NOT EXISTS bench_records (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL,
	algo            TEXT NOT NULL,
	jobs            INTEGER NOT NULL,
	machines        INTEGER NOT NULL,
	runs            INTEGER NOT NULL,
	time_best_ms    REAL NOT NULL,
	time_mean_ms    REAL NOT NULL,
	time_std_ms     REAL NOT NULL,
	makespan_best   INTEGER NOT NULL,
	makespan_mean   REAL NOT NULL,
	makespan_std    REAL NOT NULL,
	cost_best       INTEGER NOT NULL,
	cost_mean       REAL NOT NULL,
	objective_best  INTEGER NOT NULL,
	iterations_mean REAL NOT NULL,
	converged       INTEGER NOT NULL,
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bench_records_session ON bench_records(session_id);
`

// Store - SQLite-хранилище результатов бенчмарка.
type Store struct {
	DB *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if d := dirOf(path); d != "" && path != ":memory:" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// Одно соединение: ":memory:" иначе создаёт отдельную базу на каждое.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 10000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: pragma: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// SaveRecords сохраняет записи одной сессии в одной транзакции и возвращает её идентификатор.
func (s *Store) SaveRecords(ctx context.Context, records []Record) (string, error) {
	session := uuid.NewString()
	now := time.Now().Unix()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bench_records (
				id, session_id, algo, jobs, machines, runs,
				time_best_ms, time_mean_ms, time_std_ms,
				makespan_best, makespan_mean, makespan_std,
				cost_best, cost_mean, objective_best, iterations_mean, converged,
				created_at
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			uuid.NewString(), session, r.Algo, r.Jobs, r.Machines, r.Runs,
			r.TimeBestMs, r.TimeMeanMs, r.TimeStdMs,
			r.MakespanBest, r.MakespanMean, r.MakespanStd,
			r.CostBest, r.CostMean, r.ObjectiveBest, r.IterationsMean, r.Converged,
			now,
		)
		if err != nil {
			return "", fmt.Errorf("store: insert %s %dx%d: %w", r.Algo, r.Jobs, r.Machines, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit: %w", err)
	}
	return session, nil
}

// Records возвращает записи сессии в порядке вставки.
func (s *Store) Records(ctx context.Context, session string) ([]Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT algo, jobs, machines, runs,
			time_best_ms, time_mean_ms, time_std_ms,
			makespan_best, makespan_mean, makespan_std,
			cost_best, cost_mean, objective_best, iterations_mean, converged
		FROM bench_records WHERE session_id = ? ORDER BY rowid`, session)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.Algo, &r.Jobs, &r.Machines, &r.Runs,
			&r.TimeBestMs, &r.TimeMeanMs, &r.TimeStdMs,
			&r.MakespanBest, &r.MakespanMean, &r.MakespanStd,
			&r.CostBest, &r.CostMean, &r.ObjectiveBest, &r.IterationsMean, &r.Converged,
		); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
