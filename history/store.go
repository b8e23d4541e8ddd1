package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/maze-rl/types"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	environment  TEXT NOT NULL,
	config_yaml  TEXT,
	status       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS episodes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	episode     INTEGER NOT NULL,
	mode        TEXT NOT NULL,
	steps       INTEGER NOT NULL,
	return_sum  INTEGER NOT NULL,
	terminal    INTEGER NOT NULL,
	epsilon     REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS episodes_run ON episodes(run_id, episode);
`

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusStopped   = "stopped"
	StatusFailed    = "failed"
)

type RunRecord struct {
	RunID       string
	Environment string
	ConfigYAML  string
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time
}

type EpisodeRecord struct {
	Episode  int
	Mode     string
	Steps    int
	Return   int
	Terminal bool
	Epsilon  float64
}

// Store keeps the history of training runs in SQLite
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun registers a new run and returns its id
func (s *Store) StartRun(environment, configYAML string) (string, error) {
	runID := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, environment, config_yaml, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, environment, configYAML, StatusRunning, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return runID, nil
}

func (s *Store) FinishRun(runID, status string) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		status, time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// RecordEpisodes writes the summaries in one transaction
func (s *Store) RecordEpisodes(runID string, summaries []types.EpisodeSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record episodes: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO episodes (run_id, episode, mode, steps, return_sum, terminal, epsilon) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("record episodes: %w", err)
	}
	defer stmt.Close()
	for _, e := range summaries {
		if _, err := stmt.Exec(runID, e.Episode, e.Mode.String(), e.Steps, e.Return, e.Terminal, e.Epsilon); err != nil {
			tx.Rollback()
			return fmt.Errorf("record episode %d: %w", e.Episode, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record episodes: %w", err)
	}
	return nil
}

func (s *Store) Runs() ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, environment, COALESCE(config_yaml, ''), status, started_at, COALESCE(finished_at, '') FROM runs ORDER BY started_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var started, finished string
		if err := rows.Scan(&r.RunID, &r.Environment, &r.ConfigYAML, &r.Status, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Episodes(runID string) ([]EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT episode, mode, steps, return_sum, terminal, epsilon FROM episodes WHERE run_id = ? ORDER BY episode`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var out []EpisodeRecord
	for rows.Next() {
		var e EpisodeRecord
		if err := rows.Scan(&e.Episode, &e.Mode, &e.Steps, &e.Return, &e.Terminal, &e.Epsilon); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
