package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/network"

	_ "modernc.org/sqlite"
)

var ErrNotInitialized = errors.New("storage: history is not initialized")

// History records the incumbent score of evolution runs in SQLite.
type History struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewHistory(path string) *History {
	return &History{path: path}
}

func (h *History) Init(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.path == "" {
		return errors.New("storage: history path is required")
	}
	if h.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", h.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	h.db = db
	return nil
}

// Point is one recorded incumbent.
type Point struct {
	Iteration int
	Score     float64
	Nodes     int
	Arcs      int
}

// RunSummary describes a recorded run.
type RunSummary struct {
	ID         string
	Started    time.Time
	Points     int
	BestScore  float64
	FinalScore float64
}

func (h *History) Append(ctx context.Context, runID string, p Point) error {
	db, err := h.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, started) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, runID, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO scores (run_id, iteration, score, nodes, arcs)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, iteration) DO UPDATE SET
			score = excluded.score,
			nodes = excluded.nodes,
			arcs = excluded.arcs
	`, runID, p.Iteration, p.Score, p.Nodes, p.Arcs)
	return err
}

// Scores returns the points of runID in iteration order.
func (h *History) Scores(ctx context.Context, runID string) ([]Point, error) {
	db, err := h.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT iteration, score, nodes, arcs FROM scores
		WHERE run_id = ? ORDER BY iteration
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Iteration, &p.Score, &p.Nodes, &p.Arcs); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Runs summarises every run, oldest first.
func (h *History) Runs(ctx context.Context) ([]RunSummary, error) {
	db, err := h.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.started, COUNT(s.iteration), MIN(s.score),
			(SELECT score FROM scores WHERE run_id = r.id ORDER BY iteration DESC LIMIT 1)
		FROM runs r JOIN scores s ON s.run_id = r.id
		GROUP BY r.id, r.started
		ORDER BY r.started, r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Points, &r.BestScore, &r.FinalScore); err != nil {
			return nil, err
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

// Recorder adapts the history to an evolution observer. Write failures are
// logged and do not stop the search.
func (h *History) Recorder(ctx context.Context, runID string) evolve.Observer {
	return evolve.ObserverFunc(func(sys *network.System, score float64, iteration int) {
		p := Point{Iteration: iteration, Score: score, Nodes: sys.CountNodes(), Arcs: sys.CountArcs()}
		if err := h.Append(ctx, runID, p); err != nil {
			logrus.Warnf("storage: record iteration %d of %s: %v", iteration, runID, err)
		}
	})
}

func (h *History) getDB() (*sql.DB, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.db == nil {
		return nil, ErrNotInitialized
	}
	return h.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS scores (
			run_id TEXT NOT NULL REFERENCES runs(id),
			iteration INTEGER NOT NULL,
			score REAL NOT NULL,
			nodes INTEGER NOT NULL,
			arcs INTEGER NOT NULL,
			PRIMARY KEY (run_id, iteration)
		);
	`)
	return err
}
