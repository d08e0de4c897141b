// Package runindex keeps a SQLite index of runs and their sampled ticks so
// modes and tunables can be compared after the fact.
package runindex

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"mirror-ca/internal/logging"
	"mirror-ca/internal/sims/mirror"
)

var ErrClosed = errors.New("runindex: closed")

// Run describes one simulation run.
type Run struct {
	ID         string
	Mode       mirror.Mode
	N          int
	Seed       int64
	SpawnRate  int
	Lifespan   int
	Mirrored   bool
	StartedAt  time.Time
	FinishedAt time.Time

	// Final holds the last published stats; zero until FinishRun.
	Final mirror.Stats
}

// RunFromConfig fills the descriptive fields of a run from cfg.
func RunFromConfig(id string, cfg mirror.Config) Run {
	return Run{
		ID:        id,
		Mode:      cfg.Mode,
		N:         cfg.N,
		Seed:      cfg.Seed,
		SpawnRate: cfg.Params.SpawnRate,
		Lifespan:  cfg.Params.Lifespan,
		Mirrored:  cfg.Mirrored,
	}
}

// Sample is one indexed tick.
type Sample struct {
	Tick          uint64
	LiveA         int
	LiveB         int
	SpawnedA      int
	SpawnedB      int
	Annihilations int
}

type reqKind int

const (
	reqSample reqKind = iota + 1
	reqFinish
)

type req struct {
	kind  reqKind
	run   string
	stats mirror.Stats
	at    time.Time
}

// Index writes samples from a single goroutine. Samples are dropped when the
// writer falls behind; run rows are never dropped. Its methods are safe to
// call concurrently with Close.
type Index struct {
	db  *sql.DB
	log logging.Logger

	// mu guards sends on ch against Close.
	mu      sync.RWMutex
	ch      chan req
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Int64
	failed  atomic.Int64
}

// Open creates or opens the index at path.
func Open(path string, log logging.Logger) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("runindex: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	idx := &Index{
		db:  db,
		log: logging.OrNoOp(log),
		ch:  make(chan req, 16384),
	}
	idx.wg.Add(1)
	go func() {
		defer idx.wg.Done()
		idx.loop()
	}()
	return idx, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			n INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			spawn_rate INTEGER NOT NULL,
			lifespan INTEGER NOT NULL,
			mirrored INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			ticks INTEGER NOT NULL DEFAULT 0,
			live_a INTEGER NOT NULL DEFAULT 0,
			live_b INTEGER NOT NULL DEFAULT 0,
			total_spawned_a INTEGER NOT NULL DEFAULT 0,
			total_spawned_b INTEGER NOT NULL DEFAULT 0,
			total_annihilations INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			tick INTEGER NOT NULL,
			live_a INTEGER NOT NULL,
			live_b INTEGER NOT NULL,
			spawned_a INTEGER NOT NULL,
			spawned_b INTEGER NOT NULL,
			annihilations INTEGER NOT NULL,
			PRIMARY KEY (run_id, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode, started_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// StartRun inserts the run row synchronously so later samples can reference it.
func (x *Index) StartRun(ctx context.Context, r Run) error {
	if x == nil || x.closed.Load() {
		return ErrClosed
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(id,mode,n,seed,spawn_rate,lifespan,mirrored,started_at) VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, string(r.Mode), r.N, r.Seed, r.SpawnRate, r.Lifespan, boolInt(r.Mirrored),
		r.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Sample queues the stats of a completed tick. It never blocks the caller.
func (x *Index) Sample(run string, s mirror.Stats) {
	if x == nil {
		return
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed.Load() {
		return
	}
	select {
	case x.ch <- req{kind: reqSample, run: run, stats: s}:
	default:
		x.dropped.Add(1)
	}
}

// FinishRun queues the final stats for run. It blocks until queued.
func (x *Index) FinishRun(run string, s mirror.Stats) error {
	if x == nil {
		return ErrClosed
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed.Load() {
		return ErrClosed
	}
	x.ch <- req{kind: reqFinish, run: run, stats: s, at: time.Now()}
	return nil
}

// Dropped returns the number of samples discarded because the writer lagged.
func (x *Index) Dropped() int64 { return x.dropped.Load() }

// Failed returns the number of queued writes the database rejected.
func (x *Index) Failed() int64 { return x.failed.Load() }

// Close drains pending writes and closes the database.
func (x *Index) Close() error {
	var err error
	x.once.Do(func() {
		x.mu.Lock()
		x.closed.Store(true)
		close(x.ch)
		x.mu.Unlock()
		x.wg.Wait()
		err = x.db.Close()
	})
	return err
}

func (x *Index) loop() {
	ctx := context.Background()
	insertSample, err := x.db.Prepare(`INSERT OR REPLACE INTO samples(run_id,tick,live_a,live_b,spawned_a,spawned_b,annihilations) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		x.log.Errorf("runindex: prepare samples: %v", err)
	}
	finishRun, err := x.db.Prepare(`UPDATE runs SET finished_at=?, ticks=?, live_a=?, live_b=?, total_spawned_a=?, total_spawned_b=?, total_annihilations=? WHERE id=?`)
	if err != nil {
		x.log.Errorf("runindex: prepare finish: %v", err)
	}
	defer func() {
		if insertSample != nil {
			_ = insertSample.Close()
		}
		if finishRun != nil {
			_ = finishRun.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 1000
		commitMaxWait = time.Second
	)
	begin := func() {
		if tx != nil {
			return
		}
		t, err := x.db.BeginTx(ctx, nil)
		if err != nil {
			x.log.Warnf("runindex: begin: %v", err)
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = t
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			x.log.Warnf("runindex: commit: %v", err)
		}
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	for r := range x.ch {
		begin()
		if tx == nil {
			continue
		}
		s := r.stats
		switch r.kind {
		case reqSample:
			if insertSample == nil {
				continue
			}
			if _, err := tx.Stmt(insertSample).Exec(r.run, int64(s.Ticks), s.LiveA, s.LiveB, s.SpawnedA, s.SpawnedB, s.Annihilations); err != nil {
				// A rejected row leaves the rest of the batch intact.
				x.log.Warnf("runindex: sample %s@%d: %v", r.run, s.Ticks, err)
				x.failed.Add(1)
				continue
			}
			opCount++
		case reqFinish:
			if finishRun == nil {
				continue
			}
			if _, err := tx.Stmt(finishRun).Exec(
				r.at.UTC().Format(time.RFC3339Nano), int64(s.Ticks), s.LiveA, s.LiveB,
				s.TotalSpawnedA, s.TotalSpawnedB, s.TotalAnnihilations, r.run,
			); err != nil {
				x.log.Warnf("runindex: finish %s: %v", r.run, err)
				x.failed.Add(1)
			}
			// Run rows are small and rare; make them durable right away.
			commit()
			continue
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}
	commit()
}

// Runs lists indexed runs, newest first, optionally filtered by mode.
func (x *Index) Runs(ctx context.Context, mode mirror.Mode) ([]Run, error) {
	q := `SELECT id,mode,n,seed,spawn_rate,lifespan,mirrored,started_at,COALESCE(finished_at,''),ticks,live_a,live_b,total_spawned_a,total_spawned_b,total_annihilations FROM runs`
	var args []any
	if mode != "" {
		q += ` WHERE mode=?`
		args = append(args, string(mode))
	}
	q += ` ORDER BY started_at DESC, id`
	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                 Run
			modeText          string
			mirrored          int
			started, finished string
			ticks             int64
		)
		if err := rows.Scan(&r.ID, &modeText, &r.N, &r.Seed, &r.SpawnRate, &r.Lifespan, &mirrored, &started, &finished,
			&ticks, &r.Final.LiveA, &r.Final.LiveB, &r.Final.TotalSpawnedA, &r.Final.TotalSpawnedB, &r.Final.TotalAnnihilations); err != nil {
			return nil, err
		}
		r.Mode = mirror.Mode(modeText)
		r.Mirrored = mirrored != 0
		r.Final.Ticks = uint64(ticks)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Samples returns the indexed ticks of run in tick order.
func (x *Index) Samples(ctx context.Context, run string) ([]Sample, error) {
	rows, err := x.db.QueryContext(ctx,
		`SELECT tick,live_a,live_b,spawned_a,spawned_b,annihilations FROM samples WHERE run_id=? ORDER BY tick`, run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var s Sample
		var tick int64
		if err := rows.Scan(&tick, &s.LiveA, &s.LiveB, &s.SpawnedA, &s.SpawnedB, &s.Annihilations); err != nil {
			return nil, err
		}
		s.Tick = uint64(tick)
		out = append(out, s)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
