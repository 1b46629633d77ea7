// Package job persists translation jobs in sqlite and runs them one at a
// time on a background worker. Jobs survive restarts: anything left in the
// running state is re-queued as pending when the queue comes back up.
package job

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"doc-translator/internal/config"
	"doc-translator/internal/extract"
	"doc-translator/internal/logger"
	"doc-translator/internal/pipeline"
	"doc-translator/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL DEFAULT 'pending',
	filename TEXT NOT NULL,
	upload_path TEXT NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	blocks_total INTEGER NOT NULL DEFAULT 0,
	blocks_done INTEGER NOT NULL DEFAULT 0,
	output_path TEXT,
	error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	started_at DATETIME,
	completed_at DATETIME
);`

// Queue owns the jobs table and the single worker goroutine.
type Queue struct {
	db   *sql.DB
	pipe *pipeline.Pipeline
	cfg  *config.Config

	mu      sync.Mutex
	cancels map[string]context.CancelFunc

	pending chan string
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewQueue opens (or creates) the job database and starts the worker.
func NewQueue(cfg *config.Config, pipe *pipeline.Pipeline) (*Queue, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot open job database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, types.NewAppError(types.ErrInternal, "cannot migrate job database", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		db:      db,
		pipe:    pipe,
		cfg:     cfg,
		cancels: make(map[string]context.CancelFunc),
		pending: make(chan string, 100),
		ctx:     ctx,
		cancel:  cancel,
	}

	q.resumeJobs()
	go q.worker()

	return q, nil
}

// NewID allocates a short job identifier.
func NewID() string {
	return uuid.New().String()[:8]
}

// Enqueue registers a new job for an uploaded file and queues it. The ID
// comes from the caller so the upload can be stored under it first.
func (q *Queue) Enqueue(id, filename, uploadPath string) (*Record, error) {
	rec := &Record{
		ID:         id,
		Status:     StatusPending,
		Filename:   filename,
		UploadPath: uploadPath,
		CreatedAt:  time.Now(),
	}

	_, err := q.db.Exec(`
		INSERT INTO jobs (id, status, filename, upload_path, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Status, rec.Filename, rec.UploadPath, rec.CreatedAt)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "cannot persist job", err)
	}

	select {
	case q.pending <- rec.ID:
	default:
		logger.Warn("job queue channel full, job waits for restart pickup",
			logger.String("jobID", rec.ID))
	}

	return rec, nil
}

// Get loads one job record.
func (q *Queue) Get(id string) (*Record, error) {
	return q.scanJob(q.db.QueryRow(`
		SELECT id, status, filename, upload_path, progress, blocks_total,
		       blocks_done, output_path, error, created_at, started_at, completed_at
		FROM jobs WHERE id = ?`, id))
}

// List returns all jobs, newest first.
func (q *Queue) List() ([]*Record, error) {
	rows, err := q.db.Query(`
		SELECT id, status, filename, upload_path, progress, blocks_total,
		       blocks_done, output_path, error, created_at, started_at, completed_at
		FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Record
	for rows.Next() {
		rec, err := q.scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, rec)
	}
	return jobs, rows.Err()
}

// Cancel stops a pending or running job.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	if cancelFn, ok := q.cancels[id]; ok {
		cancelFn()
		delete(q.cancels, id)
	}
	q.mu.Unlock()

	_, err := q.db.Exec(`
		UPDATE jobs SET status = ?, error = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusFailed, "cancelled", time.Now(), id, StatusPending, StatusRunning)
	return err
}

// Stop shuts down the worker and closes the database.
func (q *Queue) Stop() {
	q.cancel()
	q.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (q *Queue) scanJob(row rowScanner) (*Record, error) {
	rec := &Record{}
	var outputPath, errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&rec.ID, &rec.Status, &rec.Filename, &rec.UploadPath,
		&rec.Progress, &rec.BlocksTotal, &rec.BlocksDone,
		&outputPath, &errMsg, &rec.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	rec.OutputPath = outputPath.String
	rec.Error = errMsg.String
	if startedAt.Valid {
		rec.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return rec, nil
}

// worker runs queued jobs one at a time.
func (q *Queue) worker() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case id := <-q.pending:
			q.processJob(id)
		}
	}
}

func (q *Queue) processJob(id string) {
	rec, err := q.Get(id)
	if err != nil {
		logger.Error("cannot load queued job", err, logger.String("jobID", id))
		return
	}
	if rec.Status != StatusPending {
		return
	}

	now := time.Now()
	q.db.Exec("UPDATE jobs SET status = ?, started_at = ? WHERE id = ?",
		StatusRunning, now, rec.ID)

	ctx, cancelFn := context.WithCancel(q.ctx)
	q.mu.Lock()
	q.cancels[rec.ID] = cancelFn
	q.mu.Unlock()
	defer func() {
		q.mu.Lock()
		delete(q.cancels, rec.ID)
		q.mu.Unlock()
		cancelFn()
	}()

	format, err := extract.DetectFormat(rec.Filename)
	if err != nil {
		q.failJob(rec.ID, err)
		return
	}
	outputPath := filepath.Join(q.cfg.OutputDir, q.pipe.OutputName(rec.Filename, format))

	progress := func(done, total int, blockID string) {
		pct := 0
		if total > 0 {
			pct = done * 100 / total
		}
		q.db.Exec("UPDATE jobs SET progress = ?, blocks_total = ?, blocks_done = ? WHERE id = ?",
			pct, total, done, rec.ID)
	}

	out, err := q.pipe.TranslateFile(ctx, rec.UploadPath, outputPath, progress)
	if err == nil {
		// A cancelled job can still run to completion because per-block
		// translation failures fall back to source text.
		err = ctx.Err()
	}
	if err != nil {
		q.failJob(rec.ID, err)
		return
	}

	q.db.Exec(`UPDATE jobs SET status = ?, progress = 100, output_path = ?, completed_at = ?
		WHERE id = ? AND status = ?`, StatusDone, out, time.Now(), rec.ID, StatusRunning)
	logger.Info("job complete", logger.String("jobID", rec.ID), logger.String("output", out))
}

// failJob stores the job's terminal error. AppError messages keep their
// Details so remediation hints reach the status endpoint. Only a running
// job transitions; a cancellation already recorded stays untouched.
func (q *Queue) failJob(id string, err error) {
	q.db.Exec("UPDATE jobs SET status = ?, error = ?, completed_at = ? WHERE id = ? AND status = ?",
		StatusFailed, err.Error(), time.Now(), id, StatusRunning)
	logger.Error("job failed", err, logger.String("jobID", id))
}

// resumeJobs re-queues work left over from a previous run.
func (q *Queue) resumeJobs() {
	q.db.Exec("UPDATE jobs SET status = ? WHERE status = ?", StatusPending, StatusRunning)

	rows, err := q.db.Query("SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC", StatusPending)
	if err != nil {
		logger.Error("cannot resume jobs", err)
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		select {
		case q.pending <- id:
			count++
		default:
		}
	}
	if count > 0 {
		logger.Info("resumed queued jobs", logger.Int("count", count))
	}
}
