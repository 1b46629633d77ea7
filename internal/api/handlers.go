package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"doc-translator/internal/config"
	"doc-translator/internal/extract"
	"doc-translator/internal/job"
	"doc-translator/internal/logger"
)

// maxUploadBytes caps request bodies; large media still fits.
const maxUploadBytes = 1 << 30

// contentTypes maps artifact extensions to download media types.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".srt":  "application/x-subrip",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// Handler serves the translation endpoints.
type Handler struct {
	cfg   *config.Config
	queue *job.Queue
}

func NewHandler(cfg *config.Config, queue *job.Queue) *Handler {
	return &Handler{cfg: cfg, queue: queue}
}

// Translate accepts a multipart upload and queues a translation job.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "missing file field in multipart form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	if _, err := extract.DetectFormat(filename); err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type %s (supported: %s)",
			ext, strings.Join(extract.SupportedExtensions(), ", ")), http.StatusBadRequest)
		return
	}

	rec, err := h.saveAndEnqueue(filename, ext, file)
	if err != nil {
		logger.Error("upload failed", err)
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, map[string]string{
		"job_id":     rec.ID,
		"status":     string(rec.Status),
		"status_url": "/status/" + rec.ID,
	}, http.StatusAccepted)
}

func (h *Handler) saveAndEnqueue(filename, ext string, src io.Reader) (*job.Record, error) {
	// The upload keeps only the job ID and the extension on disk; the
	// original name lives in the job record.
	id := job.NewID()
	uploadPath := filepath.Join(h.cfg.UploadDir, id+ext)

	dst, err := os.Create(uploadPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(uploadPath)
		return nil, err
	}
	dst.Close()

	rec, err := h.queue.Enqueue(id, filename, uploadPath)
	if err != nil {
		os.Remove(uploadPath)
		return nil, err
	}
	return rec, nil
}

// Status reports a job's state and progress.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadJob(w, r)
	if !ok {
		return
	}

	jsonResponse(w, map[string]interface{}{
		"job_id":           rec.ID,
		"status":           rec.Status,
		"filename":         rec.Filename,
		"progress":         rec.Progress,
		"blocks_total":     rec.BlocksTotal,
		"blocks_done":      rec.BlocksDone,
		"error":            rec.Error,
		"duration_seconds": rec.DurationSeconds(),
	}, http.StatusOK)
}

// Download streams a finished job's artifact.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadJob(w, r)
	if !ok {
		return
	}

	switch rec.Status {
	case job.StatusFailed:
		jsonError(w, "job failed: "+rec.Error, http.StatusConflict)
		return
	case job.StatusDone:
	default:
		jsonError(w, "job not finished yet", http.StatusConflict)
		return
	}

	f, err := os.Open(rec.OutputPath)
	if err != nil {
		jsonError(w, "output artifact missing", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(rec.OutputPath))
	ct := contentTypes[ext]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(rec.OutputPath)))
	io.Copy(w, f)
}

// ListJobs returns every job, newest first.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queue.List()
	if err != nil {
		jsonError(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []*job.Record{}
	}
	jsonResponse(w, jobs, http.StatusOK)
}

// CancelJob stops a pending or running job.
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadJob(w, r)
	if !ok {
		return
	}
	if err := h.queue.Cancel(rec.ID); err != nil {
		jsonError(w, "failed to cancel job", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]string{"job_id": rec.ID, "status": "cancelled"}, http.StatusOK)
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (h *Handler) loadJob(w http.ResponseWriter, r *http.Request) (*job.Record, bool) {
	id := chi.URLParam(r, "job_id")
	if id == "" {
		jsonError(w, "missing job ID", http.StatusBadRequest)
		return nil, false
	}
	rec, err := h.queue.Get(id)
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	return rec, true
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
