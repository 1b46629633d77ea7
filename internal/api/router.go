// Package api exposes the translation service over HTTP.
package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"doc-translator/internal/config"
	"doc-translator/internal/job"
)

// NewRouter builds the HTTP API around the job queue.
func NewRouter(cfg *config.Config, queue *job.Queue) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length"},
		MaxAge:         300,
	}))

	h := NewHandler(cfg, queue)

	r.Post("/translate", h.Translate)
	r.Get("/status/{job_id}", h.Status)
	r.Get("/download/{job_id}", h.Download)
	r.Get("/jobs", h.ListJobs)
	r.Delete("/jobs/{job_id}", h.CancelJob)
	r.Get("/health", h.Health)

	return r
}
