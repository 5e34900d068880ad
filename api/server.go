/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: Structured request logging (logrus)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/claims/*      Claim lifecycle
  /api/documents/*   Supporting-document download
  /api/reports/*     Approved-claims exports
  /api/lecturers/*   Lecturer directory
  /api/approvers/*   Approver directory

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Claim routes
		r.Route("/claims", func(r chi.Router) {
			r.Post("/", h.SubmitClaim)
			r.Get("/", h.ListClaims)
			r.Get("/pending", h.ListPendingClaims)
			r.Post("/auto-verify", h.AutoVerify)
			r.Get("/{id}", h.GetClaim)
			r.Post("/{id}/approve", h.ApproveClaim)
			r.Post("/{id}/reject", h.RejectClaim)
		})

		// Document routes
		r.Route("/documents", func(r chi.Router) {
			r.Get("/{id}", h.DownloadDocument)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/approved.csv", h.ApprovedReportCSV)
			r.Get("/approved.xlsx", h.ApprovedReportXLSX)
		})

		// Lecturer routes
		r.Route("/lecturers", func(r chi.Router) {
			r.Get("/", h.ListLecturers)
			r.Post("/", h.CreateLecturer)
			r.Get("/{id}", h.GetLecturer)
		})

		// Approver routes
		r.Route("/approvers", func(r chi.Router) {
			r.Get("/", h.ListApprovers)
			r.Post("/", h.CreateApprover)
		})
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
