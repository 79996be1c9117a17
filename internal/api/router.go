package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/blackboxsec/blackbox/internal/service"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Jobs     *service.JobService
	Profiles *service.ProfileService
	Logger   *slog.Logger // optional; request logging is skipped when nil
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet, http.MethodHead)

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	profileHandlers := &ProfileHandlers{Svc: services.Profiles}

	apiRoutes := r.PathPrefix("/api").Subrouter()
	apiRoutes.HandleFunc("/jobs", jobHandlers.CreateJob).Methods(http.MethodPost)
	apiRoutes.HandleFunc("/jobs", jobHandlers.ListJobs).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/jobs/stale", jobHandlers.ListStaleJobs).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/jobs/{id:[0-9]+}", jobHandlers.GetJob).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/jobs/{id:[0-9]+}/runs", jobHandlers.ListJobRuns).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/jobs/{id:[0-9]+}/results", jobHandlers.ListJobResults).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/stats", jobHandlers.GetStats).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/profile", profileHandlers.GetProfile).Methods(http.MethodGet)
	apiRoutes.HandleFunc("/profile/switch", profileHandlers.SwitchProfile).Methods(http.MethodPost)
	apiRoutes.HandleFunc("/profile/log", profileHandlers.GetProfileLog).Methods(http.MethodGet)

	if services.Logger != nil {
		return requestLogging(services.Logger)(r)
	}
	return r
}

// requestLogging logs one line per request with method, path, status and latency.
func requestLogging(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
