package server

import (
	"net/http"
	"time"

	"todo-sync/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the non-CRUD surface of the router.
type Options struct {
	Service    string
	Env        string
	HealthPath string
}

func (o *Options) fillDefaults() {
	if o.Service == "" {
		o.Service = "todo-sync"
	}
	if o.Env == "" {
		o.Env = "development"
	}
	if o.HealthPath == "" {
		o.HealthPath = "/healthz"
	}
}

func NewRouter(st storage.Storage, opts Options) *chi.Mux {
	opts.fillDefaults()
	start := time.Now()

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(corsHeaders)
	r.Use(httpMetrics)

	r.Get("/todos", listTodosHandler(st))
	r.Post("/todos", createTodoHandler(st))
	r.Put("/todos/{id}", updateTodoHandler(st))
	r.Delete("/todos/{id}", deleteTodoHandler(st))

	r.Get(opts.HealthPath, healthHandler(opts, start))
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})

	return r
}

func healthHandler(opts Options, start time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": opts.Service,
			"time":    time.Now().UTC().Format(time.RFC3339),
			"uptime":  time.Since(start).Round(time.Second).String(),
			"env":     opts.Env,
		})
	}
}
