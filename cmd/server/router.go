package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/press-api/internal/api/middleware"
)

// setupRouter mounts the REST server under mountPath and adds /health.
func setupRouter(restHandler http.Handler, mountPath string, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.Trace(log))
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mount := strings.TrimSuffix(mountPath, "/")
	r.Handle(mount, restHandler)
	r.Handle(mount+"/*", restHandler)
	return r
}
