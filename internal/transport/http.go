package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a router with client identification and a health check.
// Routes that need authentication are mounted by the caller with AuthMiddleware.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(ClientInfoMiddleware)
	r.Get("/health", handleHealth)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
