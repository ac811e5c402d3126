package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server. Timeouts are generous because field clients
// often sit on degraded links; per-route deadlines are enforced by the
// timeout middleware instead.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
