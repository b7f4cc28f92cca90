package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts suited to this API: every handler is
// a short synchronous database round trip, so slow clients get cut off early.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
