package httpserver

import (
	"net/http"
	"time"
)

// New builds the API server with timeouts suited to this service: header
// reads are bounded against slowloris clients, and writes get room for the
// larger document and share-link payloads. Per-request deadlines are the
// router's timeout middleware's job.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
