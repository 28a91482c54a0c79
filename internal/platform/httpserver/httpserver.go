// Package httpserver constructs the audit API's http.Server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns the server serving the audit API. Only the header read is
// bounded here; whole-request deadlines belong to the router's timeout
// middleware, which has to accommodate cohort-wide aggregation runs.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
