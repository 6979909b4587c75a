package bootstrap

import (
	"context"
	"net"
	"net/http"
	"time"
)

// NewServer wraps handler in an HTTP server whose request contexts are
// cancelled when Shutdown starts, so open event streams return instead of
// holding the shutdown until its deadline.
func NewServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}
