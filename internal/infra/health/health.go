package health

import (
	"net/http"
	"sync/atomic"
)

var ready atomic.Bool

// SetReady flips readiness; the process marks itself ready once the server is wired.
func SetReady(v bool) { ready.Store(v) }

func Ready() bool { return ready.Load() }

// Healthz is a liveness probe; it never touches the upstream exchange.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func Readyz(w http.ResponseWriter, r *http.Request) {
	if !Ready() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
