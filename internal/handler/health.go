package handler

import (
	"net/http"
)

// Pinger is anything that can report whether it is reachable.
type Pinger interface {
	Ping() error
}

// HandleHealth returns a handler for GET /healthz that pings the store.
func HandleHealth(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
