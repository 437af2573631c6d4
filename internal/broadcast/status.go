package broadcast

import (
	"encoding/json"
	"net/http"
)

// Status is the engine state served on /status.
type Status struct {
	Active     bool   `json:"active"`
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Kind       string `json:"kind,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Source     string `json:"source,omitempty"`
}

type StatusFunc func() Status

func statusHandler(fn StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(fn()); err != nil {
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
		}
	}
}
