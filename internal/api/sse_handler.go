package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamSession streams till state changes as Server-Sent Events. Every
// settings write — event start, checkout, tip, refill, close — produces
// one "session" event carrying the fresh SessionView, so secondary
// screens follow the till without polling.
func (h *Handler) StreamSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	setupSSEHeaders(w)

	ctx := r.Context()
	updates := h.Session.Subscribe(ctx)

	initial, _ := json.Marshal(h.sessionView())
	fmt.Fprintf(w, "event: session\ndata: %s\n\n", initial)
	flusher.Flush()

	h.Logger.Info("SSE", "client connected to session stream")

	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(h.sessionView())
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("failed to serialize session view: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: session\ndata: %s\n\n", data)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", "client disconnected from session stream")
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
