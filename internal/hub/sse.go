package hub

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// ServeSSE streams events as Server-Sent Events
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.Attach(r.Context(), "sse")
	if err != nil {
		log.WithError(err).Warn("SSE subscribe failed")
		http.Error(w, "live channel unavailable", http.StatusServiceUnavailable)
		return
	}
	defer h.Detach(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Browsers reconnect after this many milliseconds
	fmt.Fprintf(w, "retry: %d\n\n", h.cfg.ReconnectHint.Milliseconds())
	flusher.Flush()

	ticker := time.NewTicker(h.cfg.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.Events():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
