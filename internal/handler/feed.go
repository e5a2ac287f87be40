package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
)

// heartbeatInterval keeps idle SSE connections from being reaped by proxies.
const heartbeatInterval = 25 * time.Second

// streamFeed serves the live order feed as server-sent events. The current
// snapshot is delivered on connect, then every change produces a fresh
// snapshot event. Clients that stop reading are disconnected by the hub.
func (h *Handler) streamFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := h.feed.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				// Dropped by the hub for falling behind.
				zctx.From(r.Context()).Warn("Feed subscriber dropped")
				return
			}
			if _, err := w.Write([]byte("event: " + ev.Name + "\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(ev.Data); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
