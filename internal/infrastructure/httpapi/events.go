package httpapi

import (
	"encoding/json"
	"net/http"
)

// handleMonitorEvents provides Server-Sent Events mirroring the monitor
// WebSocket stream, for clients that cannot hold a WS connection.
// Path: /api/monitor/events
func (d *Deps) handleMonitorEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAM_UNSUPPORTED", "stream unsupported", nil)
		return
	}

	sub := d.Monitor.Subscribe()
	defer d.Monitor.Unsubscribe(sub)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub:
			if !open {
				return
			}
			writeSSE(w, flusher, ev.Type, ev)
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	_, _ = w.Write([]byte("event: " + event + "\ndata: "))
	// json.Encoder terminates the data line with \n
	_ = json.NewEncoder(w).Encode(data)
	_, _ = w.Write([]byte("\n"))
	flusher.Flush()
}
