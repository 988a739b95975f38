package wiretest

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// EventWriter sends SSE frames to an http.ResponseWriter, flushing after
// each so the client observes real streaming behavior.
type EventWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewEventWriter prepares w for an event stream. Returns nil if w does not
// support http.Flusher.
func NewEventWriter(w http.ResponseWriter) *EventWriter {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	return &EventWriter{w: w, flusher: flusher}
}

// Event writes one named frame with a JSON payload.
func (ew *EventWriter) Event(name string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		panic(fmt.Sprintf("wiretest: marshal event data: %v", err))
	}
	fmt.Fprintf(ew.w, "event: %s\ndata: %s\n\n", name, payload)
	ew.flusher.Flush()
}

// Raw writes verbatim bytes to the stream. Tests use it to inject malformed
// frames, comments, and split lines that a well-behaved server never sends.
func (ew *EventWriter) Raw(text string) {
	fmt.Fprint(ew.w, text)
	ew.flusher.Flush()
}

// Comment writes an SSE comment line (keep-alive ping).
func (ew *EventWriter) Comment(text string) {
	fmt.Fprintf(ew.w, ": %s\n\n", text)
	ew.flusher.Flush()
}
