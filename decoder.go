package agentwire

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// defaultEventName is the SSE event name assumed when no "event:" line has
// been seen for the current frame.
const defaultEventName = "message"

// DecodeStats counts what the decoder saw. Malformed and unknown frames are
// tolerated (one bad line must never kill a turn), but they are counted here
// so callers can observe silent drops instead of losing them without trace.
type DecodeStats struct {
	// Events is the number of well-formed events yielded.
	Events int

	// MalformedFrames is the number of "data:" lines dropped because the
	// payload was not a well-formed JSON object of the declared kind's shape.
	MalformedFrames int

	// UnknownKinds is the number of well-formed frames carrying an event name
	// the client does not recognize.
	UnknownKinds int
}

// Decoder incrementally turns raw response-body bytes into typed StreamEvents.
//
// The wire grammar is SSE-like: "event: <name>" lines select the kind for the
// frame, "data: <json>" lines carry the payload, and a blank line terminates
// the frame (resetting the kind to "message"). Bytes arrive in arbitrary,
// non-line-aligned chunks; the decoder owns line reassembly, so feeding it the
// same stream split at any byte boundaries yields the same event sequence.
//
// A Decoder is single-use: it holds the pending partial line between Decode
// calls and is not restartable or safe for concurrent use.
type Decoder struct {
	pending   []byte
	eventName string
	stats     DecodeStats
	log       *slog.Logger
}

// NewDecoder creates a decoder for one stream. logger may be nil, in which
// case slog.Default() is used for drop diagnostics.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		eventName: defaultEventName,
		log:       logger,
	}
}

// Decode consumes the next chunk of bytes and returns the events completed by
// it, in arrival order. Content after the final "\n" is buffered for the next
// call; if the stream ends without a trailing newline, that tail is dropped
// (the decoder performs no EOF flush; a frame is only real once its line
// terminator arrives).
func (d *Decoder) Decode(chunk []byte) []StreamEvent {
	d.pending = append(d.pending, chunk...)

	var events []StreamEvent
	for {
		i := bytes.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		line := string(d.pending[:i])
		d.pending = d.pending[i+1:]

		if ev := d.processLine(line); ev != nil {
			events = append(events, ev)
		}
	}

	// Reclaim the consumed prefix so the buffer doesn't grow unbounded on
	// long streams.
	if len(d.pending) == 0 {
		d.pending = nil
	} else {
		d.pending = append([]byte(nil), d.pending...)
	}

	return events
}

// Stats returns a snapshot of the decoder's counters.
func (d *Decoder) Stats() DecodeStats {
	return d.stats
}

// processLine handles one complete line and returns a decoded event, or nil
// if the line was a field line, a blank frame separator, or a dropped frame.
func (d *Decoder) processLine(line string) StreamEvent {
	line = strings.TrimSpace(line)

	// A blank line ends the frame; the event name resets to the default.
	if line == "" {
		d.eventName = defaultEventName
		return nil
	}

	if name, ok := strings.CutPrefix(line, "event: "); ok {
		d.eventName = name
		return nil
	}

	payload, ok := strings.CutPrefix(line, "data: ")
	if !ok {
		// Comments and unrecognized field lines are ignored.
		return nil
	}

	// The payload must be a JSON object. Anything else, including valid
	// non-object JSON like null or a bare number (which would unmarshal into
	// a zero-value event) and frames truncated by the server, is dropped
	// without failing the stream.
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "{") || !json.Valid([]byte(payload)) {
		d.stats.MalformedFrames++
		d.log.Debug("dropping malformed stream frame",
			"event", d.eventName,
			"payload_len", len(payload))
		return nil
	}

	ev, err := parseEvent(EventKind(d.eventName), []byte(payload))
	if err != nil {
		// Valid JSON whose shape doesn't match the declared kind.
		d.stats.MalformedFrames++
		d.log.Debug("dropping mis-shaped stream frame",
			"event", d.eventName,
			"error", err)
		return nil
	}
	if ev == nil {
		d.stats.UnknownKinds++
		d.log.Debug("skipping unknown stream event kind", "event", d.eventName)
		return nil
	}

	d.stats.Events++
	return ev
}
