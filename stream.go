package agentwire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// streamChannelBuffer is the event channel buffer size. Buffered so the
// reader goroutine can stay ahead of a slow consumer without blocking on
// every event.
const streamChannelBuffer = 16

// readChunkSize is the transport read size. Chunks are handed to the decoder
// as they arrive; the decoder owns line reassembly, so the size only affects
// syscall granularity.
const readChunkSize = 4096

// StreamChat opens a streaming chat turn. The returned channel yields the
// turn's events in arrival order and is closed when the turn ends. Cancel
// ctx to abort the turn; cancellation tears down the underlying request.
func (c *Client) StreamChat(ctx context.Context, req *TurnRequest) (<-chan StreamEvent, error) {
	return c.stream(ctx, "/api/chat/stream", req)
}

// StreamAgent opens a streaming turn against the named agent.
func (c *Client) StreamAgent(ctx context.Context, req *TurnRequest) (<-chan StreamEvent, error) {
	if req.Agent == "" {
		return nil, &ValidationError{Field: "agent", Reason: "agent name is required", Err: ErrInvalidRequest}
	}
	return c.stream(ctx, "/api/agents/"+url.PathEscape(req.Agent)+"/stream", req)
}

// StreamWorkflow opens a streaming turn against the named multi-agent
// workflow.
func (c *Client) StreamWorkflow(ctx context.Context, req *TurnRequest) (<-chan StreamEvent, error) {
	if req.Workflow == "" {
		return nil, &ValidationError{Field: "workflow", Reason: "workflow name is required", Err: ErrInvalidRequest}
	}
	return c.stream(ctx, "/api/workflows/"+url.PathEscape(req.Workflow)+"/stream", req)
}

// Stream opens a streaming turn through the given entry point. The three
// Stream* methods are thin wrappers over this; exposing the call site keeps
// callers that select the entry point at runtime out of the switch business.
func (c *Client) Stream(ctx context.Context, site CallSite, req *TurnRequest) (<-chan StreamEvent, error) {
	switch site {
	case CallSiteAgent:
		return c.StreamAgent(ctx, req)
	case CallSiteWorkflow:
		return c.StreamWorkflow(ctx, req)
	default:
		return c.StreamChat(ctx, req)
	}
}

// stream performs the streaming request and feeds the response body through
// a Decoder into the returned channel.
//
// Failure semantics: a request that cannot even be constructed returns an
// error. Everything after that (dial failure, non-2xx status, missing body,
// mid-stream read error) is synthesized as exactly one terminal error event
// on the channel, so the consuming state machine sees a uniform event
// sequence regardless of where the turn died. No body is read when the
// response has none.
func (c *Client) stream(ctx context.Context, path string, req *TurnRequest) (<-chan StreamEvent, error) {
	if err := ValidateTurnRequest(req); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("agentwire: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("agentwire: build request: %w", err)
	}
	c.setHeaders(httpReq, true)

	events := make(chan StreamEvent, streamChannelBuffer)

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		events <- &ErrorEvent{Err: fmt.Sprintf("connection failed: %v", err)}
		close(events)
		return events, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		berr := c.errorFromResponse(resp)
		resp.Body.Close()
		events <- &ErrorEvent{Err: berr.Error()}
		close(events)
		return events, nil
	}
	if resp.Body == nil {
		events <- &ErrorEvent{Err: "response has no body"}
		close(events)
		return events, nil
	}

	go c.readEvents(ctx, resp, events)

	return events, nil
}

// readEvents pulls bytes from the response body, decodes them, and forwards
// events until the stream ends or ctx is cancelled. Runs in its own
// goroutine; sole writer of the channel.
func (c *Client) readEvents(ctx context.Context, resp *http.Response, events chan<- StreamEvent) {
	defer close(events)
	defer resp.Body.Close()

	dec := NewDecoder(c.log)
	buf := make([]byte, readChunkSize)

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Decode(buf[:n]) {
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
		if err != nil {
			// EOF is the normal end of stream. A cancelled context also
			// surfaces as a read error; the caller initiated that, so it is
			// not reported as a turn error either.
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				select {
				case events <- &ErrorEvent{Err: fmt.Sprintf("stream read failed: %v", err)}:
				case <-ctx.Done():
				}
			}
			stats := dec.Stats()
			if stats.MalformedFrames > 0 || stats.UnknownKinds > 0 {
				c.log.Debug("stream finished with dropped frames",
					"events", stats.Events,
					"malformed", stats.MalformedFrames,
					"unknown_kinds", stats.UnknownKinds)
			}
			return
		}
	}
}
