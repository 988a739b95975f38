package agentwire

import (
	"encoding/json"
	"time"
)

// EventKind discriminates between stream event kinds.
// On the wire this is the SSE event name (the backend calls it "event").
type EventKind string

// Known event kinds
const (
	EventKindStart           EventKind = "start"
	EventKindToken           EventKind = "token"
	EventKindToolCall        EventKind = "tool_call"
	EventKindToolResult      EventKind = "tool_result"
	EventKindApprovalRequest EventKind = "approval_request"
	EventKindAgentStart      EventKind = "agent_start"
	EventKindAgentEnd        EventKind = "agent_end"
	EventKindDone            EventKind = "done"
	EventKindError           EventKind = "error"
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	return string(k)
}

// IsValid returns true if the kind is one the client knows how to handle.
// Unknown kinds are tolerated by the decoder (counted and skipped), never fatal.
func (k EventKind) IsValid() bool {
	switch k {
	case EventKindStart, EventKindToken, EventKindToolCall, EventKindToolResult,
		EventKindApprovalRequest, EventKindAgentStart, EventKindAgentEnd,
		EventKindDone, EventKindError:
		return true
	default:
		return false
	}
}

// StreamEvent is the interface implemented by all decoded stream events.
// Exactly one concrete type exists per event kind; consumers switch on the
// concrete type (or on Kind()) to dispatch.
type StreamEvent interface {
	Kind() EventKind
}

// StartEvent opens a turn. It carries the server-assigned session id, which
// the client adopts if it does not already know one.
type StartEvent struct {
	SessionID string `json:"session_id"`
}

// Kind returns the event kind.
func (e *StartEvent) Kind() EventKind { return EventKindStart }

// TokenEvent carries one incremental chunk of generated assistant text.
type TokenEvent struct {
	Content string `json:"content"`
}

// Kind returns the event kind.
func (e *TokenEvent) Kind() EventKind { return EventKindToken }

// ToolCallEvent announces a server-initiated tool invocation.
// Arguments is the raw argument payload as sent by the backend; the client
// treats it as opaque text and never parses it.
type ToolCallEvent struct {
	ToolID    string `json:"tool_id"`
	ToolName  string `json:"tool_name"`
	Arguments string `json:"arguments,omitempty"`
}

// Kind returns the event kind.
func (e *ToolCallEvent) Kind() EventKind { return EventKindToolCall }

// ToolResultEvent resolves an earlier tool invocation by id.
type ToolResultEvent struct {
	ToolID string `json:"tool_id"`
	Result string `json:"result,omitempty"`
}

// Kind returns the event kind.
func (e *ToolResultEvent) Kind() EventKind { return EventKindToolResult }

// ApprovalRequestEvent asks a human to approve, reject, or cancel a gated
// tool execution. The request is owned by the conversation, not by the tool
// call that triggered it: the approval may be resolved long after the
// originating stream has finished.
type ApprovalRequestEvent struct {
	ApprovalID string         `json:"approval_id"`
	ToolID     string         `json:"tool_id"`
	ToolName   string         `json:"tool_name"`
	Message    string         `json:"message,omitempty"`
	ToolArgs   map[string]any `json:"tool_args,omitempty"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	Config     ApprovalConfig `json:"config"`
}

// Kind returns the event kind.
func (e *ApprovalRequestEvent) Kind() EventKind { return EventKindApprovalRequest }

// AgentStartEvent marks a sub-agent taking over in a multi-agent turn.
type AgentStartEvent struct {
	Name string `json:"name"`
}

// Kind returns the event kind.
func (e *AgentStartEvent) Kind() EventKind { return EventKindAgentStart }

// AgentEndEvent marks the currently active sub-agent relinquishing control.
type AgentEndEvent struct {
	Name string `json:"name,omitempty"`
}

// Kind returns the event kind.
func (e *AgentEndEvent) Kind() EventKind { return EventKindAgentEnd }

// DoneEvent terminates a turn successfully. Servers that never emitted token
// events may attach the full response text here instead, either as a plain
// Response string or as a Message object.
type DoneEvent struct {
	Response string      `json:"response,omitempty"`
	Message  doneMessage `json:"message,omitempty"`
}

// Kind returns the event kind.
func (e *DoneEvent) Kind() EventKind { return EventKindDone }

// FallbackContent returns the full-text content to use when no tokens were
// streamed, or "" if the event carries none.
func (e *DoneEvent) FallbackContent() string {
	if e.Response != "" {
		return e.Response
	}
	return e.Message.Content
}

// doneMessage is the "message" field of a done event. Backends send it either
// as a plain string or as a {role, content} object, so it needs a tolerant
// unmarshal.
type doneMessage struct {
	Role    string
	Content string
}

func (m *doneMessage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Content = s
		return nil
	}

	var obj struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	m.Role = obj.Role
	m.Content = obj.Content
	return nil
}

// ErrorEvent terminates a turn with a server-reported failure. The transport
// also synthesizes one of these for HTTP-level failures.
type ErrorEvent struct {
	Err string `json:"error,omitempty"`
}

// Kind returns the event kind.
func (e *ErrorEvent) Kind() EventKind { return EventKindError }

// Text returns the error message, or a generic fallback if the server sent
// an error event with no message.
func (e *ErrorEvent) Text() string {
	if e.Err == "" {
		return "an unknown error occurred"
	}
	return e.Err
}

// parseEvent decodes a single frame payload into a typed StreamEvent.
// It returns (nil, nil) for kinds the client does not recognize; the decoder
// counts those instead of failing the stream.
func parseEvent(kind EventKind, data []byte) (StreamEvent, error) {
	switch kind {
	case EventKindStart:
		var e StartEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindToken:
		var e TokenEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindToolCall:
		var e ToolCallEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindToolResult:
		var e ToolResultEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindApprovalRequest:
		var e ApprovalRequestEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindAgentStart:
		var e AgentStartEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindAgentEnd:
		var e AgentEndEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindDone:
		var e DoneEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	case EventKindError:
		var e ErrorEvent
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, err
		}
		return &e, nil
	default:
		return nil, nil
	}
}
