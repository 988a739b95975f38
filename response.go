package agentwire

// TurnResponse is the backend's reply to a non-streaming turn. It carries
// the same information a streamed turn accumulates, delivered in one payload.
type TurnResponse struct {
	// SessionID is the session the turn ran in.
	SessionID string `json:"session_id"`

	// Response is the full assistant text.
	Response string `json:"response"`

	// ToolCalls lists the tool invocations the turn performed, resolved.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// AgentsUsed lists participating sub-agents for workflow turns.
	AgentsUsed []string `json:"agents_used,omitempty"`
}
