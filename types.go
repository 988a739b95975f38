package agentwire

import "time"

// Message role constants
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one finalized entry in a conversation's history. Messages are
// immutable once appended; insertion order is display order.
type Message struct {
	// ID is a client-assigned identity for the history entry.
	ID string `json:"id"`

	// Role is "user", "assistant", or "system".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Images holds optional attached images as data URIs.
	Images []string `json:"images,omitempty"`

	// ToolCalls is the snapshot of the turn's tool invocations taken at
	// finalize time (transfer pseudo-tools filtered in multi-agent mode).
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// AgentsUsed lists the sub-agents that participated in the turn, in
	// first-seen order. Absent (nil) outside multi-agent turns, which is
	// distinct from an empty list.
	AgentsUsed []string `json:"agents_used,omitempty"`
}

// HasToolCalls returns true if the message carries a tool-call snapshot.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// IsAssistant returns true for assistant messages.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// Session identifies one persistent conversation on the backend, spanning
// multiple turns.
type Session struct {
	ID        string    `json:"session_id"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
