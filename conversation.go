package agentwire

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Conversation folds decoded stream events into the per-session view model:
// the finalized message history, the in-flight streaming buffer, the tool
// call registry, the pending approvals, and multi-agent attribution.
//
// A conversation processes one turn at a time. Events within a turn are
// applied strictly in arrival order by a single consumer (RunTurn); callers
// gate new submissions on IsStreaming. The pending-approval list is the one
// piece of per-turn state that outlives the turn: a human may resolve an
// approval after the stream that requested it has finished.
type Conversation struct {
	sessionID string
	caps      StreamCapabilities
	log       *slog.Logger

	messages  []Message
	buffer    strings.Builder
	streaming bool
	lastError string

	tools     *ToolCallRegistry
	approvals *ApprovalManager
	agents    *AgentTrail
}

// NewConversation creates a conversation for one session. resolver is used
// to post approval resolutions (normally the *Client); caps comes from the
// entry point the session streams through (see CapabilitiesFor). logger may
// be nil.
func NewConversation(resolver Resolver, caps StreamCapabilities, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversation{
		caps:      caps,
		log:       logger,
		tools:     NewToolCallRegistry(),
		approvals: NewApprovalManager(resolver),
		agents:    &AgentTrail{},
	}
}

// SessionID returns the adopted session id, or "" before the first start
// event of a fresh session.
func (c *Conversation) SessionID() string {
	return c.sessionID
}

// SetSessionID pins the session id for conversations resumed from history.
func (c *Conversation) SetSessionID(id string) {
	c.sessionID = id
}

// Messages returns the finalized history, insertion order.
func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// StreamingText returns the text accumulated by the in-flight turn so far.
func (c *Conversation) StreamingText() string {
	return c.buffer.String()
}

// IsStreaming reports whether a turn is currently in flight. Callers are
// expected to disable new submissions while true; the machine itself does
// not serialize concurrent turns.
func (c *Conversation) IsStreaming() bool {
	return c.streaming
}

// LastError returns the most recent session-level error text, or "".
func (c *Conversation) LastError() string {
	return c.lastError
}

// ActiveAgent returns the currently active sub-agent, or "".
func (c *Conversation) ActiveAgent() string {
	return c.agents.Active()
}

// ToolCalls returns a live snapshot of the current turn's tool invocations,
// unfiltered (internal transfer entries included).
func (c *Conversation) ToolCalls() []ToolCall {
	return c.tools.Snapshot(false)
}

// PendingApprovals returns the session's pending approvals, oldest first.
func (c *Conversation) PendingApprovals() []ApprovalRequest {
	return c.approvals.Pending()
}

// Approve resolves a pending approval positively and drops it from the
// pending list.
func (c *Conversation) Approve(ctx context.Context, approvalID, reason string) error {
	return c.approvals.Approve(ctx, approvalID, reason)
}

// Reject resolves a pending approval negatively. A missing reason on a
// request configured to require one is a local validation failure.
func (c *Conversation) Reject(ctx context.Context, approvalID, reason string) error {
	return c.approvals.Reject(ctx, approvalID, reason)
}

// Cancel withdraws a pending approval.
func (c *Conversation) Cancel(ctx context.Context, approvalID string) error {
	return c.approvals.Cancel(ctx, approvalID)
}

// AppendUser appends the user's own message to the history, typically right
// before submitting a turn.
func (c *Conversation) AppendUser(content string, images []string) {
	c.messages = append(c.messages, Message{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: content,
		Images:  images,
	})
}

// RunTurn consumes one turn's event channel to completion, applying each
// event in arrival order. It is the channel's sole consumer. It returns when
// the turn finalizes (done or error event), the channel closes, or ctx is
// cancelled; a cancelled or prematurely closed turn is finalized as errored
// so the conversation never sticks in streaming state.
func (c *Conversation) RunTurn(ctx context.Context, events <-chan StreamEvent) error {
	c.beginTurn()

	for {
		select {
		case <-ctx.Done():
			c.abortTurn("request cancelled")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if c.streaming {
					// The transport went away without a terminal event.
					c.abortTurn("stream ended unexpectedly")
				}
				return nil
			}
			c.Apply(ev)
			if !c.streaming {
				return nil
			}
		}
	}
}

// Apply dispatches a single event through the state machine. Exported so
// callers that manage their own consumption loop can drive the machine
// directly.
func (c *Conversation) Apply(ev StreamEvent) {
	switch e := ev.(type) {
	case *StartEvent:
		if c.sessionID == "" {
			c.sessionID = e.SessionID
		}
	case *TokenEvent:
		c.buffer.WriteString(e.Content)
	case *ToolCallEvent:
		c.tools.Insert(e, c.agents.Active())
	case *ToolResultEvent:
		if !c.tools.Resolve(e) {
			c.log.Debug("tool result for unknown tool id", "tool_id", e.ToolID)
		}
	case *ApprovalRequestEvent:
		c.approvals.Add(e)
		c.tools.MarkAwaitingApproval(e.ToolID)
	case *AgentStartEvent:
		c.agents.Start(e.Name)
	case *AgentEndEvent:
		c.agents.End()
	case *DoneEvent:
		c.finalize(e)
	case *ErrorEvent:
		c.fail(e.Text())
	}
}

// beginTurn arms the transient per-turn state.
func (c *Conversation) beginTurn() {
	c.streaming = true
	c.lastError = ""
	c.buffer.Reset()
	c.tools.Reset()
	c.agents.Reset()
}

// finalize constructs the turn's assistant message and appends it to history.
// When no tokens were streamed and the done event carries a fallback
// full-text field, that fallback becomes the content.
func (c *Conversation) finalize(ev *DoneEvent) {
	content := c.buffer.String()
	if content == "" {
		content = ev.FallbackContent()
	}

	c.messages = append(c.messages, Message{
		ID:         uuid.NewString(),
		Role:       RoleAssistant,
		Content:    content,
		ToolCalls:  c.tools.Snapshot(c.caps.MultiAgent),
		AgentsUsed: c.agents.Seen(),
	})
	c.endTurn()
}

// fail surfaces a terminal turn error. The default chat flow records it as a
// session-level error only; call sites configured with ErrorAsMessage also
// append it to the transcript as a synthetic assistant message.
func (c *Conversation) fail(text string) {
	c.lastError = text
	if c.caps.ErrorAsMessage {
		c.messages = append(c.messages, Message{
			ID:      uuid.NewString(),
			Role:    RoleAssistant,
			Content: "Error: " + text,
		})
	}
	c.endTurn()
}

// abortTurn closes out a turn that terminated without a server-side terminal
// event (cancellation, connection loss).
func (c *Conversation) abortTurn(text string) {
	c.fail(text)
}

// endTurn discards transient per-turn state. Pending approvals survive: they
// are session-scoped and may be resolved after the turn that created them.
func (c *Conversation) endTurn() {
	c.streaming = false
	c.buffer.Reset()
	c.tools.Reset()
	c.agents.Reset()
}
