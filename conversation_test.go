package agentwire

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversation(caps StreamCapabilities) (*Conversation, *recordingResolver) {
	resolver := &recordingResolver{}
	return NewConversation(resolver, caps, nil), resolver
}

// runEvents drives a turn synchronously through Apply.
func runEvents(c *Conversation, events ...StreamEvent) {
	c.beginTurn()
	for _, ev := range events {
		c.Apply(ev)
	}
}

func TestConversation_AdoptsSessionID(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	runEvents(c,
		&StartEvent{SessionID: "s1"},
		&DoneEvent{},
	)
	assert.Equal(t, "s1", c.SessionID())
}

func TestConversation_KeepsExistingSessionID(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	c.SetSessionID("original")
	runEvents(c,
		&StartEvent{SessionID: "different"},
		&DoneEvent{},
	)
	assert.Equal(t, "original", c.SessionID())
}

func TestConversation_TokenAccumulation(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	c.beginTurn()
	c.Apply(&TokenEvent{Content: "Hel"})
	c.Apply(&TokenEvent{Content: "lo"})

	assert.Equal(t, "Hello", c.StreamingText())
	assert.True(t, c.IsStreaming())

	c.Apply(&DoneEvent{})

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleAssistant, messages[0].Role)
	assert.Equal(t, "Hello", messages[0].Content)
	assert.NotEmpty(t, messages[0].ID)
	assert.False(t, c.IsStreaming())
	assert.Empty(t, c.StreamingText())
}

func TestConversation_DoneFallbackContent(t *testing.T) {
	tests := []struct {
		name string
		done *DoneEvent
		want string
	}{
		{name: "response field", done: &DoneEvent{Response: "full text"}, want: "full text"},
		{name: "message field", done: &DoneEvent{Message: doneMessage{Role: RoleAssistant, Content: "Hello"}}, want: "Hello"},
		{name: "no fallback", done: &DoneEvent{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestConversation(StreamCapabilities{})
			runEvents(c, tt.done)

			messages := c.Messages()
			require.Len(t, messages, 1)
			assert.Equal(t, tt.want, messages[0].Content)
		})
	}
}

func TestConversation_TokensWinOverFallback(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	runEvents(c,
		&TokenEvent{Content: "streamed"},
		&DoneEvent{Response: "fallback"},
	)

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "streamed", messages[0].Content)
}

func TestConversation_ToolCallLifecycle(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	c.beginTurn()
	c.Apply(&ToolCallEvent{ToolID: "t1", ToolName: "search_web"})

	calls := c.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, ToolStatusCalling, calls[0].Status)

	c.Apply(&ToolResultEvent{ToolID: "t1", Result: "3 hits"})
	calls = c.ToolCalls()
	assert.Equal(t, ToolStatusDone, calls[0].Status)
	assert.Equal(t, "3 hits", calls[0].Result)

	c.Apply(&DoneEvent{Response: "found it"})

	messages := c.Messages()
	require.Len(t, messages, 1)
	require.Len(t, messages[0].ToolCalls, 1)
	assert.Equal(t, "search_web", messages[0].ToolCalls[0].Name)
	assert.Equal(t, "3 hits", messages[0].ToolCalls[0].Result)

	// Transient registry cleared at finalize.
	assert.Empty(t, c.ToolCalls())
}

func TestConversation_OrphanedToolResultTolerated(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	runEvents(c,
		&ToolResultEvent{ToolID: "ghost", Result: "x"},
		&DoneEvent{Response: "ok"},
	)

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.False(t, messages[0].HasToolCalls())
}

func TestConversation_ApprovalStopsSpinner(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	c.beginTurn()
	c.Apply(&ToolCallEvent{ToolID: "t1", ToolName: "delete_file"})
	c.Apply(&ApprovalRequestEvent{ApprovalID: "a1", ToolID: "t1", ToolName: "delete_file"})

	calls := c.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, ToolStatusDone, calls[0].Status, "a tool blocked on a human is not executing")
	assert.Equal(t, pendingApprovalResult, calls[0].Result)

	pending := c.PendingApprovals()
	require.Len(t, pending, 1)
	assert.Equal(t, "a1", pending[0].ID)
}

func TestConversation_ApprovalsSurviveTurnEnd(t *testing.T) {
	c, resolver := newTestConversation(StreamCapabilities{})
	runEvents(c,
		&ToolCallEvent{ToolID: "t1", ToolName: "delete_file"},
		&ApprovalRequestEvent{ApprovalID: "a1", ToolID: "t1", ToolName: "delete_file"},
		&DoneEvent{Response: "awaiting your call"},
	)

	// Turn is over; a human resolves afterwards.
	require.Len(t, c.PendingApprovals(), 1)
	require.NoError(t, c.Approve(context.Background(), "a1", "looks fine"))
	assert.Empty(t, c.PendingApprovals())
	require.Len(t, resolver.calls, 1)
}

func TestConversation_MultiAgentTurn(t *testing.T) {
	c, _ := newTestConversation(CapabilitiesFor(CallSiteWorkflow))
	c.beginTurn()

	assert.Empty(t, c.ActiveAgent(), "nobody active before the first agent_start")

	c.Apply(&AgentStartEvent{Name: "math_expert"})
	assert.Equal(t, "math_expert", c.ActiveAgent())

	c.Apply(&ToolCallEvent{ToolID: "t2", ToolName: "calculate"})
	c.Apply(&ToolCallEvent{ToolID: "t9", ToolName: "transfer_to_research_expert"})
	c.Apply(&AgentEndEvent{})
	assert.Empty(t, c.ActiveAgent())

	c.Apply(&AgentStartEvent{Name: "research_expert"})
	assert.Equal(t, "research_expert", c.ActiveAgent())
	c.Apply(&AgentEndEvent{})

	c.Apply(&TokenEvent{Content: "42"})
	c.Apply(&DoneEvent{})

	messages := c.Messages()
	require.Len(t, messages, 1)

	assert.True(t, messages[0].IsAssistant())
	assert.Equal(t, []string{"math_expert", "research_expert"}, messages[0].AgentsUsed)

	// Transfer pseudo-tools filtered from the snapshot; real tool attributed
	// to the agent active when it was called.
	require.True(t, messages[0].HasToolCalls())
	require.Len(t, messages[0].ToolCalls, 1)
	assert.Equal(t, "calculate", messages[0].ToolCalls[0].Name)
	assert.Equal(t, "math_expert", messages[0].ToolCalls[0].AgentName)
}

func TestConversation_SingleAgentTurnOmitsAgentsUsed(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	runEvents(c,
		&TokenEvent{Content: "hi"},
		&DoneEvent{},
	)

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Nil(t, messages[0].AgentsUsed)
}

func TestConversation_ErrorDefaultFlow(t *testing.T) {
	c, _ := newTestConversation(CapabilitiesFor(CallSiteChat))
	runEvents(c,
		&TokenEvent{Content: "partial"},
		&ErrorEvent{Err: "model overloaded"},
	)

	assert.Equal(t, "model overloaded", c.LastError())
	assert.Empty(t, c.Messages(), "default chat flow does not append errors to history")
	assert.False(t, c.IsStreaming())
	assert.Empty(t, c.StreamingText())
}

func TestConversation_ErrorAsMessageFlow(t *testing.T) {
	c, _ := newTestConversation(CapabilitiesFor(CallSiteAgent))
	runEvents(c, &ErrorEvent{Err: "model overloaded"})

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleAssistant, messages[0].Role)
	assert.Equal(t, "Error: model overloaded", messages[0].Content)
	assert.Equal(t, "model overloaded", c.LastError())
}

func TestConversation_ErrorWithoutMessageUsesFallbackText(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	runEvents(c, &ErrorEvent{})

	assert.NotEmpty(t, c.LastError())
}

func TestConversation_AppendUser(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	c.AppendUser("hello", []string{"data:image/png;base64,xyz"})

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.False(t, messages[0].IsAssistant())
	assert.Equal(t, "hello", messages[0].Content)
	assert.Len(t, messages[0].Images, 1)
}

func TestConversation_RunTurnConsumesChannel(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})

	events := make(chan StreamEvent, 4)
	events <- &StartEvent{SessionID: "s1"}
	events <- &TokenEvent{Content: "Hello"}
	events <- &DoneEvent{}
	close(events)

	require.NoError(t, c.RunTurn(context.Background(), events))

	assert.Equal(t, "s1", c.SessionID())
	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "Hello", messages[0].Content)
}

func TestConversation_RunTurnChannelClosedWithoutTerminalEvent(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})

	events := make(chan StreamEvent, 1)
	events <- &TokenEvent{Content: "partial"}
	close(events)

	require.NoError(t, c.RunTurn(context.Background(), events))
	assert.False(t, c.IsStreaming(), "conversation must not stick in streaming state")
	assert.NotEmpty(t, c.LastError())
}

func TestConversation_RunTurnCancelled(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := make(chan StreamEvent)
	err := c.RunTurn(ctx, events)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.IsStreaming())
}

func TestConversation_MessagesReturnsCopy(t *testing.T) {
	c, _ := newTestConversation(StreamCapabilities{})
	c.AppendUser("hello", nil)

	messages := c.Messages()
	messages[0].Content = "mutated"

	assert.Equal(t, "hello", c.Messages()[0].Content)
}
