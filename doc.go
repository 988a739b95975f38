// Package agentwire is a client for LLM-agent backends that stream turns
// over an SSE-like chunked HTTP protocol, interleaving generated text
// tokens, tool invocations, human-in-the-loop approval requests, and
// multi-agent hand-off markers.
//
// The pieces compose bottom-up:
//
//   - Decoder turns raw response-body bytes into typed StreamEvents,
//     tolerating arbitrary chunk boundaries and malformed frames.
//   - ToolCallRegistry, ApprovalManager, and AgentTrail track the turn's
//     tool invocations, pending human approvals, and sub-agent attribution.
//   - Conversation folds events into the per-session view model: message
//     history, streaming buffer, and status.
//   - Client owns all I/O: the REST surface (sessions, non-streaming turns,
//     approval resolution) and the three streaming entry points (chat,
//     direct agent, workflow), unified behind one transport.
//
// Typical streaming use:
//
//	client, _ := agentwire.NewClient("http://localhost:8000")
//	conv := agentwire.NewConversation(client, agentwire.CapabilitiesFor(agentwire.CallSiteChat), nil)
//
//	events, err := client.StreamChat(ctx, &agentwire.TurnRequest{Content: "hello"})
//	if err != nil {
//		return err
//	}
//	conv.AppendUser("hello", nil)
//	if err := conv.RunTurn(ctx, events); err != nil {
//		return err
//	}
package agentwire
