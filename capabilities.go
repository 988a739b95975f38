package agentwire

// Capabilities Philosophy:
//
// The backend exposes three streaming entry points (plain chat, direct
// single-agent invocation, and multi-agent workflow invocation) that speak
// the same wire protocol but differ in which events they emit and in how a
// terminal error is surfaced. Those differences are data, not code: every
// entry point runs through the same transport and decoder, configured by a
// StreamCapabilities value, instead of three copies of the consumption loop.

// CallSite identifies which streaming entry point a turn runs through.
type CallSite string

// Streaming entry points
const (
	// CallSiteChat is the plain conversational chat stream.
	CallSiteChat CallSite = "chat"

	// CallSiteAgent is a direct invocation of a single named agent
	// (used by agent-builder test chats).
	CallSiteAgent CallSite = "agent"

	// CallSiteWorkflow is a supervisor-orchestrated multi-agent workflow,
	// which emits agent_start/agent_end markers and transfer pseudo-tools.
	CallSiteWorkflow CallSite = "workflow"
)

// StreamCapabilities describes how the conversation state machine should
// treat a particular entry point's stream.
type StreamCapabilities struct {
	// MultiAgent means agent_start/agent_end markers are expected and
	// transfer_to_* tool entries are filtered from finalized message
	// snapshots.
	MultiAgent bool

	// ErrorAsMessage appends a terminal error as a synthetic assistant
	// message of the form "Error: <text>" instead of (only) recording it as
	// a session-level error. Agent-builder test chats want the error inline
	// in the transcript; the default chat flow does not. The divergence is
	// per call site and deliberate.
	ErrorAsMessage bool
}

// CapabilitiesFor returns the stream capabilities of the given entry point.
func CapabilitiesFor(site CallSite) StreamCapabilities {
	switch site {
	case CallSiteAgent:
		return StreamCapabilities{ErrorAsMessage: true}
	case CallSiteWorkflow:
		return StreamCapabilities{MultiAgent: true}
	default:
		return StreamCapabilities{}
	}
}
