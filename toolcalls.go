package agentwire

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Tool call status values
const (
	// ToolStatusCalling means the tool invocation was announced and no result
	// has arrived yet. Calls that never resolve stay in this state until the
	// turn ends; that is "still working", not an error.
	ToolStatusCalling = "calling"

	// ToolStatusDone means a result arrived (or the call handed off to a
	// human approval and is no longer executing).
	ToolStatusDone = "done"
)

// transferToolPrefix marks internal hand-off pseudo-tools emitted by
// multi-agent supervisors. They are bookkeeping, not user-meaningful tool
// use, and are filtered out of finalized message snapshots.
const transferToolPrefix = "transfer_to_"

// pendingApprovalResult is the placeholder result shown for a tool call that
// is blocked on a human approval rather than executing.
const pendingApprovalResult = "pending approval"

// ToolCall tracks one server-initiated tool invocation within a turn.
// Identity is ToolID, unique within one stream.
type ToolCall struct {
	// ID correlates tool_call, tool_result, and approval_request events.
	ID string `json:"tool_id"`

	// Name is the tool name as reported by the backend (e.g., "search_web").
	Name string `json:"tool_name"`

	// Arguments is the raw argument payload. Opaque: never parsed client-side.
	Arguments string `json:"arguments,omitempty"`

	// Status is ToolStatusCalling or ToolStatusDone. Never transitions backward.
	Status string `json:"status"`

	// Result is the tool output once resolved.
	Result string `json:"result,omitempty"`

	// AgentName is the sub-agent that issued the call, in multi-agent mode.
	AgentName string `json:"agent_name,omitempty"`
}

// IsTransfer returns true for internal multi-agent hand-off tools.
func (t *ToolCall) IsTransfer() bool {
	return strings.HasPrefix(t.Name, transferToolPrefix)
}

// ToolCallRegistry tracks in-flight tool invocations for one active turn,
// keyed by tool id in order of first insertion. It is scoped to a single
// turn and reset when the turn finalizes.
type ToolCallRegistry struct {
	calls *orderedmap.OrderedMap[string, *ToolCall]
}

// NewToolCallRegistry creates an empty registry.
func NewToolCallRegistry() *ToolCallRegistry {
	return &ToolCallRegistry{
		calls: orderedmap.New[string, *ToolCall](),
	}
}

// Insert records a newly announced tool call in the calling state. Colliding
// ids are overwrite-safe: the value is replaced, the original insertion
// position is kept, and the last write wins.
func (r *ToolCallRegistry) Insert(ev *ToolCallEvent, agentName string) *ToolCall {
	tc := &ToolCall{
		ID:        ev.ToolID,
		Name:      ev.ToolName,
		Arguments: ev.Arguments,
		Status:    ToolStatusCalling,
		AgentName: agentName,
	}
	r.calls.Set(ev.ToolID, tc)
	return tc
}

// Resolve marks the call with the event's tool id as done and attaches the
// result. An unknown id is a no-op: orphaned results must not create entries
// and must not fail the stream.
func (r *ToolCallRegistry) Resolve(ev *ToolResultEvent) bool {
	tc, ok := r.calls.Get(ev.ToolID)
	if !ok {
		return false
	}
	tc.Status = ToolStatusDone
	tc.Result = ev.Result
	return true
}

// MarkAwaitingApproval flips the call with the given tool id to done with a
// placeholder result. Once a tool is blocked on a human it is no longer
// executing, so the UI must stop showing a spinner for it. Unknown ids are a
// no-op.
func (r *ToolCallRegistry) MarkAwaitingApproval(toolID string) bool {
	tc, ok := r.calls.Get(toolID)
	if !ok {
		return false
	}
	tc.Status = ToolStatusDone
	tc.Result = pendingApprovalResult
	return true
}

// Get returns the call with the given id, if present.
func (r *ToolCallRegistry) Get(toolID string) (*ToolCall, bool) {
	return r.calls.Get(toolID)
}

// Len returns the number of tracked calls.
func (r *ToolCallRegistry) Len() int {
	return r.calls.Len()
}

// Snapshot returns copies of the tracked calls in first-insertion order, for
// attaching to a finalized message. With filterTransfers set (multi-agent
// mode), internal transfer_to_* entries are excluded from the snapshot; they
// remain in the live registry for bookkeeping either way.
func (r *ToolCallRegistry) Snapshot(filterTransfers bool) []ToolCall {
	var out []ToolCall
	for pair := r.calls.Oldest(); pair != nil; pair = pair.Next() {
		if filterTransfers && pair.Value.IsTransfer() {
			continue
		}
		out = append(out, *pair.Value)
	}
	return out
}

// Reset discards all entries, returning the registry to its initial state.
func (r *ToolCallRegistry) Reset() {
	r.calls = orderedmap.New[string, *ToolCall]()
}
