package agentwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCallRegistry_Correlation(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "search_web"}, "")
	r.Insert(&ToolCallEvent{ToolID: "t2", ToolName: "read_file"}, "")

	ok := r.Resolve(&ToolResultEvent{ToolID: "t1", Result: "3 hits"})
	require.True(t, ok)

	t1, _ := r.Get("t1")
	assert.Equal(t, ToolStatusDone, t1.Status)
	assert.Equal(t, "3 hits", t1.Result)

	// The other entry is unaffected.
	t2, _ := r.Get("t2")
	assert.Equal(t, ToolStatusCalling, t2.Status)
	assert.Empty(t, t2.Result)
}

func TestToolCallRegistry_OrphanResultIsNoOp(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "search_web"}, "")

	ok := r.Resolve(&ToolResultEvent{ToolID: "missing", Result: "x"})
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len(), "orphan results must not create entries")

	t1, _ := r.Get("t1")
	assert.Equal(t, ToolStatusCalling, t1.Status)
}

func TestToolCallRegistry_MarkAwaitingApproval(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "delete_file"}, "")

	require.True(t, r.MarkAwaitingApproval("t1"))

	t1, _ := r.Get("t1")
	assert.Equal(t, ToolStatusDone, t1.Status)
	assert.Equal(t, pendingApprovalResult, t1.Result)

	assert.False(t, r.MarkAwaitingApproval("missing"))
}

func TestToolCallRegistry_CollidingIDLastWriteWins(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "first"}, "")
	r.Insert(&ToolCallEvent{ToolID: "t2", ToolName: "other"}, "")
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "second"}, "")

	assert.Equal(t, 2, r.Len())

	snap := r.Snapshot(false)
	require.Len(t, snap, 2)
	// Original insertion position is kept; the value is the last write.
	assert.Equal(t, "t1", snap[0].ID)
	assert.Equal(t, "second", snap[0].Name)
	assert.Equal(t, ToolStatusCalling, snap[0].Status)
	assert.Equal(t, "t2", snap[1].ID)
}

func TestToolCallRegistry_SnapshotOrderAndTransferFilter(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "search_web"}, "researcher")
	r.Insert(&ToolCallEvent{ToolID: "t2", ToolName: "transfer_to_math_expert"}, "")
	r.Insert(&ToolCallEvent{ToolID: "t3", ToolName: "calculate"}, "math_expert")

	unfiltered := r.Snapshot(false)
	require.Len(t, unfiltered, 3)
	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{unfiltered[0].ID, unfiltered[1].ID, unfiltered[2].ID})

	filtered := r.Snapshot(true)
	require.Len(t, filtered, 2)
	assert.Equal(t, "search_web", filtered[0].Name)
	assert.Equal(t, "calculate", filtered[1].Name)
	assert.Equal(t, "math_expert", filtered[1].AgentName)

	// Filtering the snapshot leaves the live registry intact.
	assert.Equal(t, 3, r.Len())
}

func TestToolCallRegistry_SnapshotCopies(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "search_web"}, "")

	snap := r.Snapshot(false)
	r.Resolve(&ToolResultEvent{ToolID: "t1", Result: "late"})

	assert.Equal(t, ToolStatusCalling, snap[0].Status, "snapshot must not alias live entries")
}

func TestToolCallRegistry_Reset(t *testing.T) {
	r := NewToolCallRegistry()
	r.Insert(&ToolCallEvent{ToolID: "t1", ToolName: "search_web"}, "")
	r.Reset()

	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Snapshot(false))
}

func TestToolCall_IsTransfer(t *testing.T) {
	assert.True(t, (&ToolCall{Name: "transfer_to_researcher"}).IsTransfer())
	assert.False(t, (&ToolCall{Name: "search_web"}).IsTransfer())
}
