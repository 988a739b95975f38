package agentwire

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ApprovalStatus is the lifecycle state of a human-in-the-loop approval.
type ApprovalStatus string

// Approval lifecycle states. Transitions go from pending to exactly one of
// the terminal states. The client never moves an approval to an expired
// state on its own: expiry enforcement is the server's job, and ExpiresAt
// only drives the advisory countdown string.
const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalCancelled ApprovalStatus = "cancelled"
)

// ApprovalDecision names a resolution posted to the backend.
type ApprovalDecision string

// Approval decisions
const (
	DecisionApprove ApprovalDecision = "approve"
	DecisionReject  ApprovalDecision = "reject"
	DecisionCancel  ApprovalDecision = "cancel"
)

// ApprovalConfig carries backend-provided display and validation rules for
// one approval request.
type ApprovalConfig struct {
	// ShowArgs controls whether the tool arguments should be displayed to
	// the approving human.
	ShowArgs bool `json:"show_args"`

	// TimeoutSeconds is the server-side timeout, for display purposes.
	TimeoutSeconds int `json:"timeout_seconds"`

	// RequireReasonOnReject makes a non-empty reason mandatory for reject.
	RequireReasonOnReject bool `json:"require_reason_on_reject"`
}

// ApprovalRequest is one pending human-in-the-loop gate on a tool execution.
// Identity is ID. The request belongs to the conversation, not to the tool
// call that triggered it: a human may resolve it after the originating
// stream has already finished.
type ApprovalRequest struct {
	ID        string         `json:"approval_id"`
	ToolName  string         `json:"tool_name"`
	ToolID    string         `json:"tool_id"`
	Message   string         `json:"message,omitempty"`
	ToolArgs  map[string]any `json:"tool_args,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Config    ApprovalConfig `json:"config"`
	Status    ApprovalStatus `json:"status"`
}

// Resolver posts an approval resolution to the backend. *Client implements
// it; tests substitute fakes.
type Resolver interface {
	ResolveApproval(ctx context.Context, approvalID string, decision ApprovalDecision, reason string) error
}

// ApprovalManager tracks the pending approvals of one conversation session
// and resolves them through the backend.
//
// The pending list is session-scoped: it legitimately outlives the turn that
// created an entry. All updates are keyed strictly by approval id and
// implemented as filter/replace over an immutable slice, so resolving one
// request can never disturb another, including a concurrently displayed one.
type ApprovalManager struct {
	mu       sync.Mutex
	pending  []ApprovalRequest
	resolver Resolver
}

// NewApprovalManager creates a manager that resolves approvals through the
// given resolver.
func NewApprovalManager(resolver Resolver) *ApprovalManager {
	return &ApprovalManager{resolver: resolver}
}

// Add records a new pending approval from a stream event. Duplicate ids
// replace the existing entry in place.
func (m *ApprovalManager) Add(ev *ApprovalRequestEvent) {
	req := ApprovalRequest{
		ID:        ev.ApprovalID,
		ToolName:  ev.ToolName,
		ToolID:    ev.ToolID,
		Message:   ev.Message,
		ToolArgs:  ev.ToolArgs,
		ExpiresAt: ev.ExpiresAt,
		Config:    ev.Config,
		Status:    ApprovalPending,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.pending {
		if existing.ID == req.ID {
			next := make([]ApprovalRequest, len(m.pending))
			copy(next, m.pending)
			next[i] = req
			m.pending = next
			return
		}
	}
	m.pending = append(append([]ApprovalRequest(nil), m.pending...), req)
}

// Pending returns a copy of the currently pending approvals, oldest first.
func (m *ApprovalManager) Pending() []ApprovalRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ApprovalRequest(nil), m.pending...)
}

// Get returns the pending approval with the given id, if present.
func (m *ApprovalManager) Get(approvalID string) (ApprovalRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.pending {
		if req.ID == approvalID {
			return req, true
		}
	}
	return ApprovalRequest{}, false
}

// Approve resolves a pending approval positively. reason is optional.
func (m *ApprovalManager) Approve(ctx context.Context, approvalID, reason string) error {
	return m.resolve(ctx, approvalID, DecisionApprove, reason)
}

// Reject resolves a pending approval negatively. If the request was
// configured with require_reason_on_reject, an empty or whitespace-only
// reason is a local validation failure: no network call is made and a
// *ValidationError is returned for the caller to surface.
func (m *ApprovalManager) Reject(ctx context.Context, approvalID, reason string) error {
	req, ok := m.Get(approvalID)
	if !ok {
		return fmt.Errorf("approval %q: %w", approvalID, ErrApprovalNotFound)
	}
	if req.Config.RequireReasonOnReject && strings.TrimSpace(reason) == "" {
		return &ValidationError{
			Field:  "reason",
			Value:  reason,
			Reason: "Please provide a reason for rejection",
			Err:    ErrReasonRequired,
		}
	}
	return m.resolve(ctx, approvalID, DecisionReject, reason)
}

// Cancel withdraws a pending approval.
func (m *ApprovalManager) Cancel(ctx context.Context, approvalID string) error {
	return m.resolve(ctx, approvalID, DecisionCancel, "")
}

// resolve posts the decision and, on success, removes the entry from the
// pending list. Resolution is decoupled from the stream that requested the
// approval: it never injects events back into a turn.
func (m *ApprovalManager) resolve(ctx context.Context, approvalID string, decision ApprovalDecision, reason string) error {
	if _, ok := m.Get(approvalID); !ok {
		return fmt.Errorf("approval %q: %w", approvalID, ErrApprovalNotFound)
	}
	if err := m.resolver.ResolveApproval(ctx, approvalID, decision, reason); err != nil {
		return err
	}
	m.remove(approvalID)
	return nil
}

// remove filters the entry with the given id out of the pending list,
// leaving every other entry untouched.
func (m *ApprovalManager) remove(approvalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]ApprovalRequest, 0, len(m.pending))
	for _, req := range m.pending {
		if req.ID != approvalID {
			next = append(next, req)
		}
	}
	m.pending = next
}

// FormatCountdown renders the advisory time remaining before expiresAt as a
// "minutes:seconds" string, clamped to "Expired" once the remaining duration
// reaches zero. It is recomputed on each render; nothing in the client acts
// on expiry.
func FormatCountdown(expiresAt, now time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}
	total := int(remaining.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
