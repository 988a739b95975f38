package agentwire

// AgentTrail tracks which sub-agent is active during a multi-agent turn and
// which agents have participated, in first-seen order with duplicates
// dropped. Tool calls created while an agent is active are attributed to it.
type AgentTrail struct {
	active string
	seen   []string
}

// Start marks the named sub-agent as active and records it if unseen.
func (t *AgentTrail) Start(name string) {
	t.active = name
	for _, s := range t.seen {
		if s == name {
			return
		}
	}
	t.seen = append(t.seen, name)
}

// End clears the active agent. Agent markers do not nest: whichever
// agent_end arrives deactivates the current agent.
func (t *AgentTrail) End() {
	t.active = ""
}

// Active returns the currently active agent name, or "" when none is.
func (t *AgentTrail) Active() string {
	return t.active
}

// Seen returns the agents observed this turn in first-seen order. It returns
// nil when no agent markers arrived, so single-agent turns finalize without
// an agentsUsed field rather than with an empty list.
func (t *AgentTrail) Seen() []string {
	if len(t.seen) == 0 {
		return nil
	}
	return append([]string(nil), t.seen...)
}

// Reset returns the trail to its initial state for the next turn.
func (t *AgentTrail) Reset() {
	t.active = ""
	t.seen = nil
}
