package agentwire

// TurnRequest contains the parameters for one turn against the backend,
// streaming or not. The same shape serves chat, direct agent invocation, and
// workflow invocation; Agent and Workflow select the target for the latter
// two entry points.
type TurnRequest struct {
	// SessionID is the conversation to run the turn in. Empty lets the
	// backend create a session; the client adopts the id from the stream's
	// start event.
	SessionID string `json:"session_id,omitempty"`

	// Content is the user's message text.
	Content string `json:"content"`

	// Images holds optional attached images as data URIs.
	Images []string `json:"images,omitempty"`

	// Provider selects the LLM provider on the backend.
	Provider ProviderID `json:"provider,omitempty"`

	// Model is the model identifier, opaque to the client.
	Model string `json:"model,omitempty"`

	// Temperature overrides the backend default when non-nil.
	Temperature *float64 `json:"temperature,omitempty"`

	// MCPServers names the MCP servers the backend should attach for this
	// turn.
	MCPServers []string `json:"mcp_servers,omitempty"`

	// Agent is the agent name for direct-agent invocations.
	Agent string `json:"agent,omitempty"`

	// Workflow is the workflow name for workflow invocations.
	Workflow string `json:"workflow,omitempty"`
}

// GetTemperature returns the temperature or the given default when unset.
func (r *TurnRequest) GetTemperature(def float64) float64 {
	if r.Temperature == nil {
		return def
	}
	return *r.Temperature
}
