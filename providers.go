package agentwire

// ProviderID names the LLM provider a turn should run on. The backend owns
// the provider integrations; the client forwards the value as-is, so an
// identifier outside the known set is passed through rather than rejected.
type ProviderID string

// Providers current backends are known to expose.
const (
	ProviderAnthropic ProviderID = "anthropic"
	ProviderOpenAI    ProviderID = "openai"
	ProviderGoogle    ProviderID = "google"
	ProviderOllama    ProviderID = "ollama"
)

func (p ProviderID) String() string {
	return string(p)
}

// IsValid reports whether p is one of the providers this client knows about.
// Callers can use it to warn about likely typos before a turn is sent; it is
// advisory, not a gate.
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama:
		return true
	}
	return false
}
