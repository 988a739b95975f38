package agentwire

import "testing"

func TestProviderID_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider ProviderID
		expected bool
	}{
		{name: "anthropic", provider: ProviderAnthropic, expected: true},
		{name: "openai", provider: ProviderOpenAI, expected: true},
		{name: "google", provider: ProviderGoogle, expected: true},
		{name: "ollama", provider: ProviderOllama, expected: true},
		{name: "unknown", provider: ProviderID("mistral"), expected: false},
		{name: "empty", provider: ProviderID(""), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestProviderID_String(t *testing.T) {
	if got := ProviderAnthropic.String(); got != "anthropic" {
		t.Errorf("String() = %q, want %q", got, "anthropic")
	}
}
