package agentwire

import (
	"errors"
	"testing"
)

func TestValidateTurnRequest(t *testing.T) {
	temp := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		req     *TurnRequest
		wantErr bool
	}{
		{
			name: "valid minimal",
			req:  &TurnRequest{Content: "hello"},
		},
		{
			name:    "empty content",
			req:     &TurnRequest{Content: ""},
			wantErr: true,
		},
		{
			name:    "whitespace content",
			req:     &TurnRequest{Content: "  \n\t"},
			wantErr: true,
		},
		{
			name: "temperature in range",
			req:  &TurnRequest{Content: "hi", Temperature: temp(0.7)},
		},
		{
			name: "temperature at bounds",
			req:  &TurnRequest{Content: "hi", Temperature: temp(2)},
		},
		{
			name:    "temperature too high",
			req:     &TurnRequest{Content: "hi", Temperature: temp(2.5)},
			wantErr: true,
		},
		{
			name:    "temperature negative",
			req:     &TurnRequest{Content: "hi", Temperature: temp(-0.1)},
			wantErr: true,
		},
		{
			name: "data URI image",
			req:  &TurnRequest{Content: "hi", Images: []string{"data:image/png;base64,iVBOR"}},
		},
		{
			name:    "non data URI image",
			req:     &TurnRequest{Content: "hi", Images: []string{"https://example.com/x.png"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurnRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTurnRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !IsValidationError(err) {
					t.Errorf("error should be a *ValidationError, got %T", err)
				}
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("error should wrap ErrInvalidRequest")
				}
			}
		})
	}
}

func TestTurnRequest_GetTemperature(t *testing.T) {
	req := &TurnRequest{Content: "hi"}
	if got := req.GetTemperature(0.7); got != 0.7 {
		t.Errorf("GetTemperature() = %v, want default", got)
	}

	v := 1.2
	req.Temperature = &v
	if got := req.GetTemperature(0.7); got != 1.2 {
		t.Errorf("GetTemperature() = %v, want 1.2", got)
	}
}
