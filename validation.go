package agentwire

import "strings"

// Request validation runs locally, before any network call. The backend is
// the source of truth for provider/model semantics; the client only rejects
// requests that can never be valid (nothing to say, out-of-range sampling
// parameters, attachments that are not data URIs).

// turnRequestRule checks one aspect of a TurnRequest and returns a
// *ValidationError, or nil when the request passes.
type turnRequestRule func(req *TurnRequest) *ValidationError

var turnRequestRules = []turnRequestRule{
	checkContent,
	checkTemperature,
	checkImages,
}

// ValidateTurnRequest checks a turn request against the local rules and
// returns the first failure. A nil return means the request is safe to send;
// the backend may still reject it.
func ValidateTurnRequest(req *TurnRequest) error {
	for _, rule := range turnRequestRules {
		if verr := rule(req); verr != nil {
			return verr
		}
	}
	return nil
}

func checkContent(req *TurnRequest) *ValidationError {
	if strings.TrimSpace(req.Content) == "" {
		return &ValidationError{
			Field:  "content",
			Value:  req.Content,
			Reason: "message content must not be empty",
			Err:    ErrInvalidRequest,
		}
	}
	return nil
}

func checkTemperature(req *TurnRequest) *ValidationError {
	if req.Temperature == nil {
		return nil
	}
	if t := *req.Temperature; t < 0 || t > 2 {
		return &ValidationError{
			Field:  "temperature",
			Value:  t,
			Reason: "temperature must be between 0 and 2",
			Err:    ErrInvalidRequest,
		}
	}
	return nil
}

func checkImages(req *TurnRequest) *ValidationError {
	for _, img := range req.Images {
		if !strings.HasPrefix(img, "data:") {
			return &ValidationError{
				Field:  "images",
				Value:  truncateForError(img),
				Reason: "images must be data URIs",
				Err:    ErrInvalidRequest,
			}
		}
	}
	return nil
}

// truncateForError keeps error values readable when the offending value is a
// large payload.
func truncateForError(s string) string {
	const max = 64
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
