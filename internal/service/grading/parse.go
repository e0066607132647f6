package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

// Parse decodes a model response into a validated grading result. The only
// tolerance is a surrounding markdown code fence; malformed JSON is never
// repaired.
func Parse(content string) (*grading.Result, error) {
	body := stripFence(content)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrGradingUnavailable)
	}

	var instance any
	if err := json.Unmarshal([]byte(body), &instance); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGradingUnavailable, err)
	}

	resolved, err := resolvedSchema()
	if err != nil {
		return nil, fmt.Errorf("%w: build schema: %v", ErrGradingUnavailable, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: response does not match schema: %v", ErrGradingUnavailable, err)
	}

	var result grading.Result
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, fmt.Errorf("%w: decode result: %v", ErrGradingUnavailable, err)
	}
	result.Normalize()
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGradingUnavailable, err)
	}
	return &result, nil
}

func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
