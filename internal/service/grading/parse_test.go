package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

func TestParseValidResponse(t *testing.T) {
	result, err := Parse(validResponse)
	require.NoError(t, err)

	assert.Equal(t, 55, result.OverallScore)
	assert.Equal(t, grading.LeadWarm, result.LeadStatus)
	assert.Equal(t, 55, result.Scores.NeedDiscovery)
	assert.Equal(t, "Researcher", result.CustomerProfile.Intent)
	assert.True(t, result.CustomerPersona.AskedDiscount)
	assert.Equal(t, "Unknown", result.Discovered.Budget)
	assert.Len(t, result.Strengths, 2)
}

func TestParseStripsCodeFence(t *testing.T) {
	result, err := Parse("```json\n" + validResponse + "\n```")
	require.NoError(t, err)
	assert.Equal(t, 55, result.OverallScore)
}

func TestParseRejectsMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"empty":            "   ",
		"prose":            "The rep did fine, about 70/100.",
		"truncated":        validResponse[:len(validResponse)/2],
		"trailing comma":   strings.Replace(validResponse, `"closing_handoff": 45`, `"closing_handoff": 45,`, 1),
		"missing field":    strings.Replace(validResponse, `"overall_score": 55,`, "", 1),
		"unknown field":    strings.Replace(validResponse, `"overall_score": 55,`, `"overall_score": 55, "bonus": 5,`, 1),
		"score as string":  strings.Replace(validResponse, `"overall_score": 55`, `"overall_score": "55"`, 1),
		"bad lead status":  strings.Replace(validResponse, `"WARM"`, `"LUKEWARM"`, 1),
		"lowercase status": strings.Replace(validResponse, `"WARM"`, `"warm"`, 1),
		"out of range":     strings.Replace(validResponse, `"overall_score": 55`, `"overall_score": 140`, 1),
		"fractional score": strings.Replace(validResponse, `"opening": 70`, `"opening": 70.5`, 1),
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(content)
			assert.ErrorIs(t, err, ErrGradingUnavailable)
		})
	}
}

func TestResultSchemaIsStrict(t *testing.T) {
	s, err := ResultSchema()
	require.NoError(t, err)

	assert.Equal(t, "object", s.Type)
	require.NotNil(t, s.AdditionalProperties)
	assert.Contains(t, s.Required, "lead_status")
	assert.Contains(t, s.Required, "customer_profile")
	assert.Len(t, s.Properties["lead_status"].Enum, 4)

	scores := s.Properties["scores"]
	require.NotNil(t, scores)
	assert.Len(t, scores.Required, 7)
	assert.Equal(t, "array", s.Properties["strengths"].Type)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(sampleRequest())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Stone: Blue Sapphire (Neelam)")
	assert.Contains(t, prompt, "Planet: Saturn (Shani)")
	assert.Contains(t, prompt, "CALL DURATION: 2 minutes 5 seconds")
	assert.Contains(t, prompt, "CUSTOMER: I need Neelam but I'm scared.")
	assert.Contains(t, prompt, "Need Discovery 25%")
}
