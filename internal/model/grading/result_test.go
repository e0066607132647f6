package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		Scores: Scores{
			Opening:             60,
			NeedDiscovery:       50,
			BudgetQualification: 40,
			BuyingReadiness:     55,
			ObjectionHandling:   45,
			Professionalism:     80,
			ClosingHandoff:      30,
		},
		OverallScore: 48,
		LeadStatus:   LeadWarm,
		Summary:      "Decent rapport, weak qualification.",
	}
}

func TestWeightsSumToHundred(t *testing.T) {
	sum := 0
	for _, c := range (Scores{}).Categories() {
		sum += c.Weight
	}
	assert.Equal(t, 100, sum)
}

func TestWeighted(t *testing.T) {
	// 6+12.5+8+8.25+6.75+4+3 = 48.5
	assert.Equal(t, 49, sampleResult().Scores.Weighted())

	all := Scores{100, 100, 100, 100, 100, 100, 100}
	assert.Equal(t, 100, all.Weighted())
}

func TestValidate(t *testing.T) {
	require.NoError(t, sampleResult().Validate())

	r := sampleResult()
	r.OverallScore = 101
	assert.True(t, errors.Is(r.Validate(), ErrInvalidResult))

	r = sampleResult()
	r.Scores.ClosingHandoff = -1
	assert.ErrorIs(t, r.Validate(), ErrInvalidResult)

	r = sampleResult()
	r.LeadStatus = "LUKEWARM"
	assert.ErrorIs(t, r.Validate(), ErrInvalidResult)

	var missing *Result
	assert.ErrorIs(t, missing.Validate(), ErrInvalidResult)
}

func TestNormalize(t *testing.T) {
	r := sampleResult()
	r.LeadStatus = " hot "
	r.Strengths = []string{" Good greeting ", "", "  "}
	r.Normalize()

	assert.Equal(t, LeadHot, r.LeadStatus)
	assert.Equal(t, []string{"Good greeting"}, r.Strengths)
}

func TestDurationFormats(t *testing.T) {
	d := 125 * time.Second
	assert.Equal(t, "2 minutes 5 seconds", FormatDuration(d))
	assert.Equal(t, "2m 5s", ShortDuration(d))
	assert.Equal(t, "0m 0s", ShortDuration(-time.Second))
}
