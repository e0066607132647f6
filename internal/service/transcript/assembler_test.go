package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemsales/voice-trainer/backend/internal/analysis/mood"
	"github.com/gemsales/voice-trainer/backend/internal/model/speech"
	model "github.com/gemsales/voice-trainer/backend/internal/model/transcript"
)

func TestAssembleInterleavesByTimestamp(t *testing.T) {
	got, err := Assemble(
		[]model.Segment{{Text: "Hi there", Timestamp: 0.2}},
		[]model.Turn{{Text: "Hello", Timestamp: 0.5}},
		"",
	)
	require.NoError(t, err)
	assert.Equal(t, "SALES_REP: Hi there\n\nCUSTOMER: Hello", got.Text)
	assert.Equal(t, model.SourceMerged, got.Source)
}

func TestAssembleIsDeterministic(t *testing.T) {
	server := []model.Segment{{Text: "Namaste, this is Priya from GemPundit.", Timestamp: 1}, {Text: "What is it for?", Timestamp: 9}}
	client := []model.Turn{{Text: "I need a Neelam.", Timestamp: 4}, {Text: "For Shani dasha.", Timestamp: 12}}

	first, err := Assemble(server, client, "")
	require.NoError(t, err)
	second, err := Assemble(server, client, "")
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, strings.Join([]string{
		"SALES_REP: Namaste, this is Priya from GemPundit.",
		"CUSTOMER: I need a Neelam.",
		"SALES_REP: What is it for?",
		"CUSTOMER: For Shani dasha.",
	}, "\n\n"), first.Text)
}

func TestAssembleTiesKeepServerFirstThenSourceOrder(t *testing.T) {
	got, err := Assemble(
		[]model.Segment{{Text: "rep one", Timestamp: 2}, {Text: "rep two", Timestamp: 2}},
		[]model.Turn{{Text: "cust one", Timestamp: 2}, {Text: "cust zero", Timestamp: 1}},
		"",
	)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOMER: cust zero\n\nSALES_REP: rep one\n\nSALES_REP: rep two\n\nCUSTOMER: cust one", got.Text)
}

func TestAssembleSkipsBlankTexts(t *testing.T) {
	got, err := Assemble(
		[]model.Segment{{Text: "   ", Timestamp: 0}, {Text: "Welcome to GemPundit", Timestamp: 1}},
		[]model.Turn{{Text: "", Timestamp: 2}},
		"",
	)
	require.NoError(t, err)
	assert.Equal(t, "SALES_REP: Welcome to GemPundit", got.Text)
	assert.Len(t, got.Segments, 1)
}

func TestAssembleFallsBack(t *testing.T) {
	fallback := "SALES REP: Hello, how can I help?\n\nCUSTOMER: I want a ruby ring."

	got, err := Assemble(nil, []model.Turn{{Text: "  ", Timestamp: 0}}, fallback)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, got.Source)
	assert.Equal(t, fallback, got.Text)
	require.Len(t, got.Segments, 2)
	assert.Equal(t, model.RoleSalesRep, got.Segments[0].Role)
	assert.Equal(t, "I want a ruby ring.", got.Segments[1].Text)
}

func TestAssembleNoTranscriptAvailable(t *testing.T) {
	_, err := Assemble(nil, nil, "")
	assert.ErrorIs(t, err, ErrNoTranscriptAvailable)

	_, err = Assemble(nil, nil, "   short  ")
	assert.ErrorIs(t, err, ErrNoTranscriptAvailable)

	_, err = Assemble([]model.Segment{{Text: " "}}, []model.Turn{{Text: ""}}, "tiny")
	assert.ErrorIs(t, err, ErrNoTranscriptAvailable)
}

func TestAssembleThresholdCountsCharacters(t *testing.T) {
	got, err := Assemble(nil, nil, "नमस्ते जी ₹₹")
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, got.Source)

	// nine characters, twenty-seven bytes
	_, err = Assemble(nil, nil, "₹₹₹₹₹₹₹₹₹")
	assert.ErrorIs(t, err, ErrNoTranscriptAvailable)
}

func TestAssembleExtractsProfileTag(t *testing.T) {
	got, err := Assemble(
		[]model.Segment{{Text: "Good morning, welcome to GemPundit!", Timestamp: 0}},
		[]model.Turn{
			{Text: "[CUSTOMER_PROFILE: Researcher, Hinglish, Skeptic] Hello, I need Neelam.", Timestamp: 3},
			{Text: "[CUSTOMER_PROFILE: ignored] Is it safe?", Timestamp: 6},
		},
		"",
	)
	require.NoError(t, err)
	assert.Equal(t, "Researcher, Hinglish, Skeptic", got.ProfileTag)
	assert.NotContains(t, got.Text, "CUSTOMER_PROFILE")
	assert.Contains(t, got.Text, "CUSTOMER: Hello, I need Neelam.")
	assert.Contains(t, got.Text, "CUSTOMER: Is it safe?")
}

func TestAssembleParsesLayersAndHandoff(t *testing.T) {
	got, err := Assemble(
		[]model.Segment{
			{Text: "Hello, I'm Ravi from GemPundit.", Timestamp: 0},
			{Text: "I'll connect you with our astrologer for a free consultation.", Timestamp: 20},
		},
		[]model.Turn{
			{Text: "[LAYERS: funnel=Research Mode, language=Hinglish, emotion=Calm, discount=yes] Hi, ruby ka rate kya hai?", Timestamp: 5},
			{Text: "Yes please, that would be helpful.", Timestamp: 25},
		},
		"",
	)
	require.NoError(t, err)
	assert.Equal(t, "Hinglish", got.Layers["language"])
	assert.Equal(t, "yes", got.Layers["discount"])
	assert.True(t, got.Handoff.Offered)
	assert.Equal(t, model.HandoffAccepted, got.Handoff.Outcome)
}

func TestFromSpeechLabelsSalesRep(t *testing.T) {
	segs := FromSpeech([]speech.Segment{{Text: "hello", Start: 1.5, End: 2}})
	require.Len(t, segs, 1)
	assert.Equal(t, model.RoleSalesRep, segs[0].Role)
	assert.Equal(t, 1.5, segs[0].Timestamp)
}

func TestParseLinesJoinsContinuations(t *testing.T) {
	segs := ParseLines("SALES_REP: first line\ncontinued here\n\nCUSTOMER: reply\nnoise")
	require.Len(t, segs, 2)
	assert.Equal(t, "first line continued here", segs[0].Text)
	assert.Equal(t, "reply noise", segs[1].Text)
}

func TestAssembleDetectsCustomerMoodOnly(t *testing.T) {
	got, err := Assemble(nil, nil,
		"SALES_REP: Any discount questions, price worries?\n\nCUSTOMER: I'm scared, what if Neelam doesn't suit me?")
	require.NoError(t, err)
	assert.Equal(t, mood.Anxious, got.Mood.Mood)
}
