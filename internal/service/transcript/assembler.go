package transcript

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gemsales/voice-trainer/backend/internal/analysis/mood"
	"github.com/gemsales/voice-trainer/backend/internal/model/speech"
	model "github.com/gemsales/voice-trainer/backend/internal/model/transcript"
)

// MinTranscriptLength is the shortest trimmed transcript, in characters,
// that still counts as usable dialogue.
const MinTranscriptLength = 10

// ErrNoTranscriptAvailable means neither the merged turns nor the fallback
// text were long enough to grade.
var ErrNoTranscriptAvailable = errors.New("no transcript available")

// Assembled is the flattened transcript plus what was learned while building it.
type Assembled struct {
	Text       string
	Source     model.Source
	Segments   []model.Segment
	ProfileTag string
	Layers     map[string]string
	Handoff    model.Handoff
	Mood       mood.Decision
}

// FromSpeech labels recognizer output as the sales rep's side of the call.
func FromSpeech(segments []speech.Segment) []model.Segment {
	out := make([]model.Segment, 0, len(segments))
	for _, seg := range segments {
		out = append(out, model.Segment{Role: model.RoleSalesRep, Text: seg.Text, Timestamp: seg.Start})
	}
	return out
}

// Assemble merges server-side segments (the rep) with client-recorded turns
// (the customer) into one transcript ordered by timestamp. Equal timestamps
// keep server segments first, then each source's own order. When the merge
// is shorter than MinTranscriptLength the fallback text is used instead.
func Assemble(serverSegments []model.Segment, clientTurns []model.Turn, fallback string) (*Assembled, error) {
	merged := make([]model.Segment, 0, len(serverSegments)+len(clientTurns))
	for _, seg := range serverSegments {
		merged = append(merged, model.Segment{Role: model.RoleSalesRep, Text: seg.Text, Timestamp: seg.Timestamp})
	}
	for _, turn := range clientTurns {
		merged = append(merged, model.Segment{Role: model.RoleCustomer, Text: turn.Text, Timestamp: turn.Timestamp})
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})

	out := &Assembled{}
	lines := make([]model.Segment, 0, len(merged))
	for _, seg := range merged {
		if seg.Role == model.RoleCustomer {
			if out.ProfileTag == "" {
				out.ProfileTag = ExtractProfileTag(seg.Text)
			}
			seg.Text = StripProfileTag(seg.Text)
		}
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		lines = append(lines, seg)
	}

	text := Render(lines)
	if usable(text) {
		out.Text = text
		out.Source = model.SourceMerged
		out.Segments = lines
		out.finish()
		return out, nil
	}

	if out.ProfileTag == "" {
		out.ProfileTag = ExtractProfileTag(fallback)
	}
	fallback = strings.TrimSpace(StripProfileTag(fallback))
	if !usable(fallback) {
		return nil, ErrNoTranscriptAvailable
	}

	out.Text = fallback
	out.Source = model.SourceFallback
	out.Segments = ParseLines(fallback)
	out.finish()
	return out, nil
}

func (a *Assembled) finish() {
	a.Layers, _ = ParseLayersTag(a.Text)
	a.Handoff = DetectHandoff(a.Segments)

	var customer strings.Builder
	for _, seg := range a.Segments {
		if seg.Role == model.RoleCustomer {
			customer.WriteString(seg.Text)
			customer.WriteByte('\n')
		}
	}
	a.Mood = mood.Analyze(customer.String())
}

// Render formats segments as "<ROLE>: <text>" separated by blank lines.
func Render(segments []model.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(string(seg.Role))
		b.WriteString(": ")
		b.WriteString(seg.Text)
	}
	return b.String()
}

// ParseLines recovers role-labelled segments from rendered or client-built
// transcript text. Unlabelled lines continue the previous speaker.
func ParseLines(text string) []model.Segment {
	var out []model.Segment
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if role, rest, ok := splitRole(line); ok {
			out = append(out, model.Segment{Role: role, Text: rest})
			continue
		}
		if n := len(out); n > 0 {
			out[n-1].Text += " " + line
		}
	}
	return out
}

func splitRole(line string) (model.Role, string, bool) {
	label, rest, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "SALES_REP", "SALES REP", "YOU":
		return model.RoleSalesRep, strings.TrimSpace(rest), true
	case "CUSTOMER":
		return model.RoleCustomer, strings.TrimSpace(rest), true
	}
	return "", "", false
}

func usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTranscriptLength
}
