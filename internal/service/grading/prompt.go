package grading

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

//go:embed rubric.tmpl
var rubricText string

var rubric = template.Must(template.New("rubric").Option("missingkey=error").Parse(rubricText))

type rubricData struct {
	StoneEnglish string
	StoneHindi   string
	Planet       string
	Transcript   string
	Duration     string
}

// BuildPrompt renders the grading rubric for one session.
func BuildPrompt(req grading.Request) (string, error) {
	var b strings.Builder
	err := rubric.Execute(&b, rubricData{
		StoneEnglish: req.Persona.StoneEnglish,
		StoneHindi:   req.Persona.StoneHindi,
		Planet:       req.Persona.Planet,
		Transcript:   strings.TrimSpace(req.Transcript),
		Duration:     grading.FormatDuration(req.Duration),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
