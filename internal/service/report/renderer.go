package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"github.com/gemsales/voice-trainer/backend/internal/metrics"
	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
	"github.com/gemsales/voice-trainer/backend/internal/model/session"
	"github.com/gemsales/voice-trainer/backend/internal/model/transcript"
)

// Render triggers, used as metric labels.
const (
	TriggerGrade      = "grade"
	TriggerRegenerate = "regenerate"
)

var (
	ErrNotGraded     = errors.New("session not graded")
	ErrRenderFailure = errors.New("report render failed")
	ErrInvalidID     = errors.New("invalid session id")
)

// Renderer writes one PDF per session, keyed by session id.
type Renderer struct {
	dir    string
	logger logrus.FieldLogger
}

// NewRenderer creates dir if needed.
func NewRenderer(dir string, logger logrus.FieldLogger) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &Renderer{dir: dir, logger: logger.WithField("component", "report")}, nil
}

// Path is where the report for id lives, whether or not it exists yet.
func (r *Renderer) Path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", ErrInvalidID
	}
	return filepath.Join(r.dir, id+".pdf"), nil
}

// Exists reports whether a rendered file is on disk for id.
func (r *Renderer) Exists(id string) bool {
	path, err := r.Path(id)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// Render writes the report for sess, replacing any previous file.
func (r *Renderer) Render(sess *session.Session, p persona.Persona, trigger string) (string, error) {
	path, err := r.render(sess, p)
	if err != nil {
		status := "error"
		if errors.Is(err, ErrNotGraded) {
			status = "not_graded"
		}
		metrics.RecordReport(trigger, status)
		return "", err
	}

	metrics.RecordReport(trigger, "ok")
	r.logger.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"trigger":    trigger,
		"path":       path,
	}).Info("report rendered")
	return path, nil
}

func (r *Renderer) render(sess *session.Session, p persona.Persona) (string, error) {
	if sess == nil || sess.Grading == nil {
		return "", ErrNotGraded
	}
	path, err := r.Path(sess.ID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(r.dir, sess.ID+"-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, sess, p); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return path, nil
}

type rgb struct{ r, g, b int }

var (
	colorGreen  = rgb{39, 174, 96}
	colorYellow = rgb{241, 196, 15}
	colorRed    = rgb{231, 76, 60}
	colorBlue   = rgb{52, 152, 219}
	colorGrey   = rgb{149, 165, 166}
	colorPurple = rgb{128, 0, 128}
	colorTitle  = rgb{51, 51, 51}
	colorMuted  = rgb{120, 120, 120}
	colorBody   = rgb{80, 80, 80}
)

func scoreColor(score int) rgb {
	switch {
	case score >= 75:
		return colorGreen
	case score >= 50:
		return colorYellow
	default:
		return colorRed
	}
}

func leadColor(status grading.LeadStatus) rgb {
	switch status {
	case grading.LeadHot:
		return colorRed
	case grading.LeadWarm:
		return colorYellow
	case grading.LeadCold:
		return colorBlue
	default:
		return colorGrey
	}
}

type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (d doc) color(c rgb) { d.pdf.SetTextColor(c.r, c.g, c.b) }

func (d doc) font(style string, size float64) { d.pdf.SetFont("Helvetica", style, size) }

func (d doc) line(h float64, text, align string) {
	d.pdf.CellFormat(0, h, d.tr(Sanitize(text)), "", 1, align, false, 0, "")
}

func (d doc) para(h float64, text string) {
	d.pdf.MultiCell(0, h, d.tr(Sanitize(text)), "", "L", false)
}

func (d doc) heading(text string, c rgb) {
	d.font("B", 12)
	d.color(c)
	d.line(8, text, "L")
	d.font("", 10)
	d.color(colorBody)
}

// Write renders the report for sess to w. Output depends only on the
// session and persona, so re-rendering yields the same document.
func Write(w io.Writer, sess *session.Session, p persona.Persona) error {
	if sess == nil || sess.Grading == nil {
		return ErrNotGraded
	}
	g := sess.Grading

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(sess.CreatedAt)
	pdf.SetModificationDate(sess.CreatedAt)
	pdf.SetTitle("Lead Qualification Report", false)
	pdf.SetAutoPageBreak(true, 15)
	d := doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.AddPage()

	d.font("B", 22)
	d.color(colorTitle)
	d.line(12, "Lead Qualification Report", "C")

	d.font("", 10)
	d.color(colorMuted)
	d.line(6, p.Name, "C")
	d.line(6, fmt.Sprintf("Session: %s | Duration: %s | Date: %s",
		sess.ID, grading.ShortDuration(sess.Duration), sess.CreatedAt.Format("2006-01-02")), "C")
	pdf.Ln(8)

	d.font("B", 48)
	d.color(scoreColor(g.OverallScore))
	d.line(20, fmt.Sprintf("%d", g.OverallScore), "C")
	d.font("", 11)
	d.color(colorMuted)
	d.line(6, "Overall Score", "C")
	pdf.Ln(5)

	d.font("B", 14)
	d.color(leadColor(g.LeadStatus))
	d.line(10, "Lead Status: "+string(g.LeadStatus), "C")
	pdf.Ln(5)

	d.font("B", 11)
	d.color(colorPurple)
	d.line(8, "Customer Profile (Inferred)", "C")
	d.font("", 10)
	d.color(rgb{100, 100, 100})
	profile := g.CustomerProfile
	if sess.CustomerProfile != nil {
		profile = *sess.CustomerProfile
	}
	d.line(6, fmt.Sprintf("Intent: %s | Language: %s", orUnknown(profile.Intent), orUnknown(profile.Language)), "C")
	d.line(6, "Personality Type: "+orUnknown(profile.Personality), "C")
	d.line(6, fmt.Sprintf("Background: %s | Hidden Budget: %s", orUnknown(profile.Background), orUnknown(profile.HiddenBudget)), "C")
	if sess.ProfileTag != "" {
		d.line(6, "Profile tag: "+sess.ProfileTag, "C")
	}
	pdf.Ln(5)

	d.heading("Summary", colorTitle)
	d.para(5, orDefault(g.Summary, "N/A"))
	pdf.Ln(5)

	d.heading("Performance Breakdown", colorTitle)
	for _, c := range g.Scores.Categories() {
		d.color(scoreColor(c.Score))
		pdf.CellFormat(100, 6, d.tr("  "+c.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("%d", c.Score), "", 1, "L", false, 0, "")
	}
	d.color(colorMuted)
	d.line(6, fmt.Sprintf("  Weighted rubric average: %d", g.Scores.Weighted()), "L")
	pdf.Ln(5)

	d.heading("Customer Persona", colorTitle)
	cp := g.CustomerPersona
	discount := "no"
	if cp.AskedDiscount {
		discount = "yes"
	}
	// Layers emitted by the voice model win over the grader's inference.
	layers := sess.Layers
	d.line(5, fmt.Sprintf("  Funnel: %s | Language: %s | Emotion: %s | Asked discount: %s",
		orUnknown(orDefault(layers["funnel"], cp.Funnel)),
		orUnknown(orDefault(layers["language"], cp.Language)),
		orUnknown(orDefault(layers["emotion"], cp.Emotion)),
		orDefault(layers["discount"], discount)), "L")
	if sess.CustomerMood != "" {
		d.color(colorMuted)
		d.line(5, fmt.Sprintf("  Detected mood: %s (%d/5)", sess.CustomerMood, sess.MoodIntensity), "L")
	}
	pdf.Ln(5)

	d.heading("Information Discovered", colorTitle)
	d.line(5, "  Purpose: "+orUnknown(g.Discovered.Purpose), "L")
	d.line(5, "  Budget: "+orUnknown(g.Discovered.Budget), "L")
	d.line(5, "  Timeline: "+orUnknown(g.Discovered.Timeline), "L")
	d.line(5, "  Preferences: "+orUnknown(g.Discovered.Preferences), "L")
	pdf.Ln(5)

	d.heading("Handoff", colorTitle)
	d.para(5, "  "+describeHandoff(sess.Handoff))
	pdf.Ln(5)

	d.heading("Strengths", colorGreen)
	for _, s := range g.Strengths {
		d.para(5, "  + "+s)
	}
	pdf.Ln(3)

	d.heading("Areas to Improve", colorRed)
	for _, s := range g.Improvements {
		d.para(5, "  - "+s)
	}
	pdf.Ln(5)

	d.heading("Recommended Action", colorBlue)
	d.para(5, orDefault(g.RecommendedAction, "N/A"))

	pdf.AddPage()
	d.font("B", 12)
	d.color(colorTitle)
	d.line(8, "Conversation Transcript", "L")
	d.font("", 9)
	d.color(rgb{100, 100, 100})
	d.para(4, orDefault(sess.Transcript, "No transcript available"))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return nil
}

func describeHandoff(h transcript.Handoff) string {
	if !h.Offered {
		return "No handoff to the sales team or an astrologer was offered."
	}
	return fmt.Sprintf("Offered (%s): %q", orDefault(string(h.Outcome), string(transcript.HandoffUnclear)), h.Line)
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
