package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// LeadStatus classifies how ready the simulated customer was to buy.
type LeadStatus string

const (
	LeadHot         LeadStatus = "HOT"
	LeadWarm        LeadStatus = "WARM"
	LeadCold        LeadStatus = "COLD"
	LeadUnqualified LeadStatus = "UNQUALIFIED"
)

// LeadStatuses lists every valid status in rubric order.
var LeadStatuses = []LeadStatus{LeadHot, LeadWarm, LeadCold, LeadUnqualified}

// Valid reports whether s is one of LeadStatuses.
func (s LeadStatus) Valid() bool {
	for _, status := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Scores holds the seven rubric categories, each 0-100.
type Scores struct {
	Opening             int `json:"opening"`
	NeedDiscovery       int `json:"need_discovery"`
	BudgetQualification int `json:"budget_qualification"`
	BuyingReadiness     int `json:"buying_readiness"`
	ObjectionHandling   int `json:"objection_handling"`
	Professionalism     int `json:"professionalism"`
	ClosingHandoff      int `json:"closing_handoff"`
}

// Category is one scored rubric line.
type Category struct {
	Key    string
	Label  string
	Weight int
	Score  int
}

// Categories returns the scores in report order with their weights.
func (s Scores) Categories() []Category {
	return []Category{
		{Key: "opening", Label: "Opening", Weight: 10, Score: s.Opening},
		{Key: "need_discovery", Label: "Need Discovery", Weight: 25, Score: s.NeedDiscovery},
		{Key: "budget_qualification", Label: "Budget Qualification", Weight: 20, Score: s.BudgetQualification},
		{Key: "buying_readiness", Label: "Buying Readiness", Weight: 15, Score: s.BuyingReadiness},
		{Key: "objection_handling", Label: "Objection Handling", Weight: 15, Score: s.ObjectionHandling},
		{Key: "professionalism", Label: "Professionalism", Weight: 5, Score: s.Professionalism},
		{Key: "closing_handoff", Label: "Closing & Handoff", Weight: 10, Score: s.ClosingHandoff},
	}
}

// Weighted computes the rubric's weighted average, rounded to the nearest
// integer. The model's own overall score remains authoritative.
func (s Scores) Weighted() int {
	total := 0
	for _, c := range s.Categories() {
		total += c.Score * c.Weight
	}
	return int(math.Round(float64(total) / 100))
}

// CustomerProfile is the hidden customer profile inferred from the dialogue.
type CustomerProfile struct {
	Intent       string `json:"intent" jsonschema:"Hot Lead, Warm Lead, Researcher or Browser"`
	Language     string `json:"language" jsonschema:"English, Hinglish, Hindi-dominant or Regional English"`
	Personality  string `json:"personality" jsonschema:"buyer personality type"`
	Background   string `json:"background" jsonschema:"Metro Professional, Tier-2 City Buyer, First-time Buyer or Traditional"`
	HiddenBudget string `json:"hidden_budget" jsonschema:"budget range such as Rs.X-Rs.Y"`
}

// CustomerPersona captures the layered persona traits, read from a LAYERS tag
// when the voice model emitted one.
type CustomerPersona struct {
	Funnel        string `json:"funnel"`
	Language      string `json:"language"`
	Emotion       string `json:"emotion"`
	AskedDiscount bool   `json:"asked_discount"`
}

// Discovered holds the facts the rep managed to uncover.
type Discovered struct {
	Purpose     string `json:"purpose"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
	Preferences string `json:"preferences"`
}

// Result is the structured evaluation of one session.
type Result struct {
	Scores            Scores          `json:"scores"`
	OverallScore      int             `json:"overall_score"`
	LeadStatus        LeadStatus      `json:"lead_status"`
	Summary           string          `json:"summary"`
	CustomerProfile   CustomerProfile `json:"customer_profile"`
	CustomerPersona   CustomerPersona `json:"customer_persona"`
	Discovered        Discovered      `json:"discovered"`
	Strengths         []string        `json:"strengths"`
	Improvements      []string        `json:"improvements"`
	RecommendedAction string          `json:"recommended_action"`
}

// ErrInvalidResult marks a structurally valid response with out-of-range values.
var ErrInvalidResult = errors.New("invalid grading result")

// Validate checks ranges and the lead status enum.
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: missing", ErrInvalidResult)
	}
	if err := checkScore("overall_score", r.OverallScore); err != nil {
		return err
	}
	for _, c := range r.Scores.Categories() {
		if err := checkScore(c.Key, c.Score); err != nil {
			return err
		}
	}
	if !r.LeadStatus.Valid() {
		return fmt.Errorf("%w: lead_status %q", ErrInvalidResult, r.LeadStatus)
	}
	return nil
}

func checkScore(name string, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %s=%d out of range", ErrInvalidResult, name, v)
	}
	return nil
}

// Request is the input to a grader.
type Request struct {
	Transcript string
	Persona    PersonaLabels
	Duration   time.Duration
}

// PersonaLabels are the persona fields the rubric embeds.
type PersonaLabels struct {
	Key          string
	Name         string
	StoneEnglish string
	StoneHindi   string
	Planet       string
}

// FormatDuration renders "M minutes S seconds" for the rubric.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d minutes %d seconds", total/60, total%60)
}

// ShortDuration renders "Xm Ys" for listings and reports.
func ShortDuration(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// Normalize trims free-text fields and upper-cases the lead status.
func (r *Result) Normalize() {
	r.LeadStatus = LeadStatus(strings.ToUpper(strings.TrimSpace(string(r.LeadStatus))))
	r.Summary = strings.TrimSpace(r.Summary)
	r.RecommendedAction = strings.TrimSpace(r.RecommendedAction)
	r.Strengths = compact(r.Strengths)
	r.Improvements = compact(r.Improvements)
}

func compact(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
