package persona

import "strings"

// DefaultVoice is used when a catalog entry omits its voice.
const DefaultVoice = "alloy"

// Persona is a simulated customer the sales rep practices against.
// Script is handed verbatim to the realtime voice model and is never
// interpreted by this service.
type Persona struct {
	ID           string `yaml:"key" json:"key"`
	Name         string `yaml:"name" json:"name"`
	Emoji        string `yaml:"emoji" json:"emoji,omitempty"`
	StoneEnglish string `yaml:"stoneEnglish" json:"stone_english"`
	StoneHindi   string `yaml:"stoneHindi" json:"stone_hindi"`
	Planet       string `yaml:"planet" json:"planet"`
	Color        string `yaml:"color" json:"color,omitempty"`
	Description  string `yaml:"description" json:"description"`
	Difficulty   string `yaml:"difficulty" json:"difficulty"`
	Budget       string `yaml:"budget" json:"budget"`
	VoiceID      string `yaml:"voice" json:"voice"`
	Script       string `yaml:"script" json:"-"`
}

// Summary is the public view of a persona, without the behavior script.
type Summary struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Emoji        string `json:"emoji,omitempty"`
	StoneEnglish string `json:"stone_english"`
	StoneHindi   string `json:"stone_hindi"`
	Planet       string `json:"planet"`
	Color        string `json:"color,omitempty"`
	Description  string `json:"description"`
	Difficulty   string `json:"difficulty"`
	Budget       string `json:"budget"`
}

// Summary strips the script.
func (p Persona) Summary() Summary {
	return Summary{
		Key:          p.ID,
		Name:         p.Name,
		Emoji:        p.Emoji,
		StoneEnglish: p.StoneEnglish,
		StoneHindi:   p.StoneHindi,
		Planet:       p.Planet,
		Color:        p.Color,
		Description:  p.Description,
		Difficulty:   p.Difficulty,
		Budget:       p.Budget,
	}
}

// Voice returns the configured voice or DefaultVoice.
func (p Persona) Voice() string {
	if v := strings.TrimSpace(p.VoiceID); v != "" {
		return v
	}
	return DefaultVoice
}

// Summaries maps a persona list to its public views, keeping order.
func Summaries(items []Persona) []Summary {
	out := make([]Summary, 0, len(items))
	for _, item := range items {
		out = append(out, item.Summary())
	}
	return out
}
