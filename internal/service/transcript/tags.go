package transcript

import (
	"regexp"
	"strings"
)

var (
	profileTagPattern = regexp.MustCompile(`\[CUSTOMER_PROFILE:([^\]]+)\]`)
	layersTagPattern  = regexp.MustCompile(`(?i)\[LAYERS:([^\]]+)\]`)
)

// ExtractProfileTag returns the body of the first [CUSTOMER_PROFILE: ...]
// tag the voice model emitted, or "". It is display-only and never verified.
func ExtractProfileTag(text string) string {
	m := profileTagPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// StripProfileTag removes every profile tag from text.
func StripProfileTag(text string) string {
	if !strings.Contains(text, "[CUSTOMER_PROFILE:") {
		return text
	}
	return strings.TrimSpace(profileTagPattern.ReplaceAllString(text, ""))
}

// ParseLayersTag parses "[LAYERS: funnel=X, language=Y, emotion=Z, discount=yes]"
// into lower-cased keys and trimmed values.
func ParseLayersTag(text string) (map[string]string, bool) {
	m := layersTagPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	layers := make(map[string]string)
	for _, part := range strings.Split(m[1], ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		layers[key] = strings.TrimSpace(value)
	}
	if len(layers) == 0 {
		return nil, false
	}
	return layers, true
}
