package report

import "strings"

var replacer = strings.NewReplacer(
	"₹", "Rs.",
	"€", "EUR",
	"£", "GBP",
	"—", "-",
	"–", "-",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"…", "...",
	"•", "*",
)

// Sanitize maps text onto the Latin-1 range the core PDF fonts can draw.
// Known symbols get ASCII stand-ins; anything else outside Latin-1 becomes
// "?". The transform is lossy.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = replacer.Replace(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r > 0xFF {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
