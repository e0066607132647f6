package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeAnxiousCustomer(t *testing.T) {
	d := Analyze("I'm scared of Neelam. What if it brings bad luck? My friend was afraid too.")
	assert.Equal(t, Anxious, d.Mood)
	assert.GreaterOrEqual(t, d.Intensity, 2)
	assert.LessOrEqual(t, d.Intensity, 5)
}

func TestAnalyzePriceSensitive(t *testing.T) {
	d := Analyze("This is too expensive. Tanishq gave me a better price, any discount?")
	assert.Equal(t, PriceSensitive, d.Mood)
}

func TestAnalyzeNeutral(t *testing.T) {
	assert.Equal(t, Decision{Mood: Neutral, Intensity: 1}, Analyze("Hello."))
	assert.Equal(t, Neutral, Analyze("   ").Mood)
}

func TestAnalyzeTiesAreDeterministic(t *testing.T) {
	// one skeptical and one price keyword
	for i := 0; i < 20; i++ {
		assert.Equal(t, Skeptical, Analyze("Is it certified? And the price?").Mood)
	}
}

func TestIntensityCapped(t *testing.T) {
	d := Analyze("scared scared scared scared scared scared scared scared afraid worried")
	assert.Equal(t, 5, d.Intensity)
}
