// Package mood infers the simulated customer's dominant mood from what they
// said during the call. It is a keyword heuristic shown alongside the model's
// own assessment in the report.
package mood

import (
	"strings"
)

// Label is a coarse customer mood.
type Label string

const (
	Neutral        Label = "neutral"
	Interested     Label = "interested"
	Excited        Label = "excited"
	Skeptical      Label = "skeptical"
	Anxious        Label = "anxious"
	Confused       Label = "confused"
	PriceSensitive Label = "price-sensitive"
	Impatient      Label = "impatient"
)

// Decision is the detected mood and its intensity on a 1-5 scale.
type Decision struct {
	Mood      Label
	Intensity int
	Score     int
}

// order breaks ties so the result never depends on map iteration.
var order = []Label{Anxious, Skeptical, PriceSensitive, Confused, Impatient, Excited, Interested}

var keywordBuckets = map[Label][]string{
	Interested: {
		"tell me more", "sounds good", "interested", "i like", "what options", "show me", "achha", "theek hai",
		"how does it work", "which one", "can you share", "send me",
	},
	Excited: {
		"wow", "amazing", "beautiful", "perfect", "love it", "exactly what", "great", "bahut badhiya", "wonderful",
	},
	Skeptical: {
		"fake", "genuine", "real or", "certified", "certificate", "guarantee", "how do i know", "trust",
		"not sure", "lab", "synthetic", "heated", "treated", "really", "prove",
	},
	Anxious: {
		"scared", "afraid", "worried", "dar", "risky", "side effect", "bad luck", "suit me", "harm", "nervous",
		"what if", "negative", "shani", "problem hoga",
	},
	Confused: {
		"confused", "don't understand", "what is", "what do you mean", "samajh nahi", "which is better",
		"difference between", "ratti or carat", "explain",
	},
	PriceSensitive: {
		"expensive", "costly", "discount", "cheaper", "price", "budget", "mehenga", "too much", "offer",
		"best price", "tanishq", "emi", "lower",
	},
	Impatient: {
		"quickly", "hurry", "no time", "just tell me", "get to the point", "busy", "jaldi", "already told",
		"you asked", "again",
	},
}

// Analyze scores the customer's lines. Lines from the rep are ignored.
func Analyze(customerText string) Decision {
	best := scoreText(customerText)
	if best.Score == 0 {
		return Decision{Mood: Neutral, Intensity: 1}
	}

	intensity := 1 + best.Score/3
	if intensity > 5 {
		intensity = 5
	}
	best.Intensity = intensity
	return best
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Mood: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			scores[label] += 3 * strings.Count(normalized, word)
		}
	}

	scores[Confused] += 2 * strings.Count(text, "??")
	if exclamations := strings.Count(text, "!"); exclamations > 1 {
		scores[Excited] += exclamations
	}

	bestLabel := Neutral
	bestScore := 0
	for _, label := range order {
		if s := scores[label]; s > bestScore {
			bestScore = s
			bestLabel = label
		}
	}

	return Decision{Mood: bestLabel, Score: bestScore}
}
