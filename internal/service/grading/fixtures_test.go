package grading

import (
	"time"

	"github.com/gemsales/voice-trainer/backend/internal/model/grading"
)

const validResponse = `{
  "scores": {
    "opening": 70,
    "need_discovery": 55,
    "budget_qualification": 40,
    "buying_readiness": 50,
    "objection_handling": 60,
    "professionalism": 85,
    "closing_handoff": 45
  },
  "overall_score": 55,
  "lead_status": "WARM",
  "summary": "Friendly opening but the budget was never pinned down.",
  "customer_profile": {
    "intent": "Researcher",
    "language": "Hinglish",
    "personality": "Authenticity Skeptic",
    "background": "Tier-2 City Buyer",
    "hidden_budget": "Rs.15,000-Rs.40,000"
  },
  "customer_persona": {
    "funnel": "Research Mode",
    "language": "Hinglish",
    "emotion": "Confused",
    "asked_discount": true
  },
  "discovered": {
    "purpose": "Shani dasha remedy",
    "budget": "Unknown",
    "timeline": "Within a month",
    "preferences": "Ceylon blue sapphire, 5 ratti"
  },
  "strengths": ["Introduced self by name", "Explained certification"],
  "improvements": ["Ask the budget range tactfully", "Offer an astrologer consultation"],
  "recommended_action": "Send trial policy on WhatsApp and follow up in 3 days"
}`

func sampleRequest() grading.Request {
	return grading.Request{
		Transcript: "SALES_REP: Namaste, I'm Priya from GemPundit.\n\nCUSTOMER: I need Neelam but I'm scared.",
		Persona: grading.PersonaLabels{
			Key:          "blue_sapphire_customer",
			Name:         "Amateur",
			StoneEnglish: "Blue Sapphire",
			StoneHindi:   "Neelam",
			Planet:       "Saturn (Shani)",
		},
		Duration: 125 * time.Second,
	}
}
