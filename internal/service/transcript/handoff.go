package transcript

import (
	"regexp"

	model "github.com/gemsales/voice-trainer/backend/internal/model/transcript"
)

var handoffPatterns = compile(
	`\b(connect|transfer|forward|introduce).*(you|your).*(to|with).*(sales|specialist|agent|team|manager|expert)\b`,
	`\b(sales|specialist|agent|team|manager|expert).*(will|shall).*(contact|reach|call|email|whatsapp)\b`,
	`\b(i'll|i will|let me).*(connect|transfer|forward|introduce).*(you|your)\b`,
	`\b(transferring|connecting|forwarding).*(you|your).*(to|with)\b`,
	`\b(i'll|i will).*(have|get).*(sales|specialist|agent|team|manager).*(contact|reach|call)\b`,
	`\b(let me|i'll).*(send|forward|share).*(your|this).*(to|with).*(sales|team)\b`,
	`\b(connect|transfer|forward|introduce).*(you|your).*(to|with).*(astrologer|pandit|jyotish)\b`,
	`\b(astrologer|pandit|jyotish).*(will|shall|can).*(contact|reach|call|consult|help|guide)\b`,
	`\b(i'll|i will|let me).*(connect|arrange|schedule).*(you|your).*(with|to).*(astrologer|pandit)\b`,
	`\b(book|schedule|arrange).*(consultation|appointment|session).*(with|from).*(astrologer|pandit)\b`,
	`\b(free|complimentary).*(astrology|astrological).*(consultation|session)\b`,
)

var acceptPatterns = compile(
	`\b(yes|yeah|sure|ok|okay|fine|great|good|perfect|sounds good|that works|alright)\b`,
	`\b(please|thank you|thanks|appreciate)\b`,
	`\b(when|what time|how soon|how long)\b`,
	`\b(looking forward|can't wait)\b`,
	`\b(go ahead|proceed|let's do|i'm ready)\b`,
)

// Rejections win over acceptances: "okay but I have questions" is a no.
var rejectPatterns = compile(
	`\b(no|nah|not now|not yet|maybe later|not interested|don't want|don't need)\b`,
	`^(wait|hold on)`,
	`\b(first let me|let me think)\b`,
	`\b(but|however|although)\b`,
	`\bi have (questions?|concerns?|doubts?)\b`,
	`\b(tell me more|want to know|can you explain)\b`,
	`\b(expensive|costly|cheaper|discount)\b`,
	`\bstill (thinking|comparing|checking|looking)\b`,
	`\bi'll (think|decide|check|see|get back)\b`,
	`\b(hmm|i'm not sure)\b`,
)

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+expr))
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// IsHandoffOffer reports whether a sales rep line hands the lead to the sales
// team, a specialist or an astrologer.
func IsHandoffOffer(text string) bool {
	return matchAny(handoffPatterns, text)
}

// ClassifyHandoffReply judges the customer line following a handoff offer.
func ClassifyHandoffReply(text string) model.HandoffOutcome {
	switch {
	case matchAny(rejectPatterns, text):
		return model.HandoffRejected
	case matchAny(acceptPatterns, text):
		return model.HandoffAccepted
	default:
		return model.HandoffUnclear
	}
}

// DetectHandoff finds the last handoff offer by the rep and the customer's
// answer to it. An offer with no customer reply after it is unclear.
func DetectHandoff(segments []model.Segment) model.Handoff {
	var result model.Handoff
	for i, seg := range segments {
		if seg.Role != model.RoleSalesRep || !IsHandoffOffer(seg.Text) {
			continue
		}
		result = model.Handoff{Offered: true, Line: seg.Text, Outcome: model.HandoffUnclear}
		for _, next := range segments[i+1:] {
			if next.Role == model.RoleCustomer {
				result.Outcome = ClassifyHandoffReply(next.Text)
				break
			}
		}
	}
	return result
}
