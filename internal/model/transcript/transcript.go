package transcript

// Role identifies a speaker in the assembled transcript.
type Role string

const (
	// RoleSalesRep is the human trainee, heard through server-side transcription.
	RoleSalesRep Role = "SALES_REP"
	// RoleCustomer is the simulated customer played by the voice model.
	RoleCustomer Role = "CUSTOMER"
)

// Source records where the final transcript text came from.
type Source string

const (
	SourceMerged   Source = "merged"
	SourceFallback Source = "fallback"
)

// Segment is a timed line of dialogue. Timestamp is seconds from session start.
type Segment struct {
	Role      Role    `json:"role"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// Turn is a client-recorded utterance of the simulated customer.
type Turn struct {
	Text      string  `json:"text"`
	Timestamp float64 `json:"timestamp"`
}

// HandoffOutcome is the customer's reaction to a handoff offer.
type HandoffOutcome string

const (
	HandoffAccepted HandoffOutcome = "accepted"
	HandoffRejected HandoffOutcome = "rejected"
	HandoffUnclear  HandoffOutcome = "unclear"
)

// Handoff records whether the rep offered to pass the lead on to the sales
// team or an astrologer, and how the customer answered.
type Handoff struct {
	Offered bool           `json:"offered"`
	Line    string         `json:"line,omitempty"`
	Outcome HandoffOutcome `json:"outcome,omitempty"`
}
