package models

// DefaultLegalCitation is the statutory reference used whenever the
// model omits one: law 55.19 on the simplification of administrative
// procedures.
const DefaultLegalCitation = "القانون 55.19"

// StructuredResponse is the canonical answer unit rendered in the chat.
// Checklist, QuickActions and RetrievedProcedures are always non-nil,
// even when the upstream model omitted them. Immutable after creation.
type StructuredResponse struct {
	Summary             string               `json:"summary"`
	Checklist           []string             `json:"checklist"`
	LegalCitation       string               `json:"legalCitation"`
	QuickActions        []string             `json:"quickActions"`
	ProcedureLink       string               `json:"procedureLink"`
	ThematicLink        string               `json:"thematicLink"`
	RetrievedProcedures []RetrievedProcedure `json:"retrievedProcedures"`
}

// Normalized returns a copy with nil sequences coerced to empty ones and
// a missing legal citation replaced by the default reference.
func (r StructuredResponse) Normalized() StructuredResponse {
	if r.Checklist == nil {
		r.Checklist = []string{}
	}
	if r.QuickActions == nil {
		r.QuickActions = []string{}
	}
	if r.RetrievedProcedures == nil {
		r.RetrievedProcedures = []RetrievedProcedure{}
	}
	if r.LegalCitation == "" {
		r.LegalCitation = DefaultLegalCitation
	}
	return r
}

// OutcomeKind discriminates the three possible results of the answer
// pipeline.
type OutcomeKind int

const (
	// OutcomeAnswered carries a synthesized StructuredResponse.
	OutcomeAnswered OutcomeKind = iota
	// OutcomeNoMatch carries a fixed structured response inviting the
	// user to rephrase; the generative model was not invoked.
	OutcomeNoMatch
	// OutcomeFailed carries a user-safe message; the underlying cause
	// is logged, never surfaced.
	OutcomeFailed
)

// Outcome is a closed tagged result: Answered, NoMatch or Failed.
// Construct it only through Answered, NoMatch or Failed.
type Outcome struct {
	kind     OutcomeKind
	response *StructuredResponse
	message  string
}

// Answered wraps a synthesized response.
func Answered(resp *StructuredResponse) Outcome {
	return Outcome{kind: OutcomeAnswered, response: resp}
}

// NoMatch wraps the fixed nothing-found response.
func NoMatch(resp *StructuredResponse) Outcome {
	return Outcome{kind: OutcomeNoMatch, response: resp}
}

// Failed wraps a user-safe failure message.
func Failed(message string) Outcome {
	return Outcome{kind: OutcomeFailed, message: message}
}

// Kind returns the outcome discriminator.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Response returns the structured response for Answered and NoMatch
// outcomes, nil for Failed.
func (o Outcome) Response() *StructuredResponse { return o.response }

// Message returns the user-safe message for Failed outcomes.
func (o Outcome) Message() string { return o.message }
