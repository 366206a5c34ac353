package port

import "context"

// Answer is the responder's reply to one question.
type Answer struct {
	Answer        string  `json:"answer"`
	Confidence    float64 `json:"confidence"`
	SourceSection string  `json:"sourceSection"`
}

// Responder is the external conversational collaborator behind CHATBOT
// conversations. Implementations must bound every call with a timeout; the
// fan-out path treats a slow responder as a failed one.
type Responder interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}
