// Package scoring holds the contract with the language model that judges how
// well a resume fits a job posting and lists the skills a resume mentions.
package scoring

import (
	"context"
	"errors"
)

// Verdict is the oracle's judgement of one resume against one job description.
// Score runs from 0 to 100 and higher means a worse fit.
type Verdict struct {
	Score    float64
	Comment  string
	Feedback string
}

// Oracle is the external collaborator consulted after an application or a
// resume has been committed. Callers treat every error as non-fatal.
type Oracle interface {
	Score(ctx context.Context, resumeText, jobDescription string) (Verdict, error)
	ExtractSkills(ctx context.Context, resumeText string) ([]string, error)
}

// Completer sends a single prompt to a model and returns the raw text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned when no model provider is configured.
var ErrNotConfigured = errors.New("llm provider not configured")

// Placeholder is the Completer used when LLM_PROVIDER is none.
type Placeholder struct{}

// Complete returns ErrNotConfigured.
func (Placeholder) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}
