// Package coach defines the Client interface for remote feedback services.
//
// A coach client wraps a language-model backend (Gemini REST, OpenAI, or any
// provider reachable through any-llm-go) and turns one natural-language
// coaching instruction into a structured feedback report. The remote service
// is strictly optional: when no client is configured, or when a call fails
// at any stage, the feedback engine falls back to its local rule-based
// report — callers must therefore treat every error from Feedback as
// recoverable.
//
// Implementations must be safe for concurrent use and must respect context
// cancellation.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteReport is returned when a backend's reply decodes as JSON but
// is missing one or more required report fields. The partial result is
// discarded entirely; remote and local output are never merged.
var ErrIncompleteReport = errors.New("coach: report is missing required fields")

// Request carries one coaching request. The instruction is a single
// natural-language message embedding the practice prompt and every metric
// value, and asking for a strict JSON reply shaped like [Report].
type Request struct {
	// Instruction is the complete coaching instruction text.
	Instruction string
}

// Report is the structured feedback for one practice session. It is the
// wire schema the remote service must produce and the shape the local
// heuristic fills in.
type Report struct {
	// OverallScore summarises the whole performance on a 0–100 scale.
	OverallScore float64 `json:"overall_score"`

	// ExpressionScore summarises the facial metrics on a 0–100 scale.
	ExpressionScore float64 `json:"expression_score"`

	// VoiceScore summarises the audio metrics. Nil when the session had no
	// audio capture.
	VoiceScore *float64 `json:"voice_score,omitempty"`

	// Strengths, AreasToImprove, and Tips are ordered lists of short
	// user-facing strings. Strengths and AreasToImprove are never empty
	// after generation; a tip is typically paired with one area.
	Strengths      []string `json:"strengths"`
	AreasToImprove []string `json:"areas_to_improve"`
	Tips           []string `json:"tips"`
}

// Validate reports whether r carries every required field. Used by backends
// to reject structurally valid JSON that is semantically incomplete.
func (r *Report) Validate() error {
	if len(r.Strengths) == 0 || len(r.AreasToImprove) == 0 || len(r.Tips) == 0 {
		return ErrIncompleteReport
	}
	return nil
}

// Client is the abstraction over any remote feedback backend.
type Client interface {
	// Feedback sends one coaching request and returns the decoded report.
	// Any transport failure, non-2xx status, malformed JSON, or incomplete
	// report must surface as an error; partial results are never returned.
	Feedback(ctx context.Context, req Request) (*Report, error)
}

// DecodeReport parses a model's text reply into a validated Report. Models
// often wrap JSON in a Markdown code fence despite instructions; the fence
// is stripped before decoding. Shared by every backend so that malformed and
// incomplete replies fail identically regardless of provider.
func DecodeReport(text string) (*Report, error) {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	var report Report
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, fmt.Errorf("coach: decode report: %w", err)
	}
	if err := report.Validate(); err != nil {
		return nil, err
	}
	return &report, nil
}
