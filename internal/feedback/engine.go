// Package feedback turns aggregated session metrics into a coaching report.
//
// The engine prefers a remote coach backend when one is configured and falls
// back to a deterministic local heuristic on any remote failure. Remote and
// local output are never merged: a remote reply is either accepted whole
// (after validation) or discarded whole.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yashas004/persona/internal/metrics"
	"github.com/yashas004/persona/pkg/provider/coach"
)

// Engine generates feedback reports from aggregated metrics.
type Engine struct {
	coach coach.Client
}

// NewEngine creates an [Engine]. client may be nil, in which case every
// report comes from the local heuristic.
func NewEngine(client coach.Client) *Engine {
	return &Engine{coach: client}
}

// Generate produces a feedback report for one completed session. prompt is
// the text the user responded to; audio is nil for facial-only sessions.
//
// Generate never fails: remote errors are logged as a non-fatal advisory and
// answered with the local heuristic instead.
func (e *Engine) Generate(ctx context.Context, prompt string, facial metrics.FacialMetrics, audio *metrics.AudioMetrics) *coach.Report {
	if e.coach == nil {
		return Heuristic(facial, audio)
	}

	req := coach.Request{Instruction: buildInstruction(prompt, facial, audio)}
	report, err := e.coach.Feedback(ctx, req)
	if err != nil {
		slog.Warn("remote coach unavailable, using local feedback", "error", err)
		return Heuristic(facial, audio)
	}
	return report
}

// expressionScore is the mean of the three expression-related facial
// metrics. Head position is reported to the coach but not scored.
func expressionScore(m metrics.FacialMetrics) float64 {
	return (m.ExpressionDiversity + m.EyeMovement + m.MouthMovement) / 3
}

func voiceScore(m metrics.AudioMetrics) float64 {
	return (m.Volume + m.PitchVariation + m.SpeechRate + m.Clarity) / 4
}

func buildInstruction(prompt string, facial metrics.FacialMetrics, audio *metrics.AudioMetrics) string {
	var b strings.Builder
	b.WriteString("You are an expression and communication coach. ")
	fmt.Fprintf(&b, "The user responded to the prompt: %q\n\n", prompt)
	b.WriteString("Measured facial metrics (0-100 scale):\n")
	fmt.Fprintf(&b, "- expression diversity: %.2f\n", facial.ExpressionDiversity)
	fmt.Fprintf(&b, "- eye movement: %.2f\n", facial.EyeMovement)
	fmt.Fprintf(&b, "- mouth movement: %.2f\n", facial.MouthMovement)
	fmt.Fprintf(&b, "- head position: %.2f\n", facial.HeadPosition)
	if audio != nil {
		b.WriteString("Measured voice metrics (0-100 scale):\n")
		fmt.Fprintf(&b, "- volume: %.2f\n", audio.Volume)
		fmt.Fprintf(&b, "- pitch variation: %.2f\n", audio.PitchVariation)
		fmt.Fprintf(&b, "- speech rate: %.2f\n", audio.SpeechRate)
		fmt.Fprintf(&b, "- clarity: %.2f\n", audio.Clarity)
	}
	b.WriteString("\nReply with strict JSON only, no prose, using exactly these fields: ")
	b.WriteString(`{"overall_score": number, "expression_score": number, `)
	if audio != nil {
		b.WriteString(`"voice_score": number, `)
	}
	b.WriteString(`"strengths": [string], "areas_to_improve": [string], "tips": [string]}`)
	return b.String()
}
