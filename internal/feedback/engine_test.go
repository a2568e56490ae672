package feedback

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/yashas004/persona/internal/metrics"
	"github.com/yashas004/persona/pkg/provider/coach"
	coachmock "github.com/yashas004/persona/pkg/provider/coach/mock"
)

func remoteReport() *coach.Report {
	return &coach.Report{
		OverallScore:    91,
		ExpressionScore: 89,
		Strengths:       []string{"remote strength"},
		AreasToImprove:  []string{"remote area"},
		Tips:            []string{"remote tip"},
	}
}

func TestGenerate_NoCoachUsesHeuristic(t *testing.T) {
	engine := NewEngine(nil)
	facial := metrics.FacialMetrics{
		ExpressionDiversity: 75,
		EyeMovement:         80,
		MouthMovement:       40,
		HeadPosition:        55,
	}

	report := engine.Generate(context.Background(), "Tell me about your day", facial, nil)

	if report.ExpressionScore != 65.0 {
		t.Errorf("ExpressionScore = %v, want 65.0", report.ExpressionScore)
	}
	if report.OverallScore != 65.0 {
		t.Errorf("OverallScore = %v, want 65.0 (no audio)", report.OverallScore)
	}
	if report.VoiceScore != nil {
		t.Errorf("VoiceScore = %v, want nil without audio", *report.VoiceScore)
	}
	if !slices.Contains(report.Strengths, "Good eye expressiveness") {
		t.Errorf("Strengths = %v, want eye expressiveness entry", report.Strengths)
	}
	if !slices.Contains(report.AreasToImprove, "Facial expressions") {
		t.Errorf("AreasToImprove = %v, want facial expressions entry", report.AreasToImprove)
	}
	if len(report.Tips) == 0 || !strings.Contains(report.Tips[0], "mouth") {
		t.Errorf("Tips = %v, want a mouth expressiveness tip", report.Tips)
	}
}

func TestGenerate_RemoteReportUsedWhole(t *testing.T) {
	remote := &coachmock.Client{Report: remoteReport()}

	engine := NewEngine(remote)
	report := engine.Generate(context.Background(), "x", metrics.FacialMetrics{}, nil)

	if !reflect.DeepEqual(report, remote.Report) {
		t.Errorf("report = %+v, want the remote report unchanged", report)
	}
	if remote.FeedbackCallCount() != 1 {
		t.Errorf("coach called %d times, want 1", remote.FeedbackCallCount())
	}
}

func TestGenerate_RemoteFailureMatchesNoCredentialPath(t *testing.T) {
	facial := metrics.FacialMetrics{
		ExpressionDiversity: 75,
		EyeMovement:         80,
		MouthMovement:       40,
		HeadPosition:        55,
	}
	audio := &metrics.AudioMetrics{Volume: 50, PitchVariation: 75, SpeechRate: 60, Clarity: 85}

	failing := NewEngine(&coachmock.Client{FeedbackErr: errors.New("connection refused")})
	local := NewEngine(nil)

	got := failing.Generate(context.Background(), "x", facial, audio)
	want := local.Generate(context.Background(), "x", facial, audio)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("fallback report = %+v, want identical to no-credential report %+v", got, want)
	}
}

func TestGenerate_InstructionEmbedsPromptAndMetrics(t *testing.T) {
	remote := &coachmock.Client{Report: remoteReport()}
	engine := NewEngine(remote)

	facial := metrics.FacialMetrics{ExpressionDiversity: 2, EyeMovement: 43.217, MouthMovement: 10, HeadPosition: 55}
	audio := &metrics.AudioMetrics{Volume: 12.5, PitchVariation: 3, SpeechRate: 4, Clarity: 61}
	engine.Generate(context.Background(), "Describe your week", facial, audio)

	if len(remote.FeedbackCalls) != 1 {
		t.Fatalf("coach called %d times, want 1", len(remote.FeedbackCalls))
	}
	instr := remote.FeedbackCalls[0].Req.Instruction
	for _, want := range []string{"Describe your week", "43.22", "12.50", "voice_score", "strict JSON"} {
		if !strings.Contains(instr, want) {
			t.Errorf("instruction missing %q:\n%s", want, instr)
		}
	}
}

func TestGenerate_InstructionOmitsVoiceFieldsWithoutAudio(t *testing.T) {
	remote := &coachmock.Client{Report: remoteReport()}
	engine := NewEngine(remote)

	engine.Generate(context.Background(), "x", metrics.FacialMetrics{}, nil)

	instr := remote.FeedbackCalls[0].Req.Instruction
	if strings.Contains(instr, "voice_score") {
		t.Errorf("instruction asks for voice_score without audio:\n%s", instr)
	}
}
