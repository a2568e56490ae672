package coach

import (
	"errors"
	"testing"
)

func TestDecodeReport_PlainJSON(t *testing.T) {
	report, err := DecodeReport(`{
		"overall_score": 72.5,
		"expression_score": 70,
		"strengths": ["Good eye expressiveness"],
		"areas_to_improve": ["Facial expressions"],
		"tips": ["Be more expressive with your mouth"]
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OverallScore != 72.5 {
		t.Errorf("OverallScore = %v, want 72.5", report.OverallScore)
	}
	if report.VoiceScore != nil {
		t.Errorf("VoiceScore = %v, want nil when absent", *report.VoiceScore)
	}
}

func TestDecodeReport_StripsCodeFence(t *testing.T) {
	report, err := DecodeReport("```json\n{\"overall_score\": 50, \"expression_score\": 50, \"strengths\": [\"a\"], \"areas_to_improve\": [\"b\"], \"tips\": [\"c\"]}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OverallScore != 50 {
		t.Errorf("OverallScore = %v, want 50", report.OverallScore)
	}
}

func TestDecodeReport_MalformedJSON(t *testing.T) {
	if _, err := DecodeReport("here are your results: great job!"); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestDecodeReport_MissingRequiredField(t *testing.T) {
	// No tips — structurally valid JSON, semantically incomplete.
	_, err := DecodeReport(`{
		"overall_score": 72.5,
		"expression_score": 70,
		"strengths": ["a"],
		"areas_to_improve": ["b"]
	}`)
	if !errors.Is(err, ErrIncompleteReport) {
		t.Fatalf("err = %v, want ErrIncompleteReport", err)
	}
}

func TestReportValidate(t *testing.T) {
	full := &Report{
		Strengths:      []string{"a"},
		AreasToImprove: []string{"b"},
		Tips:           []string{"c"},
	}
	if err := full.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	empty := &Report{}
	if err := empty.Validate(); !errors.Is(err, ErrIncompleteReport) {
		t.Fatalf("err = %v, want ErrIncompleteReport", err)
	}
}
