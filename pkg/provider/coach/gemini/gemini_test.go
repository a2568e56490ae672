package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yashas004/persona/pkg/provider/coach"
)

// envelope builds a generateContent response wrapping text as the first
// candidate part.
func envelope(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

const reportJSON = `{"overall_score": 65, "expression_score": 65, "strengths": ["Good eye expressiveness"], "areas_to_improve": ["Facial expressions"], "tips": ["Be more expressive"]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("test-key", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestFeedback_TwoStageDecode(t *testing.T) {
	var gotPath, gotBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotBody = req.Contents[0].Parts[0].Text
		}
		_, _ = w.Write([]byte(envelope(reportJSON)))
	})

	report, err := c.Feedback(context.Background(), coach.Request{Instruction: "coach me"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OverallScore != 65 {
		t.Errorf("OverallScore = %v, want 65", report.OverallScore)
	}
	if !strings.Contains(gotPath, "gemini-pro:generateContent") {
		t.Errorf("path = %q, want generateContent for the default model", gotPath)
	}
	if gotBody != "coach me" {
		t.Errorf("instruction = %q, want %q", gotBody, "coach me")
	}
}

func TestFeedback_FencedReply(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(envelope("```json\n" + reportJSON + "\n```")))
	})

	report, err := c.Feedback(context.Background(), coach.Request{Instruction: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Strengths) == 0 {
		t.Error("strengths empty after fenced decode")
	}
}

func TestFeedback_HTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := c.Feedback(context.Background(), coach.Request{Instruction: "x"}); err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestFeedback_NoCandidates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	if _, err := c.Feedback(context.Background(), coach.Request{Instruction: "x"}); err == nil {
		t.Fatal("expected error for empty candidate list")
	}
}

func TestFeedback_InnerPayloadNotJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(envelope("I think you did great!")))
	})

	if _, err := c.Feedback(context.Background(), coach.Request{Instruction: "x"}); err == nil {
		t.Fatal("expected error when the inner payload is not report JSON")
	}
}

func TestFeedback_IncompleteReportRejected(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(envelope(`{"overall_score": 65, "expression_score": 65, "strengths": ["a"], "areas_to_improve": ["b"]}`)))
	})

	if _, err := c.Feedback(context.Background(), coach.Request{Instruction: "x"}); err == nil {
		t.Fatal("expected error when tips are missing")
	}
}

func TestFeedback_APIKeyInHeaderNotURL(t *testing.T) {
	var gotHeader, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-goog-api-key")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(envelope(reportJSON)))
	})

	if _, err := c.Feedback(context.Background(), coach.Request{Instruction: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHeader != "test-key" {
		t.Errorf("x-goog-api-key = %q, want %q", gotHeader, "test-key")
	}
	if strings.Contains(gotQuery, "test-key") {
		t.Errorf("api key leaked into URL query: %q", gotQuery)
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
