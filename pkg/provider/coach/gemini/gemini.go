// Package gemini provides a coach.Client backed by the Google Gemini
// generateContent REST API.
//
// The API nests the model's text inside a candidates/content/parts envelope,
// so decoding is two-stage: first the transport envelope, then the text
// payload itself as the report schema. A failure at either stage is a normal
// coach error and triggers the caller's local fallback.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yashas004/persona/pkg/provider/coach"
)

// defaultBaseURL is the Gemini REST endpoint root.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultModel is used when no model is configured.
const defaultModel = "gemini-pro"

// defaultTimeout bounds each generateContent call so a slow network cannot
// stall the session; the caller's fallback guarantee depends on this.
const defaultTimeout = 15 * time.Second

// Client implements coach.Client using the Gemini REST API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// Option is a functional option for Client.
type Option func(*Client)

// WithModel selects a specific Gemini model (e.g., "gemini-1.5-flash").
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithBaseURL overrides the default API endpoint root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpc.Timeout = d
	}
}

// New constructs a Gemini coach client.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: apiKey must not be empty")
	}
	c := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// generateRequest is the outbound generateContent body: a single
// natural-language part.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the transport envelope. Only the first candidate's
// first text part is consumed.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Feedback implements coach.Client.
func (c *Client) Feedback(ctx context.Context, req coach.Request) (*coach.Report, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Instruction}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// The key travels in a header, not the query string, so it cannot end
	// up in proxy or access logs.
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	// Stage one: the transport envelope.
	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("gemini: decode envelope: %w", err)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini: response has no candidates")
	}

	// Stage two: the text payload as the report schema.
	report, err := coach.DecodeReport(envelope.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return report, nil
}

var _ coach.Client = (*Client)(nil)
