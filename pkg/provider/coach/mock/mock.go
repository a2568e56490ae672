// Package mock provides a test double for the coach.Client interface.
package mock

import (
	"context"
	"sync"

	"github.com/yashas004/persona/pkg/provider/coach"
)

// FeedbackCall records a single invocation of Client.Feedback.
type FeedbackCall struct {
	// Ctx is the context passed to Feedback.
	Ctx context.Context
	// Req is the request passed to Feedback.
	Req coach.Request
}

// Client is a mock implementation of coach.Client.
type Client struct {
	mu sync.Mutex

	// Report is returned by Feedback when FeedbackErr is nil.
	Report *coach.Report

	// FeedbackErr, if non-nil, is returned by every Feedback call.
	FeedbackErr error

	// FeedbackCalls records every call to Feedback in order.
	FeedbackCalls []FeedbackCall
}

// Feedback records the call and returns Report, FeedbackErr.
func (c *Client) Feedback(ctx context.Context, req coach.Request) (*coach.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.FeedbackCalls = append(c.FeedbackCalls, FeedbackCall{Ctx: ctx, Req: req})
	if c.FeedbackErr != nil {
		return nil, c.FeedbackErr
	}
	return c.Report, nil
}

// FeedbackCallCount returns the number of Feedback calls. Thread-safe.
func (c *Client) FeedbackCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.FeedbackCalls)
}

var _ coach.Client = (*Client)(nil)
