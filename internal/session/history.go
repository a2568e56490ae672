package session

import (
	"sync"
	"time"

	"github.com/yashas004/persona/internal/metrics"
	"github.com/yashas004/persona/internal/progress"
	"github.com/yashas004/persona/pkg/provider/coach"
)

// Record is the immutable result of one completed session.
type Record struct {
	// Timestamp is when the session completed.
	Timestamp time.Time `json:"timestamp"`

	// DurationSeconds is the actual recording length.
	DurationSeconds float64 `json:"duration_seconds"`

	// Prompt is the text the user responded to.
	Prompt string `json:"prompt"`

	// Facial holds the aggregated facial metrics.
	Facial metrics.FacialMetrics `json:"facial_metrics"`

	// Audio holds the voice metrics, nil for facial-only sessions.
	Audio *metrics.AudioMetrics `json:"audio_metrics,omitempty"`

	// Report is the feedback generated for this session.
	Report *coach.Report `json:"report"`

	// NewBadges lists badges unlocked by this session, in unlock order.
	NewBadges []progress.Badge `json:"new_badges,omitempty"`
}

// History is an append-only, chronologically ordered store of session
// records. Safe for concurrent use.
type History struct {
	mu      sync.Mutex
	records []Record
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Append adds a record. Records are never reordered or pruned.
func (h *History) Append(r Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
}

// All returns a copy of every record in insertion order.
func (h *History) All() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Record(nil), h.records...)
}

// Latest returns the most recent record, or false when the history is empty.
func (h *History) Latest() (Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// Len returns the number of stored records.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}
