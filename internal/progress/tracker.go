// Package progress tracks gamified practice progress across sessions:
// completed-session count, a daily streak, and one-time badge unlocks.
package progress

import (
	"sync"
	"time"

	"github.com/yashas004/persona/pkg/provider/coach"
)

// Badge is a fixed, enumerable achievement tag. Each badge is unlocked at
// most once per tracker lifetime.
type Badge string

const (
	// BadgeStarPerformer rewards an overall score above 85.
	BadgeStarPerformer Badge = "Star Performer"

	// BadgeDedicatedLearner rewards completing exactly the fifth session.
	BadgeDedicatedLearner Badge = "Dedicated Learner"

	// BadgeThreeDayStreak rewards practicing three days in a row.
	BadgeThreeDayStreak Badge = "3-Day Streak"

	// BadgeExpressionMaster rewards an expression score above 80.
	BadgeExpressionMaster Badge = "Expression Master"

	// BadgeVoicePro rewards a voice score above 80 on a session with audio.
	BadgeVoicePro Badge = "Voice Pro"
)

// State is a snapshot of the tracked progress.
type State struct {
	// SessionsCompleted counts distinct-day session completions.
	SessionsCompleted int `json:"sessions_completed"`

	// CurrentStreak is the number of consecutive practice days ending at
	// LastSessionDate.
	CurrentStreak int `json:"current_streak"`

	// LastSessionDate is the date of the most recent counted session.
	// The zero time means no session has been recorded yet.
	LastSessionDate time.Time `json:"last_session_date,omitempty"`

	// Unlocked lists earned badges in unlock order, without duplicates.
	Unlocked []Badge `json:"unlocked_badges"`
}

// Tracker owns the mutable progress state. Safe for concurrent use,
// though the session recorder runs at most one pipeline at a time.
type Tracker struct {
	mu    sync.Mutex
	state State
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// NewTrackerFromState creates a Tracker seeded with a previously saved
// state, e.g. one restored from a persisted session bundle.
func NewTrackerFromState(s State) *Tracker {
	s.Unlocked = append([]Badge(nil), s.Unlocked...)
	return &Tracker{state: s}
}

// Record applies one completed session to the progress state and returns
// the badges newly unlocked by this session, in evaluation order.
//
// The streak machine only counts the first session of each day: a repeat
// session on the same date is still scored for badges but leaves the
// session count, streak, and last-session date untouched.
func (t *Tracker) Record(report *coach.Report, today time.Time) []Badge {
	t.mu.Lock()
	defer t.mu.Unlock()

	today = dateOnly(today)
	last := dateOnly(t.state.LastSessionDate)

	if t.state.LastSessionDate.IsZero() || !today.Equal(last) {
		t.state.SessionsCompleted++
		switch {
		case t.state.LastSessionDate.IsZero():
			t.state.CurrentStreak = 1
		case dayGap(last, today) == 1:
			t.state.CurrentStreak++
		default:
			t.state.CurrentStreak = 1
		}
		t.state.LastSessionDate = today
	}

	var unlocked []Badge
	award := func(b Badge, earned bool) {
		if !earned || t.owns(b) {
			return
		}
		t.state.Unlocked = append(t.state.Unlocked, b)
		unlocked = append(unlocked, b)
	}

	award(BadgeStarPerformer, report.OverallScore > 85)
	award(BadgeDedicatedLearner, t.state.SessionsCompleted == 5)
	award(BadgeThreeDayStreak, t.state.CurrentStreak >= 3)
	award(BadgeExpressionMaster, report.ExpressionScore > 80)
	award(BadgeVoicePro, report.VoiceScore != nil && *report.VoiceScore > 80)

	return unlocked
}

// Snapshot returns a copy of the current state. The Unlocked slice is
// copied so callers cannot mutate tracker internals.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state
	s.Unlocked = append([]Badge(nil), t.state.Unlocked...)
	return s
}

func (t *Tracker) owns(b Badge) bool {
	for _, have := range t.state.Unlocked {
		if have == b {
			return true
		}
	}
	return false
}

func dateOnly(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayGap(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
