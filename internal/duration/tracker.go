// Package duration measures how long an analyst spends on a proposal and
// aggregates average handling time (TMA) over stored records.
package duration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned when a stored duration cannot be parsed.
var ErrInvalidDuration = errors.New("invalid duration")

// Format renders d as HH:MM:SS. Hours are not wrapped at 24.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Parse accepts HH:MM:SS, MM:SS or a plain number of seconds.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var seconds int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		seconds = seconds*60 + n
	}
	return time.Duration(seconds) * time.Second, nil
}

// Tracker records when a proposal entered review and how long it took.
type Tracker struct {
	started    time.Time
	now        func() time.Time
	generation uint64
	running    bool
}

// NewTracker creates a tracker. A nil clock uses time.Now.
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Start records the creation timestamp and bumps the tick generation.
func (t *Tracker) Start() time.Time {
	t.started = t.now()
	t.running = true
	t.generation++
	return t.started
}

// Running reports whether a proposal is being timed.
func (t *Tracker) Running() bool {
	return t.running
}

// Generation identifies the current timing session. Ticks carrying an older
// generation must be dropped.
func (t *Tracker) Generation() uint64 {
	return t.generation
}

// Elapsed returns the time since Start, or zero when stopped.
func (t *Tracker) Elapsed() time.Duration {
	if !t.running {
		return 0
	}
	return t.now().Sub(t.started)
}

// Display is the HH:MM:SS text for the ticking timer.
func (t *Tracker) Display() string {
	return Format(t.Elapsed())
}

// Snapshot returns the conclusion timestamp and formatted duration without stopping.
func (t *Tracker) Snapshot() (concludedAt time.Time, formatted string) {
	concludedAt = t.now()
	return concludedAt, Format(concludedAt.Sub(t.started))
}

// Stop halts timing and invalidates outstanding ticks.
func (t *Tracker) Stop() {
	if !t.running {
		return
	}
	t.running = false
	t.started = time.Time{}
	t.generation++
}
