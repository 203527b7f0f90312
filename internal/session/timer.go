package session

import (
	"math"
	"time"
)

// Timer measures one round. Duration is only meaningful after Stop; Reset
// clears everything.
type Timer struct {
	startTime time.Time
	endTime   time.Time
	duration  float64

	now func() time.Time
}

func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

func (t *Timer) Start() {
	t.startTime = t.now()
	t.endTime = time.Time{}
	t.duration = 0
}

// Stop freezes the timer and returns the round duration in seconds, rounded
// to two decimals.
func (t *Timer) Stop() float64 {
	if !t.startTime.IsZero() {
		t.endTime = t.now()
		t.duration = round2(t.endTime.Sub(t.startTime).Seconds())
	}
	return t.duration
}

func (t *Timer) Reset() {
	t.startTime = time.Time{}
	t.endTime = time.Time{}
	t.duration = 0
}

// Running reports whether the timer has started and not stopped.
func (t *Timer) Running() bool {
	return !t.startTime.IsZero() && t.endTime.IsZero()
}

// Duration returns the frozen duration of a stopped timer.
func (t *Timer) Duration() float64 {
	return t.duration
}

// Elapsed returns the seconds since Start while the timer runs, to one
// decimal.
func (t *Timer) Elapsed() float64 {
	if t.startTime.IsZero() {
		return 0
	}
	if !t.endTime.IsZero() {
		return t.duration
	}
	return math.Round(t.now().Sub(t.startTime).Seconds()*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
