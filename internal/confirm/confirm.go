// Package confirm implements a bounded yes/no prompt: an operation opens a
// prompt, an external signal resolves it, and the waiter gets one of three
// outcomes. The chat adapter owns the prompt UI; this package only carries
// the decision.
package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Outcome of a prompt.
type Outcome int

const (
	TimedOut Outcome = iota
	Confirmed
	Declined
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Declined:
		return "declined"
	default:
		return "timed_out"
	}
}

// DefaultTimeout bounds how long a prompt stays open.
const DefaultTimeout = 30 * time.Second

// Prompt is one open confirmation.
type Prompt struct {
	ID      uuid.UUID
	done    chan Outcome
	timeout time.Duration
}

// Manager tracks open prompts by id.
type Manager struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*Prompt
	timeout time.Duration
}

func NewManager(timeout time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		pending: make(map[uuid.UUID]*Prompt),
		timeout: timeout,
	}
}

// Open registers a new prompt.
func (m *Manager) Open() *Prompt {
	p := &Prompt{
		ID:      uuid.New(),
		done:    make(chan Outcome, 1),
		timeout: m.timeout,
	}
	m.mu.Lock()
	m.pending[p.ID] = p
	m.mu.Unlock()
	return p
}

// Resolve delivers the decision for an open prompt. Resolving an unknown or
// already-settled prompt is a no-op and returns false.
func (m *Manager) Resolve(id uuid.UUID, confirmed bool) bool {
	m.mu.Lock()
	p, ok := m.pending[id]
	if ok {
		delete(m.pending, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	outcome := Declined
	if confirmed {
		outcome = Confirmed
	}
	p.done <- outcome
	return true
}

// Wait blocks until the prompt is resolved, its timeout elapses, or the
// context is cancelled. Timeout and cancellation both report TimedOut and
// close the prompt.
func (m *Manager) Wait(ctx context.Context, p *Prompt) Outcome {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case outcome := <-p.done:
		return outcome
	case <-timer.C:
	case <-ctx.Done():
	}

	m.mu.Lock()
	delete(m.pending, p.ID)
	m.mu.Unlock()

	// A Resolve may have raced the timeout; prefer its answer.
	select {
	case outcome := <-p.done:
		return outcome
	default:
		return TimedOut
	}
}
