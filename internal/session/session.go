// Package session implements the single-match state machine: which roster is
// bound to which channel, the current article pair, the round timer and the
// declared winner. A Session is an owned, injected object, not a global; the
// dispatcher serializes access, and the internal mutex keeps direct callers
// (HTTP status views) safe as well.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State of the round machine.
type State int

const (
	StateIdle State = iota
	StateRosterSet
	StatePathPending
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRosterSet:
		return "roster_set"
	case StatePathPending:
		return "path_pending"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

var (
	ErrAlreadyActive = errors.New("a match is already active in this channel")
	ErrEmptyRoster   = errors.New("cannot start a match with no participants")
	ErrNoPath        = errors.New("no article pair has been generated")
	ErrNoActiveRound = errors.New("no round is in progress")
	ErrNotWinner     = errors.New("only the declared winner may confirm")
	ErrNotFinished   = errors.New("the round has not finished")
	ErrUnranked      = errors.New("unranked round, nothing to record")
	ErrStalePath     = errors.New("stale path generation discarded")
	ErrNotMember     = errors.New("not a member of the current roster")
)

// Article is one endpoint of the navigation challenge.
type Article struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Snapshot is a read-only view of the session for display layers.
type Snapshot struct {
	State     string    `json:"state"`
	Enabled   bool      `json:"enabled"`
	ChannelID string    `json:"channel_id,omitempty"`
	Members   []string  `json:"members"`
	Path      []Article `json:"path,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	Elapsed   float64   `json:"elapsed_seconds"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// WinClaim is what a confirmed win hands to the progression engine.
type WinClaim struct {
	Winner         string
	ElapsedSeconds float64
	Articles       [2]string
	Participants   []string
}

// Session holds the process's single match. All methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	state     State
	enabled   bool
	channelID string
	members   []string
	path      []Article // empty or exactly two entries
	timer     *Timer
	winner    string
	startTime time.Time
	genToken  uuid.UUID
}

func New() *Session {
	return &Session{
		state: StateIdle,
		timer: NewTimer(),
	}
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:     s.state.String(),
		Enabled:   s.enabled,
		ChannelID: s.channelID,
		Members:   append([]string(nil), s.members...),
		Path:      append([]Article(nil), s.path...),
		Winner:    s.winner,
		Elapsed:   s.timer.Elapsed(),
		StartedAt: s.startTime,
	}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Enabled reports whether the current match records progression.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Members returns the current roster.
func (s *Session) Members() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.members...)
}

// IsMember reports roster membership.
func (s *Session) IsMember(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isMember(name)
}

func (s *Session) isMember(name string) bool {
	for _, m := range s.members {
		if m == name {
			return true
		}
	}
	return false
}

// Bind attaches a roster to a channel and enables (or not) progression
// recording. Binding while a match is active in the same channel is a
// conflict; a different channel takes the session over.
func (s *Session) Bind(channelID string, members []string, enabled bool) error {
	if len(members) == 0 {
		return ErrEmptyRoster
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled && s.channelID == channelID {
		return ErrAlreadyActive
	}
	s.channelID = channelID
	s.members = append([]string(nil), members...)
	s.enabled = enabled
	s.startTime = time.Now()
	s.winner = ""
	s.path = nil
	s.timer.Reset()
	s.genToken = uuid.New()
	s.state = StateRosterSet
	return nil
}

// BeginGeneration invalidates any in-flight path generation and returns the
// token the eventual result must present to ApplyPath.
func (s *Session) BeginGeneration() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genToken = uuid.New()
	return s.genToken
}

// ApplyPath installs a generated article pair. A result carrying an old token
// arrived after a reset or a regeneration and is discarded. Path generation
// is allowed in any state and always clears round-scoped fields.
func (s *Session) ApplyPath(token uuid.UUID, start, target Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.genToken {
		return ErrStalePath
	}
	// Regenerating mid-round abandons the old round.
	s.path = []Article{start, target}
	s.timer.Reset()
	s.winner = ""
	s.state = StatePathPending
	return nil
}

// StartRound starts the timer on the pending path and returns the roster to
// credit with participation.
func (s *Session) StartRound() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.path) != 2 {
		return nil, ErrNoPath
	}
	if s.state != StatePathPending {
		return nil, ErrNoActiveRound
	}
	s.timer.Start()
	s.state = StateRunning
	return append([]string(nil), s.members...), nil
}

// CancelRound abandons the pending or running round without a winner. The
// returned revert flag is true only when the round had actually started, so
// the caller knows whether participation counters need rolling back.
func (s *Session) CancelRound() (participants []string, revert bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning && s.state != StatePathPending {
		return nil, false, ErrNoActiveRound
	}
	revert = s.state == StateRunning
	participants = append([]string(nil), s.members...)
	s.resetRound()
	return participants, revert, nil
}

// FinishRound stops the timer and records the declaring actor as winner.
func (s *Session) FinishRound(actor string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return 0, ErrNoActiveRound
	}
	elapsed := s.timer.Stop()
	s.winner = actor
	s.state = StateFinished
	return elapsed, nil
}

// ClaimWin validates a win confirmation by the declared winner and returns
// the data the progression engine needs. The session is not mutated; the
// caller completes the round with ResetRound once the win is recorded.
func (s *Session) ClaimWin(actor string) (*WinClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished {
		return nil, ErrNotFinished
	}
	if !s.enabled {
		return nil, ErrUnranked
	}
	if s.winner == "" || actor != s.winner {
		return nil, ErrNotWinner
	}
	if len(s.path) != 2 {
		return nil, ErrNoPath
	}
	return &WinClaim{
		Winner:         s.winner,
		ElapsedSeconds: s.timer.Duration(),
		Articles:       [2]string{s.path[0].Title, s.path[1].Title},
		Participants:   append([]string(nil), s.members...),
	}, nil
}

// RemoveMember drops a name from the roster; a departing winner loses the
// win, and an emptied roster resets the whole session.
func (s *Session) RemoveMember(name string) (removed, emptied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.members {
		if m != name {
			continue
		}
		s.members = append(s.members[:i], s.members[i+1:]...)
		removed = true
		break
	}
	if !removed {
		return false, false
	}
	if s.winner == name {
		s.winner = ""
	}
	if len(s.members) == 0 {
		s.reset()
		return true, true
	}
	return true, false
}

// ResetRound clears round-scoped state (path, timer, winner) and keeps the
// roster, channel and enabled flag.
func (s *Session) ResetRound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetRound()
}

func (s *Session) resetRound() {
	s.path = nil
	s.timer.Reset()
	s.winner = ""
	s.genToken = uuid.New()
	if s.channelID == "" {
		s.state = StateIdle
	} else {
		s.state = StateRosterSet
	}
}

// Reset clears everything back to the idle state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.path = nil
	s.enabled = false
	s.members = nil
	s.timer.Reset()
	s.winner = ""
	s.channelID = ""
	s.startTime = time.Time{}
	s.genToken = uuid.New()
	s.state = StateIdle
}
