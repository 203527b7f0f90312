package session

import (
	"errors"
	"testing"
	"time"
)

func boundSession(t *testing.T, members ...string) *Session {
	t.Helper()
	s := New()
	if err := s.Bind("voice-1", members, true); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return s
}

func withPath(t *testing.T, s *Session) {
	t.Helper()
	token := s.BeginGeneration()
	err := s.ApplyPath(token, Article{Title: "Go"}, Article{Title: "Unix"})
	if err != nil {
		t.Fatalf("ApplyPath: %v", err)
	}
}

func TestNew_StartsIdle(t *testing.T) {
	s := New()
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
	snap := s.Snapshot()
	if snap.Enabled || len(snap.Members) != 0 || len(snap.Path) != 0 {
		t.Errorf("fresh snapshot not empty: %+v", snap)
	}
}

func TestBind(t *testing.T) {
	s := New()
	if err := s.Bind("voice-1", nil, true); !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("Bind(empty roster) error = %v, want ErrEmptyRoster", err)
	}

	if err := s.Bind("voice-1", []string{"alice", "bob"}, true); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if s.State() != StateRosterSet {
		t.Errorf("State() = %v, want roster_set", s.State())
	}

	// Same channel while active is a conflict.
	if err := s.Bind("voice-1", []string{"carol"}, true); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("rebind same channel error = %v, want ErrAlreadyActive", err)
	}

	// A different channel takes the session over.
	if err := s.Bind("voice-2", []string{"carol"}, false); err != nil {
		t.Errorf("rebind other channel: %v", err)
	}
	if s.Enabled() {
		t.Error("Enabled() = true after unranked rebind")
	}
}

func TestApplyPath_StaleTokenDiscarded(t *testing.T) {
	s := boundSession(t, "alice")

	old := s.BeginGeneration()
	current := s.BeginGeneration()

	err := s.ApplyPath(old, Article{Title: "A"}, Article{Title: "B"})
	if !errors.Is(err, ErrStalePath) {
		t.Errorf("ApplyPath(old token) error = %v, want ErrStalePath", err)
	}
	if s.State() != StateRosterSet {
		t.Errorf("State() = %v after stale apply, want roster_set", s.State())
	}

	if err := s.ApplyPath(current, Article{Title: "A"}, Article{Title: "B"}); err != nil {
		t.Errorf("ApplyPath(current token): %v", err)
	}
	if s.State() != StatePathPending {
		t.Errorf("State() = %v, want path_pending", s.State())
	}
}

func TestApplyPath_ResetInvalidatesToken(t *testing.T) {
	s := boundSession(t, "alice")
	token := s.BeginGeneration()
	s.Reset()

	err := s.ApplyPath(token, Article{Title: "A"}, Article{Title: "B"})
	if !errors.Is(err, ErrStalePath) {
		t.Errorf("ApplyPath after Reset error = %v, want ErrStalePath", err)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %v, want idle", s.State())
	}
}

func TestApplyPath_RegenerateOverwrites(t *testing.T) {
	s := boundSession(t, "alice")
	withPath(t, s)
	withPath(t, s)

	snap := s.Snapshot()
	if len(snap.Path) != 2 {
		t.Fatalf("Path = %v, want 2 articles", snap.Path)
	}
	if s.State() != StatePathPending {
		t.Errorf("State() = %v, want path_pending", s.State())
	}
}

func TestStartRound(t *testing.T) {
	s := boundSession(t, "alice", "bob")

	if _, err := s.StartRound(); !errors.Is(err, ErrNoPath) {
		t.Errorf("StartRound without path error = %v, want ErrNoPath", err)
	}

	withPath(t, s)
	participants, err := s.StartRound()
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if len(participants) != 2 {
		t.Errorf("participants = %v, want both roster members", participants)
	}
	if s.State() != StateRunning {
		t.Errorf("State() = %v, want running", s.State())
	}

	if _, err := s.StartRound(); err == nil {
		t.Error("StartRound while running should fail")
	}
}

func TestCancelRound_RevertOnlyAfterStart(t *testing.T) {
	s := boundSession(t, "alice")

	if _, _, err := s.CancelRound(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("CancelRound in roster_set error = %v, want ErrNoActiveRound", err)
	}

	// Cancelling a pending path never started, so nothing to revert.
	withPath(t, s)
	_, revert, err := s.CancelRound()
	if err != nil {
		t.Fatalf("CancelRound: %v", err)
	}
	if revert {
		t.Error("revert = true for a round that never started")
	}

	withPath(t, s)
	if _, err := s.StartRound(); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	participants, revert, err := s.CancelRound()
	if err != nil {
		t.Fatalf("CancelRound: %v", err)
	}
	if !revert {
		t.Error("revert = false for a started round")
	}
	if len(participants) != 1 {
		t.Errorf("participants = %v, want roster", participants)
	}
	if s.State() != StateRosterSet {
		t.Errorf("State() = %v after cancel, want roster_set", s.State())
	}
}

func TestFinishAndClaimWin(t *testing.T) {
	s := boundSession(t, "alice", "bob")

	if _, err := s.FinishRound("alice"); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("FinishRound before start error = %v, want ErrNoActiveRound", err)
	}

	withPath(t, s)
	if _, err := s.StartRound(); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := s.ClaimWin("alice"); !errors.Is(err, ErrNotFinished) {
		t.Errorf("ClaimWin while running error = %v, want ErrNotFinished", err)
	}

	if _, err := s.FinishRound("alice"); err != nil {
		t.Fatalf("FinishRound: %v", err)
	}
	if s.State() != StateFinished {
		t.Errorf("State() = %v, want finished", s.State())
	}

	if _, err := s.ClaimWin("bob"); !errors.Is(err, ErrNotWinner) {
		t.Errorf("ClaimWin by non-winner error = %v, want ErrNotWinner", err)
	}

	claim, err := s.ClaimWin("alice")
	if err != nil {
		t.Fatalf("ClaimWin: %v", err)
	}
	if claim.Winner != "alice" {
		t.Errorf("Winner = %q, want alice", claim.Winner)
	}
	if claim.Articles != [2]string{"Go", "Unix"} {
		t.Errorf("Articles = %v, want [Go Unix]", claim.Articles)
	}
	if len(claim.Participants) != 2 {
		t.Errorf("Participants = %v, want full roster", claim.Participants)
	}

	s.ResetRound()
	if s.State() != StateRosterSet {
		t.Errorf("State() = %v after round reset, want roster_set", s.State())
	}
	snap := s.Snapshot()
	if len(snap.Path) != 0 || snap.Winner != "" {
		t.Errorf("round fields not cleared: %+v", snap)
	}
	if len(snap.Members) != 2 || !snap.Enabled {
		t.Errorf("roster fields should survive a round reset: %+v", snap)
	}
}

func TestClaimWin_UnrankedRejected(t *testing.T) {
	s := New()
	if err := s.Bind("voice-1", []string{"alice"}, false); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	withPath(t, s)
	if _, err := s.StartRound(); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := s.FinishRound("alice"); err != nil {
		t.Fatalf("FinishRound: %v", err)
	}

	if _, err := s.ClaimWin("alice"); !errors.Is(err, ErrUnranked) {
		t.Errorf("ClaimWin on unranked round error = %v, want ErrUnranked", err)
	}
}

func TestRemoveMember_DepartingWinnerLosesWin(t *testing.T) {
	s := boundSession(t, "alice", "bob", "carol")
	withPath(t, s)
	if _, err := s.StartRound(); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := s.FinishRound("bob"); err != nil {
		t.Fatalf("FinishRound: %v", err)
	}

	removed, emptied := s.RemoveMember("bob")
	if !removed || emptied {
		t.Errorf("RemoveMember = %v, %v, want removed without emptying", removed, emptied)
	}
	if s.Snapshot().Winner != "" {
		t.Error("winner should be cleared when the winner departs")
	}
	if len(s.Members()) != 2 {
		t.Errorf("Members = %v, want 2 left", s.Members())
	}

	// The departed identity can no longer confirm.
	if _, err := s.ClaimWin("bob"); !errors.Is(err, ErrNotWinner) {
		t.Errorf("ClaimWin by departed winner error = %v, want ErrNotWinner", err)
	}
}

func TestRemoveMember_LastOneResetsSession(t *testing.T) {
	s := boundSession(t, "alice", "bob")
	withPath(t, s)

	s.RemoveMember("alice")
	removed, emptied := s.RemoveMember("bob")
	if !removed || !emptied {
		t.Errorf("RemoveMember(last) = %v, %v, want removed and emptied", removed, emptied)
	}

	snap := s.Snapshot()
	if snap.State != "idle" || snap.Enabled {
		t.Errorf("session should be idle and disabled, got %+v", snap)
	}
	if len(snap.Members) != 0 || len(snap.Path) != 0 {
		t.Errorf("session not fully cleared: %+v", snap)
	}
}

func TestRemoveMember_UnknownName(t *testing.T) {
	s := boundSession(t, "alice")
	removed, emptied := s.RemoveMember("nobody")
	if removed || emptied {
		t.Errorf("RemoveMember(unknown) = %v, %v, want false, false", removed, emptied)
	}
}

func TestTimer_StopFreezesDuration(t *testing.T) {
	tm := NewTimer()
	base := time.Now()
	tm.now = func() time.Time { return base }
	tm.Start()

	tm.now = func() time.Time { return base.Add(42500 * time.Millisecond) }
	got := tm.Stop()
	if got != 42.5 {
		t.Errorf("Stop() = %v, want 42.5", got)
	}
	if tm.Duration() != 42.5 {
		t.Errorf("Duration() = %v, want 42.5", tm.Duration())
	}
	if tm.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestTimer_ElapsedWhileRunning(t *testing.T) {
	tm := NewTimer()
	base := time.Now()
	tm.now = func() time.Time { return base }
	tm.Start()
	if !tm.Running() {
		t.Fatal("Running() = false after Start")
	}

	tm.now = func() time.Time { return base.Add(10 * time.Second) }
	if got := tm.Elapsed(); got != 10 {
		t.Errorf("Elapsed() = %v, want 10", got)
	}
}

func TestTimer_Reset(t *testing.T) {
	tm := NewTimer()
	tm.Start()
	tm.Stop()
	tm.Reset()

	if tm.Duration() != 0 || tm.Elapsed() != 0 || tm.Running() {
		t.Error("Reset should clear all timer state")
	}
}

func TestTimer_StopWithoutStart(t *testing.T) {
	tm := NewTimer()
	if got := tm.Stop(); got != 0 {
		t.Errorf("Stop() without Start = %v, want 0", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := New()
	b := New()
	if err := a.Bind("voice-1", []string{"alice"}, true); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b.State() != StateIdle {
		t.Error("binding one session must not affect another")
	}
}
