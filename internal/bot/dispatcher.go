// Package bot serializes all game commands through a single dispatch loop.
// Chat adapters enqueue Signals; the dispatcher drives the session state
// machine and the progression engine and publishes Events to the display
// sink. Slow work (path generation, confirmation waits) runs in goroutines
// that post their results back as internal signals, so every state mutation
// still happens on the loop.
package bot

import (
	"context"
	"errors"
	"log"

	"wikirace/internal/confirm"
	"wikirace/internal/progression"
	"wikirace/internal/session"
	"wikirace/internal/store"
	"wikirace/internal/wiki"
)

// PathGenerator produces article pairs and resolves single articles for
// summary display. Satisfied by *wiki.Generator.
type PathGenerator interface {
	Generate(ctx context.Context) (*wiki.Path, error)
	Lookup(ctx context.Context, title string) (*wiki.Page, error)
}

// Dispatcher owns the session and engine for one process.
type Dispatcher struct {
	signals  chan Signal
	session  *session.Session
	engine   *progression.Engine
	gen      PathGenerator
	confirms *confirm.Manager
	sink     Sink
}

func NewDispatcher(sess *session.Session, engine *progression.Engine, gen PathGenerator, confirms *confirm.Manager, sink Sink) *Dispatcher {
	return &Dispatcher{
		signals:  make(chan Signal, 64),
		session:  sess,
		engine:   engine,
		gen:      gen,
		confirms: confirms,
		sink:     sink,
	}
}

// Send enqueues a signal for the dispatch loop.
func (d *Dispatcher) Send(sig Signal) {
	d.signals <- sig
}

// Run consumes signals until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log.Println("[Bot] Dispatcher running")
	for {
		select {
		case <-ctx.Done():
			log.Println("[Bot] Dispatcher stopped")
			return
		case sig := <-d.signals:
			d.handle(ctx, sig)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, sig Signal) {
	switch sig.Kind {
	case SignalStartMatch:
		d.handleStartMatch(ctx, sig)
	case signalBindRoster:
		d.bindRoster(sig)
	case SignalGeneratePath:
		d.handleGeneratePath(ctx)
	case signalPathGenerated:
		d.handlePathGenerated(sig)
	case SignalStartRound:
		d.handleStartRound()
	case SignalCancelRound:
		d.handleCancelRound()
	case SignalFinishRound:
		d.handleFinishRound(sig)
	case SignalConfirmWin:
		d.handleConfirmWin(sig)
	case SignalStats:
		d.handleStats(sig)
	case SignalLeaderboard:
		d.handleLeaderboard(sig)
	case SignalAchievements:
		d.handleAchievements(sig)
	case SignalSummary:
		d.handleSummary(ctx, sig)
	case SignalMemberLeft:
		d.handleMemberLeft(sig)
	case SignalDisband:
		d.handleDisband(ctx, sig)
	case signalDisbandConfirmed:
		d.session.Reset()
		d.sink.Publish(Event{Type: "session_reset", Data: map[string]any{"reason": "disband"}})
	case SignalResolvePrompt:
		if !d.confirms.Resolve(sig.PromptID, sig.Confirmed) {
			d.publishErr("prompt", errors.New("no such prompt"))
		}
	default:
		log.Printf("[Bot] Unknown signal kind %d\n", sig.Kind)
	}
}

// handleStartMatch binds the roster, asking for confirmation first when a
// single player wants to race alone.
func (d *Dispatcher) handleStartMatch(ctx context.Context, sig Signal) {
	if len(sig.Members) == 0 {
		d.publishErr("start_match", session.ErrEmptyRoster)
		return
	}
	if len(sig.Members) > 1 {
		d.bindRoster(sig)
		return
	}

	p := d.confirms.Open()
	d.sink.Publish(Event{Type: "confirmation_required", Data: map[string]any{
		"prompt_id": p.ID.String(),
		"reason":    "solo_start",
		"actor":     sig.Actor,
	}})
	go func() {
		outcome := d.confirms.Wait(ctx, p)
		if outcome != confirm.Confirmed {
			d.sink.Publish(Event{Type: "start_declined", Data: map[string]any{
				"actor":   sig.Actor,
				"outcome": outcome.String(),
			}})
			return
		}
		bind := sig
		bind.Kind = signalBindRoster
		d.Send(bind)
	}()
}

func (d *Dispatcher) bindRoster(sig Signal) {
	if err := d.session.Bind(sig.ChannelID, sig.Members, sig.Ranked); err != nil {
		d.publishErr("start_match", err)
		return
	}
	var created []string
	if sig.Ranked {
		for _, name := range sig.Members {
			_, isNew, err := d.engine.EnsurePlayer(name)
			if err != nil {
				d.publishErr("start_match", err)
				return
			}
			if isNew {
				created = append(created, name)
			}
		}
	}
	d.sink.Publish(Event{Type: "match_started", Data: map[string]any{
		"channel_id":  sig.ChannelID,
		"members":     sig.Members,
		"ranked":      sig.Ranked,
		"new_players": created,
	}})
}

// handleGeneratePath kicks off generation in the background. The session
// token lets a reset or a regeneration invalidate the result while it is
// still in flight.
func (d *Dispatcher) handleGeneratePath(ctx context.Context) {
	token := d.session.BeginGeneration()
	d.sink.Publish(Event{Type: "generating_path"})
	go func() {
		path, err := d.gen.Generate(ctx)
		d.Send(Signal{Kind: signalPathGenerated, genToken: token, genPath: path, genErr: err})
	}()
}

func (d *Dispatcher) handlePathGenerated(sig Signal) {
	if sig.genErr != nil {
		d.publishErr("generate_path", sig.genErr)
		return
	}
	start := session.Article{Title: sig.genPath.Start.Title, URL: sig.genPath.Start.URL}
	target := session.Article{Title: sig.genPath.Target.Title, URL: sig.genPath.Target.URL}
	if err := d.session.ApplyPath(sig.genToken, start, target); err != nil {
		// A stale result lost the race against a reset or regeneration.
		log.Printf("[Bot] Discarding path result: %v\n", err)
		return
	}
	d.sink.Publish(Event{Type: "path_ready", Data: map[string]any{
		"start":    start,
		"target":   target,
		"attempts": sig.genPath.Attempts,
		"ranked":   d.session.Enabled(),
	}})
}

func (d *Dispatcher) handleStartRound() {
	participants, err := d.session.StartRound()
	if err != nil {
		d.publishErr("start_round", err)
		return
	}
	if d.session.Enabled() {
		if err := d.engine.IncrementPlayed(participants); err != nil {
			d.publishErr("start_round", err)
			return
		}
	}
	d.sink.Publish(Event{Type: "round_started", Data: map[string]any{
		"participants": participants,
	}})
}

func (d *Dispatcher) handleCancelRound() {
	participants, revert, err := d.session.CancelRound()
	if err != nil {
		d.publishErr("cancel_round", err)
		return
	}
	if revert && d.session.Enabled() {
		if err := d.engine.DecrementPlayed(participants); err != nil {
			d.publishErr("cancel_round", err)
			return
		}
	}
	d.sink.Publish(Event{Type: "round_cancelled", Data: map[string]any{
		"participants": participants,
		"reverted":     revert,
	}})
}

func (d *Dispatcher) handleFinishRound(sig Signal) {
	elapsed, err := d.session.FinishRound(sig.Actor)
	if err != nil {
		d.publishErr("finish_round", err)
		return
	}
	d.sink.Publish(Event{Type: "round_finished", Data: map[string]any{
		"winner":          sig.Actor,
		"elapsed_seconds": elapsed,
		"ranked":          d.session.Enabled(),
	}})
}

func (d *Dispatcher) handleConfirmWin(sig Signal) {
	claim, err := d.session.ClaimWin(sig.Actor)
	if err != nil {
		d.publishErr("confirm_win", err)
		return
	}
	result, err := d.engine.RegisterWin(claim.Winner, claim.ElapsedSeconds, sig.Clicks, claim.Articles, claim.Participants)
	if err != nil {
		d.publishErr("confirm_win", err)
		return
	}
	d.session.ResetRound()
	d.sink.Publish(Event{Type: "victory", Data: result})
}

func (d *Dispatcher) handleStats(sig Signal) {
	rec, err := d.engine.GetPlayer(sig.Name)
	if err != nil {
		d.publishErr("stats", err)
		return
	}
	d.sink.Publish(Event{Type: "stats", Data: map[string]any{
		"name":   sig.Name,
		"record": rec,
		"tier":   progression.TierForLevel(rec.Level),
	}})
}

func (d *Dispatcher) handleLeaderboard(sig Signal) {
	standings, err := d.engine.Leaderboard(sig.SortBy)
	if err != nil {
		d.publishErr("leaderboard", err)
		return
	}
	d.sink.Publish(Event{Type: "leaderboard", Data: map[string]any{
		"sort":      sig.SortBy,
		"standings": standings,
	}})
}

func (d *Dispatcher) handleAchievements(sig Signal) {
	status, err := d.engine.AchievementStatus(sig.Name)
	if err != nil {
		d.publishErr("achievements", err)
		return
	}
	d.sink.Publish(Event{Type: "achievements", Data: map[string]any{
		"name":         sig.Name,
		"achievements": status,
	}})
}

// handleSummary looks the article up off the loop; the lookup reads nothing
// from session or engine state.
func (d *Dispatcher) handleSummary(ctx context.Context, sig Signal) {
	go func() {
		page, err := d.gen.Lookup(ctx, sig.Name)
		if err != nil {
			d.publishErr("summary", err)
			return
		}
		d.sink.Publish(Event{Type: "article_summary", Data: map[string]any{
			"title":   page.Title,
			"url":     page.URL,
			"summary": page.Summary,
		}})
	}()
}

func (d *Dispatcher) handleMemberLeft(sig Signal) {
	removed, emptied := d.session.RemoveMember(sig.Name)
	if !removed {
		return
	}
	if emptied {
		d.sink.Publish(Event{Type: "session_reset", Data: map[string]any{"reason": "roster_empty"}})
		return
	}
	d.sink.Publish(Event{Type: "member_left", Data: map[string]any{
		"name":    sig.Name,
		"members": d.session.Members(),
	}})
}

func (d *Dispatcher) handleDisband(ctx context.Context, sig Signal) {
	if !d.session.IsMember(sig.Actor) {
		d.publishErr("disband", session.ErrNotMember)
		return
	}
	p := d.confirms.Open()
	d.sink.Publish(Event{Type: "confirmation_required", Data: map[string]any{
		"prompt_id": p.ID.String(),
		"reason":    "disband",
		"actor":     sig.Actor,
	}})
	go func() {
		outcome := d.confirms.Wait(ctx, p)
		if outcome != confirm.Confirmed {
			d.sink.Publish(Event{Type: "disband_declined", Data: map[string]any{
				"actor":   sig.Actor,
				"outcome": outcome.String(),
			}})
			return
		}
		d.Send(Signal{Kind: signalDisbandConfirmed})
	}()
}

func (d *Dispatcher) publishErr(op string, err error) {
	d.sink.Publish(Event{
		Type:  "error",
		Data:  map[string]any{"op": op},
		Error: err.Error(),
		Code:  errorCode(err),
	})
}

// errorCode buckets failures for the display layer.
func errorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyRoster),
		errors.Is(err, session.ErrNotWinner),
		errors.Is(err, session.ErrNotFinished),
		errors.Is(err, session.ErrUnranked),
		errors.Is(err, session.ErrNotMember),
		errors.Is(err, progression.ErrInvalidMatchResult):
		return "validation"
	case errors.Is(err, session.ErrAlreadyActive),
		errors.Is(err, session.ErrNoPath),
		errors.Is(err, session.ErrNoActiveRound):
		return "state_conflict"
	case errors.Is(err, store.ErrNotFound), errors.Is(err, wiki.ErrNotFound):
		return "not_found"
	case errors.Is(err, wiki.ErrGenerationFailed):
		return "external_service"
	default:
		return "internal"
	}
}
