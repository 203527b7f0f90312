package bot

import (
	"github.com/google/uuid"

	"wikirace/internal/wiki"
)

// SignalKind discriminates incoming signals. The chat adapter translates
// platform events (commands, reactions, membership changes) into these.
type SignalKind int

const (
	// SignalStartMatch binds Members to ChannelID; Ranked selects whether
	// progression is recorded. A solo roster requires confirmation.
	SignalStartMatch SignalKind = iota
	// SignalGeneratePath requests a new article pair (also regenerates).
	SignalGeneratePath
	// SignalStartRound starts the timer on the pending path.
	SignalStartRound
	// SignalCancelRound abandons the pending or running round.
	SignalCancelRound
	// SignalFinishRound declares Actor the winner of the running round.
	SignalFinishRound
	// SignalConfirmWin records Actor's win with the reported Clicks.
	SignalConfirmWin
	// SignalStats requests the record of player Name.
	SignalStats
	// SignalLeaderboard requests standings ordered by SortBy.
	SignalLeaderboard
	// SignalAchievements requests the achievement catalog with player Name's
	// unlocked marks.
	SignalAchievements
	// SignalSummary requests the intro summary of the article titled Name.
	SignalSummary
	// SignalMemberLeft removes Name from the roster.
	SignalMemberLeft
	// SignalDisband resets the whole session, after confirmation by Actor.
	SignalDisband
	// SignalResolvePrompt answers an open confirmation prompt.
	SignalResolvePrompt

	// Internal signals posted by the dispatcher's own goroutines so all
	// state mutations happen on the dispatch loop.
	signalPathGenerated
	signalBindRoster
	signalDisbandConfirmed
)

// Signal is one unit of work for the dispatcher. Only the fields relevant to
// the Kind are set.
type Signal struct {
	Kind      SignalKind
	Actor     string
	ChannelID string
	Members   []string
	Ranked    bool
	Clicks    int
	Name      string
	SortBy    string
	PromptID  uuid.UUID
	Confirmed bool

	// Internal payload of signalPathGenerated.
	genToken uuid.UUID
	genPath  *wiki.Path
	genErr   error
}

// Event is what the dispatcher publishes to the display sink. Data carries a
// kind-specific structured payload; Error and Code are set on failures.
type Event struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Sink receives dispatcher events. Implementations must not block.
type Sink interface {
	Publish(ev Event)
}
