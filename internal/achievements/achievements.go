// Package achievements holds the achievement registry. Each achievement is a
// named condition over a player record plus an XP reward. Conditions are data,
// not code: a small operator language evaluated by one interpreter, so the
// registry can also be loaded from a JSON file.
package achievements

import (
	"wikirace/internal/player"
)

// Achievement is a static definition; the registry is read-only after load.
type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	XP          int       `json:"xp"`
	Condition   Condition `json:"condition"`
}

// Registry is an ordered set of achievement definitions.
type Registry struct {
	achievements []Achievement
}

func NewRegistry(defs []Achievement) *Registry {
	return &Registry{achievements: defs}
}

// Builtin returns the standard achievement table.
func Builtin() *Registry {
	return NewRegistry([]Achievement{
		{ID: "eclair", Name: "Lightning", Description: "Win in under 30 seconds", XP: 50,
			Condition: Condition{Field: FieldBestTime, Op: OpLT, Value: 30}},
		{ID: "minimaliste", Name: "Minimalist", Description: "Win in 3 clicks or fewer", XP: 100,
			Condition: Condition{Field: FieldBestClicks, Op: OpLE, Value: 3}},
		{ID: "marathon", Name: "Marathon", Description: "Play 10 rounds in a row", XP: 75,
			Condition: Condition{Field: FieldCurrentStreak, Op: OpGE, Value: 10}},
		{ID: "explorateur", Name: "Explorer", Description: "Visit 100 unique articles", XP: 150,
			Condition: Condition{Field: FieldArticlesVisited, Op: OpLenGE, Value: 100}},
		{ID: "perfectionniste", Name: "Perfectionist", Description: "Win 10 rounds in a row", XP: 200,
			Condition: Condition{Field: FieldWinStreak, Op: OpGE, Value: 10}},
		{ID: "debutant", Name: "Beginner", Description: "Play your first round", XP: 10,
			Condition: Condition{Field: FieldGamesPlayed, Op: OpGE, Value: 1}},
		{ID: "veterane", Name: "Veteran", Description: "Play 50 rounds", XP: 100,
			Condition: Condition{Field: FieldGamesPlayed, Op: OpGE, Value: 50}},
		{ID: "champion", Name: "Champion", Description: "Win 25 rounds", XP: 150,
			Condition: Condition{Field: FieldGamesWon, Op: OpGE, Value: 25}},
		{ID: "rapide", Name: "Swift", Description: "Average time under 60 seconds", XP: 75,
			Condition: Condition{Field: FieldAvgTime, Op: OpLT, Value: 60}},
		{ID: "efficace", Name: "Efficient", Description: "Average under 5 clicks", XP: 75,
			Condition: Condition{Field: FieldAvgClicks, Op: OpLT, Value: 5}},
	})
}

// All returns the definitions in registry order.
func (r *Registry) All() []Achievement {
	return r.achievements
}

func (r *Registry) Len() int {
	return len(r.achievements)
}

// Get looks up a definition by id.
func (r *Registry) Get(id string) (Achievement, bool) {
	for _, a := range r.achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Unlockable returns, in registry order, every achievement the record now
// satisfies but has not unlocked yet. Every unachieved entry is checked on
// every call; unlocks are idempotent so order does not matter.
func (r *Registry) Unlockable(rec *player.Record) []Achievement {
	var unlockable []Achievement
	for _, a := range r.achievements {
		if rec.HasAchievement(a.ID) {
			continue
		}
		if a.Condition.Eval(rec) {
			unlockable = append(unlockable, a)
		}
	}
	return unlockable
}
