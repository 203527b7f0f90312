// Package player defines the persistent per-player progression record and its
// JSON encoding. Records are addressed by player name; the name itself is the
// storage key and is not a field of the record.
package player

import (
	"encoding/json"
	"math"
	"time"
)

// NoBestClicks marks a best-clicks record that has not been set yet.
// BestTime uses +Inf for the same purpose.
const NoBestClicks = math.MaxInt

// Record is one player's cumulative progression data.
type Record struct {
	Points      int     `json:"points"`
	XP          int     `json:"xp"`
	Level       int     `json:"level"`
	GamesPlayed int     `json:"games_played"`
	GamesWon    int     `json:"games_won"`
	TotalClicks int     `json:"total_clicks"`
	AvgClicks   float64 `json:"avg_clicks"`
	TotalTime   float64 `json:"total_time"`
	AvgTime     float64 `json:"avg_time"`
	Rank        int     `json:"rank"`

	// Personal records. BestTime and BestClicks hold sentinels until the
	// first win seeds them.
	BestTime   float64 `json:"-"`
	BestClicks int     `json:"-"`
	BestScore  int     `json:"best_score"`

	CurrentStreak int `json:"current_streak"`
	WinStreak     int `json:"win_streak"`
	BestWinStreak int `json:"best_win_streak"`

	Achievements    []string `json:"achievements"`
	ArticlesVisited []string `json:"articles_visited"`

	LastPlayed *time.Time `json:"last_played"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewRecord returns a fresh record with default values: level 1, unset best
// marks, empty sets.
func NewRecord() *Record {
	return &Record{
		Level:           1,
		BestTime:        math.Inf(1),
		BestClicks:      NoBestClicks,
		Achievements:    []string{},
		ArticlesVisited: []string{},
		CreatedAt:       time.Now(),
	}
}

// HasAchievement reports whether the achievement id is already unlocked.
func (r *Record) HasAchievement(id string) bool {
	for _, a := range r.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// AddArticles unions article titles into the visited set, keeping it
// duplicate-free.
func (r *Record) AddArticles(titles ...string) {
	seen := make(map[string]bool, len(r.ArticlesVisited))
	for _, t := range r.ArticlesVisited {
		seen[t] = true
	}
	for _, t := range titles {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		r.ArticlesVisited = append(r.ArticlesVisited, t)
	}
}

// WinRate is the percentage of played games won, rounded to one decimal.
func (r *Record) WinRate() float64 {
	if r.GamesPlayed == 0 {
		return 0
	}
	rate := float64(r.GamesWon) / float64(r.GamesPlayed) * 100
	return math.Round(rate*10) / 10
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	cp := *r
	cp.Achievements = append([]string(nil), r.Achievements...)
	cp.ArticlesVisited = append([]string(nil), r.ArticlesVisited...)
	if r.LastPlayed != nil {
		lp := *r.LastPlayed
		cp.LastPlayed = &lp
	}
	return &cp
}

// recordJSON carries the wire form of the best marks: JSON has no +Inf, so an
// unset best time or best clicks is encoded as null.
type recordJSON struct {
	*recordAlias
	BestTime   *float64 `json:"best_time"`
	BestClicks *int     `json:"best_clicks"`
}

type recordAlias Record

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{recordAlias: (*recordAlias)(&r)}
	if !math.IsInf(r.BestTime, 1) {
		bt := r.BestTime
		out.BestTime = &bt
	}
	if r.BestClicks != NoBestClicks {
		bc := r.BestClicks
		out.BestClicks = &bc
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	in := recordJSON{recordAlias: (*recordAlias)(r)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.BestTime = math.Inf(1)
	r.BestClicks = NoBestClicks
	if in.BestTime != nil {
		r.BestTime = *in.BestTime
	}
	if in.BestClicks != nil {
		r.BestClicks = *in.BestClicks
	}
	if r.Level < 1 {
		r.Level = 1
	}
	if r.Achievements == nil {
		r.Achievements = []string{}
	}
	if r.ArticlesVisited == nil {
		r.ArticlesVisited = []string{}
	}
	return nil
}
