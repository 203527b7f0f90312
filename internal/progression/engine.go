// Package progression turns raw match outcomes into player progression:
// points, XP, levels, streaks, personal records, achievement unlocks and the
// global ranking.
package progression

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"wikirace/internal/achievements"
	"wikirace/internal/player"
	"wikirace/internal/rewards"
	"wikirace/internal/store"
)

// ErrInvalidMatchResult rejects a win with a non-positive click count or a
// negative elapsed time.
var ErrInvalidMatchResult = errors.New("invalid match result")

// RewardResult is the structured outcome of a registered win, consumed by the
// display layer.
type RewardResult struct {
	Winner         string                     `json:"winner"`
	Points         int                        `json:"points"`
	XPGained       int                        `json:"xp_gained"`
	AchievementXP  int                        `json:"achievement_xp"`
	TotalXP        int                        `json:"total_xp"`
	LevelUp        bool                       `json:"level_up"`
	OldLevel       int                        `json:"old_level"`
	NewLevel       int                        `json:"new_level"`
	Tier           Tier                       `json:"tier"`
	NewlyUnlocked  []achievements.Achievement `json:"new_achievements"`
	RecordsBeaten  []string                   `json:"records_beaten"`
	ElapsedSeconds float64                    `json:"elapsed_seconds"`
	Clicks         int                        `json:"clicks"`
	Player         *player.Record             `json:"player"`
}

// Standing is one leaderboard row.
type Standing struct {
	Name   string         `json:"name"`
	Record *player.Record `json:"record"`
}

// Engine mutates player records through the store. A per-name lock serializes
// win registrations and XP grants for the same player; cross-player
// bookkeeping (streak resets, rankings, participation counters) assumes the
// caller funnels commands through one dispatch loop.
type Engine struct {
	store    store.PlayerStore
	registry *achievements.Registry

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(st store.PlayerStore, registry *achievements.Registry) *Engine {
	return &Engine{
		store:    st,
		registry: registry,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (e *Engine) playerLock(name string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[name]
	if !ok {
		l = &sync.Mutex{}
		e.locks[name] = l
	}
	return l
}

// EnsurePlayer loads a record, creating and persisting a default one for a
// first-time participant.
func (e *Engine) EnsurePlayer(name string) (*player.Record, bool, error) {
	rec, err := e.store.Load(name)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}
	rec = player.NewRecord()
	if err := e.store.Save(name, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// GetPlayer loads a record without creating it.
func (e *Engine) GetPlayer(name string) (*player.Record, error) {
	return e.store.Load(name)
}

// DeletePlayer removes a record. Administrative use only.
func (e *Engine) DeletePlayer(name string) (bool, error) {
	return e.store.Delete(name)
}

// RegisterWin applies a confirmed round win to the winner's record, resets
// the other participants' win streaks and recomputes the global ranking.
// Persistence failures abort the remaining steps; already-committed writes
// are not rolled back.
func (e *Engine) RegisterWin(winner string, elapsedSeconds float64, clicks int, articles [2]string, participants []string) (*RewardResult, error) {
	if clicks <= 0 || elapsedSeconds < 0 {
		return nil, fmt.Errorf("%w: elapsed=%v clicks=%d", ErrInvalidMatchResult, elapsedSeconds, clicks)
	}

	lock := e.playerLock(winner)
	lock.Lock()
	defer lock.Unlock()

	points := rewards.Points(elapsedSeconds, clicks)
	xpGained := rewards.XPGain(elapsedSeconds, clicks, true)

	rec, _, err := e.EnsurePlayer(winner)
	if err != nil {
		return nil, err
	}

	rec.Points += points
	rec.GamesWon++
	rec.TotalClicks += clicks
	rec.AvgClicks = rewards.Average(float64(clicks), rec.GamesWon, rec.AvgClicks)
	rec.TotalTime += elapsedSeconds
	rec.AvgTime = rewards.Average(elapsedSeconds, rec.GamesWon, rec.AvgTime)

	// First-win values seed the baseline silently; only later improvements
	// count as beaten records.
	var recordsBeaten []string
	if elapsedSeconds < rec.BestTime {
		rec.BestTime = elapsedSeconds
		if rec.GamesWon > 1 {
			recordsBeaten = append(recordsBeaten, "time")
		}
	}
	if clicks < rec.BestClicks {
		rec.BestClicks = clicks
		if rec.GamesWon > 1 {
			recordsBeaten = append(recordsBeaten, "clicks")
		}
	}
	if points > rec.BestScore {
		rec.BestScore = points
		if rec.GamesWon > 1 {
			recordsBeaten = append(recordsBeaten, "score")
		}
	}

	rec.WinStreak++
	if rec.WinStreak > rec.BestWinStreak {
		rec.BestWinStreak = rec.WinStreak
	}

	rec.AddArticles(articles[0], articles[1])

	if err := e.store.Save(winner, rec); err != nil {
		return nil, err
	}

	levelUp, oldLevel, newLevel, err := e.addXP(winner, xpGained)
	if err != nil {
		return nil, err
	}

	unlocked, achievementXP, err := e.checkAchievements(winner)
	if err != nil {
		return nil, err
	}
	if achievementXP > 0 {
		// One batched level evaluation for all achievement XP.
		up, _, lvl, err := e.addXP(winner, achievementXP)
		if err != nil {
			return nil, err
		}
		if up {
			levelUp = true
		}
		newLevel = lvl
	}

	if err := e.ResetWinStreaksExcept(participants, winner); err != nil {
		return nil, err
	}

	if err := e.UpdateRankings(); err != nil {
		return nil, err
	}

	final, err := e.store.Load(winner)
	if err != nil {
		return nil, err
	}

	return &RewardResult{
		Winner:         winner,
		Points:         points,
		XPGained:       xpGained,
		AchievementXP:  achievementXP,
		TotalXP:        xpGained + achievementXP,
		LevelUp:        levelUp,
		OldLevel:       oldLevel,
		NewLevel:       newLevel,
		Tier:           TierForLevel(newLevel),
		NewlyUnlocked:  unlocked,
		RecordsBeaten:  recordsBeaten,
		ElapsedSeconds: elapsedSeconds,
		Clicks:         clicks,
		Player:         final,
	}, nil
}

// AddXP credits XP and reapplies the level table. Returns whether a level-up
// occurred with the before/after levels.
func (e *Engine) AddXP(name string, amount int) (bool, int, int, error) {
	lock := e.playerLock(name)
	lock.Lock()
	defer lock.Unlock()
	return e.addXP(name, amount)
}

func (e *Engine) addXP(name string, amount int) (bool, int, int, error) {
	rec, err := e.store.Load(name)
	if err != nil {
		return false, 0, 0, err
	}
	oldLevel := rec.Level
	rec.XP += amount
	newLevel := LevelForXP(rec.XP)
	if newLevel < oldLevel {
		// The table only ever raises a level through this path.
		newLevel = oldLevel
	}
	rec.Level = newLevel
	if err := e.store.Save(name, rec); err != nil {
		return false, 0, 0, err
	}
	return newLevel > oldLevel, oldLevel, newLevel, nil
}

// checkAchievements unlocks every newly satisfied achievement and returns the
// definitions plus the XP they award in total. The XP is credited by the
// caller in one batch.
func (e *Engine) checkAchievements(name string) ([]achievements.Achievement, int, error) {
	rec, err := e.store.Load(name)
	if err != nil {
		return nil, 0, err
	}
	unlocked := e.registry.Unlockable(rec)
	if len(unlocked) == 0 {
		return nil, 0, nil
	}
	totalXP := 0
	for _, a := range unlocked {
		rec.Achievements = append(rec.Achievements, a.ID)
		totalXP += a.XP
	}
	if err := e.store.Save(name, rec); err != nil {
		return nil, 0, err
	}
	return unlocked, totalXP, nil
}

// AchievementStatus pairs a definition with whether the player unlocked it.
type AchievementStatus struct {
	achievements.Achievement
	Unlocked bool `json:"unlocked"`
}

// AchievementStatus returns the full achievement catalog in registry order,
// marking each entry the player has already unlocked.
func (e *Engine) AchievementStatus(name string) ([]AchievementStatus, error) {
	rec, err := e.store.Load(name)
	if err != nil {
		return nil, err
	}
	status := make([]AchievementStatus, 0, e.registry.Len())
	for _, a := range e.registry.All() {
		status = append(status, AchievementStatus{
			Achievement: a,
			Unlocked:    rec.HasAchievement(a.ID),
		})
	}
	return status, nil
}

// Achievements returns the registry's definitions.
func (e *Engine) Achievements() []achievements.Achievement {
	return e.registry.All()
}

// IncrementPlayed records round participation for every name: games played,
// current streak and last-played stamp.
func (e *Engine) IncrementPlayed(names []string) error {
	now := time.Now()
	for _, name := range names {
		rec, _, err := e.EnsurePlayer(name)
		if err != nil {
			return err
		}
		rec.GamesPlayed++
		rec.CurrentStreak++
		stamp := now
		rec.LastPlayed = &stamp
		if err := e.store.Save(name, rec); err != nil {
			return err
		}
	}
	return nil
}

// DecrementPlayed reverses IncrementPlayed after a cancelled round, flooring
// the counters at zero.
func (e *Engine) DecrementPlayed(names []string) error {
	for _, name := range names {
		rec, err := e.store.Load(name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if rec.GamesPlayed > 0 {
			rec.GamesPlayed--
		}
		if rec.CurrentStreak > 0 {
			rec.CurrentStreak--
		}
		if err := e.store.Save(name, rec); err != nil {
			return err
		}
	}
	return nil
}

// ResetWinStreaksExcept zeroes the win streak of every listed player other
// than the winner.
func (e *Engine) ResetWinStreaksExcept(names []string, winner string) error {
	for _, name := range names {
		if name == winner {
			continue
		}
		rec, err := e.store.Load(name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if rec.WinStreak != 0 {
			rec.WinStreak = 0
			if err := e.store.Save(name, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateRankings sorts all players by points (ties broken by name) and
// persists every record whose 1-based rank changed.
func (e *Engine) UpdateRankings() error {
	entries, err := e.store.ListAll()
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Record.Points != entries[j].Record.Points {
			return entries[i].Record.Points > entries[j].Record.Points
		}
		return entries[i].Name < entries[j].Name
	})
	for i, entry := range entries {
		rank := i + 1
		if entry.Record.Rank == rank {
			continue
		}
		entry.Record.Rank = rank
		if err := e.store.Save(entry.Name, entry.Record); err != nil {
			return err
		}
	}
	return nil
}

// Leaderboard sort modes.
const (
	SortPoints  = "points"
	SortLevel   = "level"
	SortXP      = "xp"
	SortWinRate = "winrate"
)

// Leaderboard returns all players ordered by the requested mode, defaulting
// to points. Ties break by name for a deterministic order.
func (e *Engine) Leaderboard(sortBy string) ([]Standing, error) {
	entries, err := e.store.ListAll()
	if err != nil {
		return nil, err
	}
	standings := make([]Standing, 0, len(entries))
	for _, entry := range entries {
		standings = append(standings, Standing{Name: entry.Name, Record: entry.Record})
	}
	key := func(s Standing) float64 {
		switch sortBy {
		case SortLevel:
			return float64(s.Record.Level)
		case SortXP:
			return float64(s.Record.XP)
		case SortWinRate:
			return s.Record.WinRate()
		default:
			return float64(s.Record.Points)
		}
	}
	sort.Slice(standings, func(i, j int) bool {
		ki, kj := key(standings[i]), key(standings[j])
		if ki != kj {
			return ki > kj
		}
		return standings[i].Name < standings[j].Name
	})
	return standings, nil
}
