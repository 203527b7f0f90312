package achievements

import "wikirace/internal/player"

// Operators of the condition language.
const (
	OpLT    = "lt"
	OpLE    = "le"
	OpGT    = "gt"
	OpGE    = "ge"
	OpEQ    = "eq"
	OpLenGE = "len_ge" // collection length at least Value
)

// Record fields a condition may reference.
const (
	FieldPoints          = "points"
	FieldXP              = "xp"
	FieldLevel           = "level"
	FieldGamesPlayed     = "games_played"
	FieldGamesWon        = "games_won"
	FieldBestTime        = "best_time"
	FieldBestClicks      = "best_clicks"
	FieldBestScore       = "best_score"
	FieldCurrentStreak   = "current_streak"
	FieldWinStreak       = "win_streak"
	FieldBestWinStreak   = "best_win_streak"
	FieldAvgTime         = "avg_time"
	FieldAvgClicks       = "avg_clicks"
	FieldArticlesVisited = "articles_visited"
)

// Condition is one comparison of a record field against a constant. A
// malformed condition (unknown field or operator) evaluates to false so a bad
// registry entry can never break progression.
type Condition struct {
	Field string  `json:"field"`
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

// Eval applies the condition to a record.
func (c Condition) Eval(rec *player.Record) bool {
	field, ok := fieldValue(c.Field, rec)
	if !ok {
		return false
	}
	switch c.Op {
	case OpLT:
		return field < c.Value
	case OpLE:
		return field <= c.Value
	case OpGT:
		return field > c.Value
	case OpGE, OpLenGE:
		return field >= c.Value
	case OpEQ:
		return field == c.Value
	default:
		return false
	}
}

func fieldValue(name string, rec *player.Record) (float64, bool) {
	switch name {
	case FieldPoints:
		return float64(rec.Points), true
	case FieldXP:
		return float64(rec.XP), true
	case FieldLevel:
		return float64(rec.Level), true
	case FieldGamesPlayed:
		return float64(rec.GamesPlayed), true
	case FieldGamesWon:
		return float64(rec.GamesWon), true
	case FieldBestTime:
		return rec.BestTime, true
	case FieldBestClicks:
		return float64(rec.BestClicks), true
	case FieldBestScore:
		return float64(rec.BestScore), true
	case FieldCurrentStreak:
		return float64(rec.CurrentStreak), true
	case FieldWinStreak:
		return float64(rec.WinStreak), true
	case FieldBestWinStreak:
		return float64(rec.BestWinStreak), true
	case FieldAvgTime:
		return rec.AvgTime, true
	case FieldAvgClicks:
		return rec.AvgClicks, true
	case FieldArticlesVisited:
		return float64(len(rec.ArticlesVisited)), true
	default:
		return 0, false
	}
}
