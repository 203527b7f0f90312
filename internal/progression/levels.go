package progression

// levelThresholds[i] is the total XP required for level i+1. Levels run 1..20;
// the table is evaluated in ascending order and a level never goes back down.
var levelThresholds = []int{
	0, 100, 250, 450, 700,
	1000, 1400, 1850, 2350, 2900,
	3500, 4200, 5000, 5900, 6900,
	8000, 9200, 10500, 12000, 14000,
}

// MaxLevel is the highest attainable level.
const MaxLevel = 20

// LevelForXP returns the highest level whose threshold is within totalXP.
func LevelForXP(totalXP int) int {
	level := 1
	for i, required := range levelThresholds {
		if totalXP >= required {
			level = i + 1
		}
	}
	return level
}

// XPForLevel returns the total XP threshold of a level. Out-of-range levels
// clamp to the table edges.
func XPForLevel(level int) int {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// XPToNextLevel returns how much XP is still missing for the next level, or 0
// at the cap.
func XPToNextLevel(totalXP int) int {
	level := LevelForXP(totalXP)
	if level >= MaxLevel {
		return 0
	}
	return XPForLevel(level+1) - totalXP
}

// Tier is a cosmetic grouping of levels.
type Tier struct {
	Name     string `json:"name"`
	Color    string `json:"color"`
	MinLevel int    `json:"min_level"`
	MaxLevel int    `json:"max_level"`
}

var tiers = []Tier{
	{Name: "Bronze", Color: "#cd7f32", MinLevel: 1, MaxLevel: 4},
	{Name: "Silver", Color: "#c0c0c0", MinLevel: 5, MaxLevel: 9},
	{Name: "Gold", Color: "#ffd700", MinLevel: 10, MaxLevel: 14},
	{Name: "Platinum", Color: "#e5e4e2", MinLevel: 15, MaxLevel: 17},
	{Name: "Diamond", Color: "#b9f2ff", MinLevel: 18, MaxLevel: 20},
}

// TierForLevel maps a level to its tier band. Levels outside the table clamp
// to the nearest band.
func TierForLevel(level int) Tier {
	for _, t := range tiers {
		if level >= t.MinLevel && level <= t.MaxLevel {
			return t
		}
	}
	if level > MaxLevel {
		return tiers[len(tiers)-1]
	}
	return tiers[0]
}
