package achievements

import (
	"os"
	"path/filepath"
	"testing"

	"wikirace/internal/player"
)

func hasID(list []Achievement, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestBuiltin_FreshRecordUnlocksNothing(t *testing.T) {
	rec := player.NewRecord()
	unlockable := Builtin().Unlockable(rec)
	if hasID(unlockable, "debutant") {
		t.Error("debutant should not unlock with zero games played")
	}
	if hasID(unlockable, "eclair") || hasID(unlockable, "minimaliste") {
		t.Error("best-mark achievements should not unlock with unset sentinels")
	}
}

func TestBuiltin_FastFirstWin(t *testing.T) {
	rec := player.NewRecord()
	rec.GamesPlayed = 1
	rec.GamesWon = 1
	rec.BestTime = 25
	rec.BestClicks = 2
	rec.AvgTime = 25
	rec.AvgClicks = 2

	unlockable := Builtin().Unlockable(rec)
	for _, id := range []string{"eclair", "minimaliste", "debutant", "rapide", "efficace"} {
		if !hasID(unlockable, id) {
			t.Errorf("expected %q to unlock, got %v", id, unlockable)
		}
	}
	for _, id := range []string{"marathon", "perfectionniste", "veterane", "champion", "explorateur"} {
		if hasID(unlockable, id) {
			t.Errorf("%q should not unlock on a first win", id)
		}
	}
}

func TestUnlockable_SkipsAlreadyUnlocked(t *testing.T) {
	rec := player.NewRecord()
	rec.GamesPlayed = 1
	rec.Achievements = []string{"debutant"}

	unlockable := Builtin().Unlockable(rec)
	if hasID(unlockable, "debutant") {
		t.Error("already-unlocked achievement reported again")
	}
}

func TestCondition_Operators(t *testing.T) {
	rec := player.NewRecord()
	rec.GamesWon = 10

	cases := []struct {
		op   string
		val  float64
		want bool
	}{
		{OpLT, 11, true},
		{OpLT, 10, false},
		{OpLE, 10, true},
		{OpGT, 9, true},
		{OpGT, 10, false},
		{OpGE, 10, true},
		{OpEQ, 10, true},
		{OpEQ, 9, false},
	}
	for _, c := range cases {
		cond := Condition{Field: FieldGamesWon, Op: c.op, Value: c.val}
		if got := cond.Eval(rec); got != c.want {
			t.Errorf("games_won %s %v = %v, want %v", c.op, c.val, got, c.want)
		}
	}
}

func TestCondition_LenGE(t *testing.T) {
	rec := player.NewRecord()
	rec.AddArticles("a", "b", "c")

	cond := Condition{Field: FieldArticlesVisited, Op: OpLenGE, Value: 3}
	if !cond.Eval(rec) {
		t.Error("len_ge 3 should match 3 visited articles")
	}
	cond.Value = 4
	if cond.Eval(rec) {
		t.Error("len_ge 4 should not match 3 visited articles")
	}
}

func TestCondition_MalformedIsFalse(t *testing.T) {
	rec := player.NewRecord()
	rec.GamesWon = 100

	if (Condition{Field: "no_such_field", Op: OpGE, Value: 0}).Eval(rec) {
		t.Error("unknown field should evaluate to false")
	}
	if (Condition{Field: FieldGamesWon, Op: "between", Value: 0}).Eval(rec) {
		t.Error("unknown operator should evaluate to false")
	}
	if (Condition{}).Eval(rec) {
		t.Error("zero condition should evaluate to false")
	}
}

func TestLoadFile_MissingFileDegradesToEmpty(t *testing.T) {
	r := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if r.Len() != 0 {
		t.Errorf("registry size = %d, want 0", r.Len())
	}
}

func TestLoadFile_BadJSONDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := LoadFile(path)
	if r.Len() != 0 {
		t.Errorf("registry size = %d, want 0", r.Len())
	}
}

func TestLoadFile_ValidTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	body := `[
		{"id": "night_owl", "name": "Night Owl", "description": "Win 5 rounds", "xp": 25,
		 "condition": {"field": "games_won", "op": "ge", "value": 5}},
		{"id": "broken", "name": "Broken", "description": "Bad condition", "xp": 5,
		 "condition": {"field": "games_won", "op": "sometimes", "value": 1}}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	r := LoadFile(path)
	if r.Len() != 2 {
		t.Fatalf("registry size = %d, want 2", r.Len())
	}

	rec := player.NewRecord()
	rec.GamesWon = 5
	unlockable := r.Unlockable(rec)
	if !hasID(unlockable, "night_owl") {
		t.Error("night_owl should unlock with 5 wins")
	}
	if hasID(unlockable, "broken") {
		t.Error("entry with malformed condition must never unlock")
	}
}
