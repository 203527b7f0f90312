package store

import (
	"testing"

	"wikirace/internal/player"
)

func newFileStore(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestFile_LoadMissing(t *testing.T) {
	f := newFileStore(t)

	if _, err := f.Load("ghost"); err != ErrNotFound {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
	exists, err := f.Exists("ghost")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("Exists(missing) = true, want false")
	}
}

func TestFile_SaveLoad(t *testing.T) {
	f := newFileStore(t)

	rec := player.NewRecord()
	rec.Points = 310
	rec.BestTime = 27.4
	rec.AddArticles("Go", "Unix")
	if err := f.Save("alice", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := f.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Points != 310 {
		t.Errorf("Points = %d, want 310", back.Points)
	}
	if back.BestTime != 27.4 {
		t.Errorf("BestTime = %v, want 27.4", back.BestTime)
	}
	if back.BestClicks != player.NoBestClicks {
		t.Errorf("BestClicks = %d, want sentinel", back.BestClicks)
	}
	if len(back.ArticlesVisited) != 2 {
		t.Errorf("ArticlesVisited = %v, want 2 titles", back.ArticlesVisited)
	}
}

func TestFile_SaveOverwrites(t *testing.T) {
	f := newFileStore(t)

	rec := player.NewRecord()
	if err := f.Save("alice", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec.Points = 99
	if err := f.Save("alice", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := f.Load("alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Points != 99 {
		t.Errorf("Points = %d, want 99", back.Points)
	}
}

func TestFile_ListAll(t *testing.T) {
	f := newFileStore(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		if err := f.Save(name, player.NewRecord()); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	entries, err := f.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("ListAll() returned %d entries, want 3", len(entries))
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		seen[e.Name] = true
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		if !seen[name] {
			t.Errorf("ListAll() missing %q", name)
		}
	}
}

func TestFile_Delete(t *testing.T) {
	f := newFileStore(t)

	if err := f.Save("alice", player.NewRecord()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ok, err := f.Delete("alice")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !ok {
		t.Error("Delete(existing) = false, want true")
	}

	ok, err = f.Delete("alice")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok {
		t.Error("Delete(missing) = true, want false")
	}
}
