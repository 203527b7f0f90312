package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"wikirace/internal/player"
)

// File stores one JSON document per player in a directory. The file stem is
// the player name.
type File struct {
	dir string
}

// NewFile creates the data directory if needed and returns a file store
// rooted there.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *File) Exists(name string) (bool, error) {
	_, err := os.Stat(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat player file: %w", err)
	}
	return true, nil
}

func (f *File) Load(name string) (*player.Record, error) {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading player file: %w", err)
	}
	var rec player.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding player %s: %w", name, err)
	}
	return &rec, nil
}

func (f *File) Save(name string, rec *player.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding player %s: %w", name, err)
	}
	// Write via a temp file so a crash mid-write cannot truncate a record.
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing player file: %w", err)
	}
	if err := os.Rename(tmp, f.path(name)); err != nil {
		return fmt.Errorf("replacing player file: %w", err)
	}
	return nil
}

func (f *File) ListAll() ([]Entry, error) {
	files, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}
	var entries []Entry
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(file.Name(), ".json")
		rec, err := f.Load(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Record: rec})
	}
	return entries, nil
}

func (f *File) Delete(name string) (bool, error) {
	err := os.Remove(f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting player file: %w", err)
	}
	return true, nil
}
