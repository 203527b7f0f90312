package store

import (
	"sync"

	"wikirace/internal/player"
)

// Memory is a mutex-guarded in-memory PlayerStore. Records are cloned on the
// way in and out so callers never share mutable state with the store.
type Memory struct {
	mu      sync.Mutex
	players map[string]*player.Record
}

func NewMemory() *Memory {
	return &Memory{
		players: make(map[string]*player.Record),
	}
}

func (m *Memory) Exists(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.players[name]
	return ok, nil
}

func (m *Memory) Load(name string) (*player.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.players[name]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) Save(name string, rec *player.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[name] = rec.Clone()
	return nil
}

func (m *Memory) ListAll() ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, 0, len(m.players))
	for name, rec := range m.players {
		entries = append(entries, Entry{Name: name, Record: rec.Clone()})
	}
	return entries, nil
}

func (m *Memory) Delete(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.players[name]
	delete(m.players, name)
	return ok, nil
}
