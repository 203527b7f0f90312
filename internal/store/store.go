// Package store persists player records keyed by player name. Three
// implementations share one interface: a JSON-file directory, Postgres, and
// an in-memory map for tests and database-less runs.
package store

import (
	"errors"

	"wikirace/internal/player"
)

// ErrNotFound is returned by Load for a player with no record.
var ErrNotFound = errors.New("player not found")

// Entry pairs a player name with their record, as returned by ListAll.
type Entry struct {
	Name   string
	Record *player.Record
}

// PlayerStore is the persistence boundary for player records. ListAll makes
// no ordering promise.
type PlayerStore interface {
	Exists(name string) (bool, error)
	Load(name string) (*player.Record, error)
	Save(name string, rec *player.Record) error
	ListAll() ([]Entry, error)
	Delete(name string) (bool, error)
}
