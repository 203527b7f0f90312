package achievements

import (
	"encoding/json"
	"log"
	"os"
)

// LoadFile reads achievement definitions from a JSON file. Any failure
// degrades to an empty registry rather than stopping the bot; entries with
// malformed conditions stay in the registry but never match.
func LoadFile(path string) *Registry {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[Achievements] Failed to read %s: %v (using empty registry)\n", path, err)
		return NewRegistry(nil)
	}
	var defs []Achievement
	if err := json.Unmarshal(data, &defs); err != nil {
		log.Printf("[Achievements] Failed to parse %s: %v (using empty registry)\n", path, err)
		return NewRegistry(nil)
	}
	return NewRegistry(defs)
}
