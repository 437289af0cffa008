package vocab

import (
	"encoding/gob"
	"fmt"
	"os"
)

// SnapshotFile is the name of the compiled bundle inside a bundle directory.
const SnapshotFile = "data.gob"

// snapshot is the serialized form of a bundle's source data. It is rebuilt
// through the constructors on load, so a stale snapshot is still validated.
type snapshot struct {
	Valid    []string
	Aliases  map[string]string
	Regional []string
}

func loadSnapshot(path string) (*snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var s snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	// gob drops empty slices; an empty regional list must not fall back to
	// the defaults.
	if s.Regional == nil {
		s.Regional = []string{}
	}
	return &s, nil
}

// SaveSnapshot serializes b to a gob-encoded file at path.
func SaveSnapshot(b *Bundle, path string) error {
	s := snapshot{
		Valid:    b.Vocabulary.Entries(),
		Aliases:  b.Aliases.Entries(),
		Regional: b.Regional.Terms(),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		f.Close()
		return fmt.Errorf("encode gob: %w", err)
	}
	return f.Close()
}
