package vocab

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Bundle is one loaded set of reference data: the three stores plus the
// manifest that versions them.
type Bundle struct {
	Manifest   *Manifest
	Vocabulary *Vocabulary
	Aliases    *AliasIndex
	Regional   *RegionalSet
}

// NewBundle builds and cross-validates the stores from in-memory data.
// A nil regional slice selects DefaultRegionalTerms.
func NewBundle(m *Manifest, valid []string, aliases map[string]string, regional []string) (*Bundle, error) {
	v, err := NewVocabulary(valid)
	if err != nil {
		return nil, err
	}
	a, err := NewAliasIndex(aliases, v)
	if err != nil {
		return nil, err
	}
	if regional == nil {
		regional = DefaultRegionalTerms
	}
	if m == nil {
		m = &Manifest{ID: "inline"}
	}
	return &Bundle{
		Manifest:   m,
		Vocabulary: v,
		Aliases:    a,
		Regional:   NewRegionalSet(regional),
	}, nil
}

// LoadBundle reads dir/manifest.yaml and the files it names. A data.gob
// snapshot in dir takes priority over the source files.
func LoadBundle(dir string) (*Bundle, error) {
	m, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	gobPath := filepath.Join(dir, SnapshotFile)
	if _, err := os.Stat(gobPath); err == nil {
		snap, err := loadSnapshot(gobPath)
		if err != nil {
			return nil, &ConfigError{Source: "snapshot", Key: gobPath, Err: err}
		}
		return NewBundle(m, snap.Valid, snap.Aliases, snap.Regional)
	}
	return loadSources(dir, m)
}

// LoadBundleSources is LoadBundle without the snapshot, for rebuilding it.
func LoadBundleSources(dir string) (*Bundle, error) {
	m, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}
	return loadSources(dir, m)
}

func loadSources(dir string, m *Manifest) (*Bundle, error) {
	var valid []string
	if err := readJSON(filepath.Join(dir, m.ValidFile), &valid); err != nil {
		return nil, err
	}

	aliases := map[string]string{}
	if m.AliasesFile != "" {
		if err := readJSON(filepath.Join(dir, m.AliasesFile), &aliases); err != nil {
			return nil, err
		}
	}

	var regional []string
	if m.RegionalFile != "" {
		var err error
		regional, err = readTermList(filepath.Join(dir, m.RegionalFile))
		if err != nil {
			return nil, err
		}
	}
	if len(m.RegionalTerms) > 0 {
		regional = append(regional, m.RegionalTerms...)
	}

	return NewBundle(m, valid, aliases, regional)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Source: filepath.Base(path), Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ConfigError{Source: filepath.Base(path), Err: fmt.Errorf("parse: %w", err)}
	}
	return nil
}

// readTermList reads one term per line; blank lines and '#' comments are skipped.
func readTermList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Source: filepath.Base(path), Err: err}
	}
	defer f.Close()

	terms := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ConfigError{Source: filepath.Base(path), Err: err}
	}
	return terms, nil
}
