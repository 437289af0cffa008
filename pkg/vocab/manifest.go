package vocab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes a vocabulary bundle: where its files live and which
// version of the reference data they carry.
type Manifest struct {
	ID            string   `yaml:"id" json:"id"`
	Version       string   `yaml:"version" json:"version"`
	Source        string   `yaml:"source" json:"source"`
	SourceURL     string   `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	License       string   `yaml:"license" json:"license"`
	ValidFile     string   `yaml:"valid_file" json:"-"`
	AliasesFile   string   `yaml:"aliases_file,omitempty" json:"-"`
	RegionalFile  string   `yaml:"regional_file,omitempty" json:"-"`
	RegionalTerms []string `yaml:"regional_terms,omitempty" json:"-"`
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Source: "manifest", Key: path, Err: err}
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &ConfigError{Source: "manifest", Key: path, Err: fmt.Errorf("parse: %w", err)}
	}
	if m.ID == "" {
		return nil, configErr("manifest", path, "missing id")
	}
	if m.ValidFile == "" {
		m.ValidFile = "valid_countries.json"
	}
	return &m, nil
}
