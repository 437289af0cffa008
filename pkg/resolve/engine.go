package resolve

import (
	"fmt"
	"sync"

	"github.com/hazyhaar/coo-registry/pkg/vocab"
)

// Engine serves resolutions from a bundle directory and supports hot reload.
// A failed reload leaves the previous bundle in place.
type Engine struct {
	mu        sync.RWMutex
	bundleDir string
	bundle    *vocab.Bundle
	runner    *Runner
	opts      []Option
}

// BundleInfo is the public metadata of the loaded bundle.
type BundleInfo struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Source      string `json:"source"`
	SourceURL   string `json:"source_url,omitempty"`
	License     string `json:"license"`
	Identifiers int    `json:"identifiers"`
	Aliases     int    `json:"aliases"`
	Regional    int    `json:"regional_terms"`
}

// NewEngine creates an engine for bundleDir. Call Load before use.
func NewEngine(bundleDir string, opts ...Option) *Engine {
	return &Engine{bundleDir: bundleDir, opts: opts}
}

// NewEngineFromBundle creates an engine over an already loaded bundle.
// Reload is not available on it.
func NewEngineFromBundle(b *vocab.Bundle, opts ...Option) (*Engine, error) {
	e := &Engine{opts: opts}
	if err := e.swap(b); err != nil {
		return nil, err
	}
	return e, nil
}

// Load reads the bundle directory and swaps in the new stores.
func (e *Engine) Load() error {
	if e.bundleDir == "" {
		return fmt.Errorf("engine has no bundle directory")
	}
	b, err := vocab.LoadBundle(e.bundleDir)
	if err != nil {
		return fmt.Errorf("load bundle %s: %w", e.bundleDir, err)
	}
	return e.swap(b)
}

// Reload reloads the bundle from disk (hot reload).
func (e *Engine) Reload() error {
	err := e.Load()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	buildOptions(e.opts).metrics.IncReload(outcome)
	return err
}

func (e *Engine) swap(b *vocab.Bundle) error {
	r, err := FromBundle(b)
	if err != nil {
		return err
	}
	runner := NewRunner(r, e.opts...)

	e.mu.Lock()
	e.bundle = b
	e.runner = runner
	e.mu.Unlock()
	return nil
}

func (e *Engine) current() *Runner {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runner
}

// Resolve resolves one raw value against the current bundle.
func (e *Engine) Resolve(v Value) Record {
	r := e.current()
	rec := r.resolver.Resolve(v)
	r.opts.metrics.IncResolution(rec.Method.String())
	return rec
}

// RunBatch resolves a column of raw values against the current bundle.
func (e *Engine) RunBatch(values []Value) *BatchResult {
	return e.current().Run(values)
}

// Info describes the loaded bundle. It is zero before the first Load.
func (e *Engine) Info() BundleInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.bundle == nil {
		return BundleInfo{}
	}
	m := e.bundle.Manifest
	return BundleInfo{
		ID:          m.ID,
		Version:     m.Version,
		Source:      m.Source,
		SourceURL:   m.SourceURL,
		License:     m.License,
		Identifiers: e.bundle.Vocabulary.Len(),
		Aliases:     e.bundle.Aliases.Len(),
		Regional:    e.bundle.Regional.Len(),
	}
}
