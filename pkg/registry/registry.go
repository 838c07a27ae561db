// Package registry keeps named, compiled scripts in memory and can fill
// itself from a directory of dialogue files.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/aretw0/parley/pkg/script"
)

// Registry manages the available scripts. It implements ports.ScriptLoader.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]*script.Script
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used while loading directories.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		scripts: make(map[string]*script.Script),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a script to the registry.
// If a script with the same name exists, it is overwritten.
func (r *Registry) Register(name string, s *script.Script) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[name] = s
}

// Remove drops a script. Sessions already playing it keep their copy.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scripts, name)
}

// GetScript looks up a script by name.
func (r *Registry) GetScript(ctx context.Context, name string) (*script.Script, error) {
	r.mu.RLock()
	s, ok := r.scripts[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrScriptNotFound, name)
	}
	return s, nil
}

// ListScripts returns the registered names, sorted.
func (r *Registry) ListScripts(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// LoadDir registers every dialogue file in dir (not recursive), named after
// the file without its extension. JSON files may use either schema; YAML
// files hold authoring documents. Authoring documents are compiled.
// It returns the number of scripts loaded; the first failing file aborts the load.
func (r *Registry) LoadDir(dir string, opts ...compiler.Option) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read script directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		s, err := LoadFile(path, opts...)
		if err != nil {
			return loaded, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		r.Register(name, s)
		r.logger.Debug("script registered", "script", name, "nodes", s.Len())
		loaded++
	}
	return loaded, nil
}

// LoadFile reads one dialogue file and returns its compiled script.
func LoadFile(path string, opts ...compiler.Option) (*script.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc *graph.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = compiler.UnmarshalDocumentYAML(data)
	default:
		doc, err = compiler.Import(data, opts...)
	}
	if err != nil {
		return nil, err
	}
	return compiler.Compile(doc, opts...)
}
