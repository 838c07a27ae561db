package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/script"
)

// Loader implements ports.ScriptLoader over runtime JSON held in memory.
// Scripts are parsed on first use and cached.
type Loader struct {
	raw    map[string][]byte
	mu     sync.Mutex
	parsed map[string]*script.Script
}

// NewLoader creates a Loader from runtime JSON documents keyed by script name.
func NewLoader(data map[string]string) *Loader {
	raw := make(map[string][]byte, len(data))
	for k, v := range data {
		raw[k] = []byte(v)
	}
	return &Loader{raw: raw, parsed: make(map[string]*script.Script)}
}

// NewFromScripts creates a Loader from already compiled scripts.
// This skips serialization, improving DX for tests.
func NewFromScripts(scripts map[string]*script.Script) (*Loader, error) {
	l := &Loader{raw: make(map[string][]byte), parsed: make(map[string]*script.Script)}
	for name, s := range scripts {
		if name == "" {
			return nil, fmt.Errorf("script missing name")
		}
		l.parsed[name] = s
	}
	return l, nil
}

// GetScript returns the script registered under name.
func (l *Loader) GetScript(ctx context.Context, name string) (*script.Script, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.parsed[name]; ok {
		return s, nil
	}
	data, ok := l.raw[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrScriptNotFound, name)
	}
	s, err := script.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", name, err)
	}
	l.parsed[name] = s
	return s, nil
}

// ListScripts returns all available script names.
func (l *Loader) ListScripts(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[string]bool, len(l.raw)+len(l.parsed))
	for k := range l.raw {
		seen[k] = true
	}
	for k := range l.parsed {
		seen[k] = true
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}
