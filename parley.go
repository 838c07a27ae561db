package parley

import (
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/engine"
	"github.com/aretw0/parley/pkg/graph"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/script"
)

// Version is the release of the module. Overridden at build time with -ldflags.
var Version = "0.3.0"

// Load reads a dialogue file and compiles it. Authoring documents may be JSON
// or YAML; runtime scripts are JSON.
func Load(path string, opts ...compiler.Option) (*script.Script, error) {
	return registry.LoadFile(path, opts...)
}

// Compile validates an authoring document and builds its runtime script.
func Compile(doc *graph.Document, opts ...compiler.Option) (*script.Script, error) {
	return compiler.Compile(doc, opts...)
}

// NewEngine creates an idle engine playing s.
func NewEngine(s *script.Script, opts ...engine.Option) *engine.Engine {
	return engine.New(s, opts...)
}
