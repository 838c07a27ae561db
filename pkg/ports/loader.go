package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/script"
)

// ScriptLoader defines how hosts retrieve compiled scripts.
// This allows the storage layer (directory, memory, remote) to be decoupled.
type ScriptLoader interface {
	// GetScript returns the script registered under name.
	// Returns domain.ErrScriptNotFound if there is none.
	GetScript(ctx context.Context, name string) (*script.Script, error)

	// ListScripts returns the names of all available scripts, sorted.
	ListScripts(ctx context.Context) ([]string, error)
}
