package tests

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ScriptLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ScriptLoader.
// expected maps each script name the loader must serve to its start node id.
func ScriptLoaderContractTest(t *testing.T, loader ports.ScriptLoader, expected map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetScript_Success", func(t *testing.T) {
		for name, startID := range expected {
			s, err := loader.GetScript(ctx, name)
			require.NoError(t, err, "script %s", name)
			assert.Equal(t, startID, s.StartNodeID())
		}
	})

	t.Run("GetScript_NotFound", func(t *testing.T) {
		_, err := loader.GetScript(ctx, "non-existent-script")
		assert.ErrorIs(t, err, domain.ErrScriptNotFound)
	})

	t.Run("ListScripts", func(t *testing.T) {
		names, err := loader.ListScripts(ctx)
		require.NoError(t, err)
		assert.Len(t, names, len(expected))
		for name := range expected {
			assert.Contains(t, names, name)
		}
		assert.IsNonDecreasing(t, names)
	})
}
