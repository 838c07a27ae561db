package registry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	contract "github.com/aretw0/parley/pkg/ports/tests"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runtimeJSON = `{"startNodeId": "s", "nodes": [
  {"id": "s", "type": "start", "nextNodeId": "d"},
  {"id": "d", "type": "dialogue", "text": {"en": "Hi"}, "nextNodeId": "e"},
  {"id": "e", "type": "end"}
]}`

const authoringYAML = `title:
  en: Greeting
nodes:
  - id: begin
    type: start
    position: {x: 100, y: 100}
  - id: bye
    type: end
    position: {x: 400, y: 100}
edges:
  - fromNodeId: begin
    fromPortName: output
    toNodeId: bye
    toPortName: input
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestRegistry_LoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "runtime.json", runtimeJSON)
	writeFile(t, dir, "authoring.yaml", authoringYAML)
	writeFile(t, dir, "README.md", "# not a script")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	reg := registry.NewRegistry()
	n, err := reg.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	contract.ScriptLoaderContractTest(t, reg, map[string]string{
		"runtime":   "s",
		"authoring": "begin",
	})
}

func TestRegistry_LoadDirRefusesInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"nodes": [{"id": "e", "type": "end"}], "edges": []}`)

	_, err := registry.NewRegistry().LoadDir(dir)
	var missing *domain.MissingStartNodeError
	assert.ErrorAs(t, err, &missing)
}

func TestRegistry_RegisterAndRemove(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "one.json", runtimeJSON)

	s, err := registry.LoadFile(filepath.Join(dir, "one.json"))
	require.NoError(t, err)

	reg := registry.NewRegistry()
	reg.Register("one", s)
	got, err := reg.GetScript(ctx, "one")
	require.NoError(t, err)
	assert.Same(t, s, got)

	reg.Remove("one")
	_, err = reg.GetScript(ctx, "one")
	assert.ErrorIs(t, err, domain.ErrScriptNotFound)
}

func TestRegistry_MissingDir(t *testing.T) {
	_, err := registry.NewRegistry().LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
