package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runtimeScript = `{"startNodeId": "s", "nodes": [
  {"id": "s", "type": "start", "nextNodeId": "hi"},
  {"id": "hi", "type": "dialogue", "speaker": {"en": "Guide"}, "text": {"en": "Hello"}, "nextNodeId": "q"},
  {"id": "q", "type": "choice", "text": {"en": "Ready?"}, "choices": [
    {"id": "yes", "text": {"en": "Yes"}, "isCorrect": true, "nextNodeId": "e"},
    {"id": "no", "text": {"en": "No"}, "nextNodeId": "hi"}
  ]},
  {"id": "e", "type": "end"}
]}`

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func newServer(t *testing.T) *Server {
	t.Helper()
	loader := memory.NewLoader(map[string]string{"intro": runtimeScript})
	return NewServer(session.NewManager(memory.NewStore(), loader))
}

func TestAuthoringTools(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleValidate(ctx, callRequest(map[string]any{"document": runtimeScript}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "valid")

	res, err = s.handleValidate(ctx, callRequest(map[string]any{"document": `{"nodes": [], "edges": []}`}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "invalid")

	res, err = s.handleImport(ctx, callRequest(map[string]any{"document": runtimeScript}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"fromPortName": "choice_yes"`)

	res, err = s.handleCompile(ctx, callRequest(map[string]any{"document": runtimeScript}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"startNodeId"`)

	res, err = s.handleMermaid(ctx, callRequest(map[string]any{"document": runtimeScript, "current_node": "q"}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "graph TD")
	assert.Contains(t, text, "class q current;")
}

func TestAuthoringTools_Errors(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleCompile(ctx, callRequest(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleCompile(ctx, callRequest(map[string]any{"document": `{"nodes": [{"id": "e", "type": "end", "position": {"x": 0, "y": 0}}], "edges": []}`}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "compile refused")

	res, err = s.handleImport(ctx, callRequest(map[string]any{"document": "{"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSessionTools(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleListScripts(ctx, callRequest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["intro"]`, resultText(t, res))

	started, err := s.handleStart(ctx, mcp.CallToolRequest{}, SessionArgs{Script: "intro"})
	require.NoError(t, err)
	sid := started.State.SessionID
	require.NotEmpty(t, sid)
	assert.Equal(t, domain.UnitDialogue, started.Unit.Kind)

	current, err := s.handleCurrent(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: sid})
	require.NoError(t, err)
	assert.Equal(t, "hi", current.Unit.NodeID)

	advanced, err := s.handleAdvance(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: sid})
	require.NoError(t, err)
	assert.Equal(t, domain.UnitChoice, advanced.Unit.Kind)

	_, err = s.handleChoose(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: sid, ChoiceID: "maybe"})
	assert.ErrorIs(t, err, domain.ErrChoiceNotFound)

	chosen, err := s.handleChoose(ctx, mcp.CallToolRequest{}, SessionArgs{SessionID: sid, ChoiceID: "yes"})
	require.NoError(t, err)
	require.NotNil(t, chosen.Feedback)
	assert.True(t, chosen.Feedback.ChosenIsCorrect)
	assert.True(t, chosen.Unit.Ended())

	_, err = s.handleStart(ctx, mcp.CallToolRequest{}, SessionArgs{Script: "missing"})
	assert.ErrorIs(t, err, domain.ErrScriptNotFound)

	_, err = s.handleStart(ctx, mcp.CallToolRequest{}, SessionArgs{})
	assert.Error(t, err)
}

func TestNewServer_AuthoringOnly(t *testing.T) {
	s := NewServer(nil)
	assert.NotNil(t, s.MCPServer())
}
