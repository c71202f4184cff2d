package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	b := dsl.New()
	b.Add("start").Say("What would you like?").
		When("pizza", "order pizza", "buy pizza").
		When("silent", "quiet please")
	b.Add("pizza").Say("One pizza coming up.").
		When("start", "menu")
	b.Add("silent").Terminal()

	eng, err := parley.New(context.Background(), b, parley.WithSeed(3))
	require.NoError(t, err)
	return NewServer(eng, session.NewManager(eng, memory.NewStore()))
}

func TestHandleChat(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{SessionID: "s1", Text: "order pizza"})
	require.NoError(t, err)
	assert.Equal(t, "pizza", resp.State.CurrentNode)
	assert.Equal(t, "One pizza coming up.", resp.Reply.Answer)
	assert.False(t, resp.NoAnswer)

	resp, err = s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{SessionID: "s1", Text: "menu"})
	require.NoError(t, err)
	assert.Equal(t, "start", resp.State.CurrentNode)
	assert.Equal(t, []string{"start", "pizza", "start"}, resp.State.History)
}

func TestHandleChat_NoAnswer(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleChat(context.Background(), mcp.CallToolRequest{}, ChatArgs{SessionID: "s1", Text: "quiet please"})
	require.NoError(t, err)
	assert.True(t, resp.NoAnswer)
	assert.Equal(t, "silent", resp.Reply.Node)
}

func TestHandleChat_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{Text: "hi"})
	assert.Error(t, err)

	_, err = s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{SessionID: "s1", Text: strings.Repeat("x", 5000)})
	assert.ErrorContains(t, err, "exceeds")
}

func TestHandleStart(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.handleStart(context.Background(), mcp.CallToolRequest{}, StartArgs{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.State.SessionID)
	assert.Equal(t, "What would you like?", resp.Reply.Answer)
}

func TestHandleExplain(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleExplain(ctx, mcp.CallToolRequest{}, ExplainArgs{Text: "buy a pizza"})
	require.NoError(t, err)
	assert.Equal(t, "start", res.From)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, domain.Match{From: "start", To: "pizza", Keyword: "buy pizza", Cost: 2}, res.Matches[0])

	res, err = s.handleExplain(ctx, mcp.CallToolRequest{}, ExplainArgs{Text: "menu", Node: "pizza"})
	require.NoError(t, err)
	assert.Equal(t, "pizza", res.From)
	require.Len(t, res.Matches, 1)

	res, err = s.handleExplain(ctx, mcp.CallToolRequest{}, ExplainArgs{Text: "anything", Node: "silent"})
	require.NoError(t, err)
	assert.Empty(t, res.Matches)

	_, err = s.handleExplain(ctx, mcp.CallToolRequest{}, ExplainArgs{Text: "menu", Node: "nowhere"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestHandleExplain_FromSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleChat(ctx, mcp.CallToolRequest{}, ChatArgs{SessionID: "s1", Text: "order pizza"})
	require.NoError(t, err)

	res, err := s.handleExplain(ctx, mcp.CallToolRequest{}, ExplainArgs{Text: "menu", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "pizza", res.From)
}

func rpc(t *testing.T, s *Server, method string, params any) string {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	out, err := json.Marshal(s.MCPServer().HandleMessage(context.Background(), msg))
	require.NoError(t, err)
	return string(out)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t)

	out := rpc(t, s, "tools/list", map[string]any{})
	for _, name := range []string{"start_session", "chat", "explain", "get_graph"} {
		assert.Contains(t, out, `"name":"`+name+`"`)
	}
}

func TestToolsCall_GetGraph(t *testing.T) {
	s := newTestServer(t)

	out := rpc(t, s, "tools/call", map[string]any{"name": "get_graph", "arguments": map[string]any{}})
	assert.Contains(t, out, `\"root\":\"start\"`)
	assert.Contains(t, out, `quiet please`)
}
