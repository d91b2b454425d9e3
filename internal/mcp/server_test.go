package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/logviewer-mcp/internal/dispatch"
	"github.com/usestring/logviewer-mcp/internal/mcp/tools"
	"github.com/usestring/logviewer-mcp/internal/notify"
	"github.com/usestring/logviewer-mcp/internal/query"
	"github.com/usestring/logviewer-mcp/internal/settings"
	"github.com/usestring/logviewer-mcp/internal/textsource"
	"github.com/usestring/logviewer-mcp/internal/viewer"
)

func connect(t *testing.T, text string) *sdkmcp.ClientSession {
	t.Helper()
	store, err := settings.Open("", nil)
	require.NoError(t, err)
	queue := dispatch.New(0, nil)
	announcements := notify.NewBuffer()
	v, err := viewer.New(viewer.Config{
		Source:  textsource.NewBuffer(text),
		Options: store,
		Queue:   queue,
		Sink:    announcements,
	})
	require.NoError(t, err)

	deps := &tools.Deps{
		Viewer:        v,
		Settings:      store,
		Query:         query.NewEngine(),
		Queue:         queue,
		Announcements: announcements,
	}
	srv, err := NewServer(deps, WithBuiltinTools(), WithBuiltinPrompts())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = queue.Run(ctx) }()

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestNewServer_RequiresDeps(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestServer_ListsTools(t *testing.T) {
	cs := connect(t, "log\n")
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"logviewer_search",
		"logviewer_close_search",
		"logviewer_find_next",
		"logviewer_find_previous",
		"logviewer_insert_bookmark",
		"logviewer_next_bookmark",
		"logviewer_previous_bookmark",
		"logviewer_list_bookmarks",
		"logviewer_history",
		"logviewer_set_caret",
		"logviewer_backup_sync",
	}, names)
}

func TestServer_SearchCall(t *testing.T) {
	cs := connect(t, "alpha\nbeta\n")
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "logviewer_search",
		Arguments: map[string]any{"term": "beta"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out tools.SearchOutput
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "found", out.Outcome)
	assert.Equal(t, 2, out.Line)
	assert.Equal(t, []string{"Found 1 matches.", "Line 2: beta"}, out.Announcements)
}

func TestServer_ReadsSettings(t *testing.T) {
	cs := connect(t, "log\n")
	res, err := cs.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "logviewer://settings"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var file settings.File
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &file))
	assert.Equal(t, settings.Defaults(), file)
}

func TestParseLinesURI(t *testing.T) {
	first, last, err := parseLinesURI("logviewer://lines/3/7")
	require.NoError(t, err)
	assert.Equal(t, 3, first)
	assert.Equal(t, 7, last)

	for _, uri := range []string{
		"logviewer://settings",
		"logviewer://lines/3",
		"logviewer://lines/0/2",
		"logviewer://lines/5/4",
		"logviewer://lines/1/9999",
	} {
		_, _, err := parseLinesURI(uri)
		assert.Error(t, err, uri)
	}
}
