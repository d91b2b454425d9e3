package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/logviewer-mcp/internal/mcp/tools"
	"github.com/usestring/logviewer-mcp/internal/settings"
)

// Resource URI scheme: logviewer://
// Supported URIs:
//   logviewer://settings
//   logviewer://settings/schema
//   logviewer://lines/{first}/{last}

// maxLines caps a single lines read.
const maxLines = 500

// registerResources registers resources and resource templates.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         "logviewer://settings",
		Name:        "Settings",
		Description: "Persisted viewer settings: search history, search options, bookmark counter and backup offset.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceSettings)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         "logviewer://settings/schema",
		Name:        "Settings Schema",
		Description: "JSON Schema of the settings file.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.2,
		},
	}, s.handleResourceSettingsSchema)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "logviewer://lines/{first}/{last}",
		Name:        "Log Lines",
		Description: "Lines first through last (1-based, inclusive) of the log. Search results already carry the matched line and its neighbours; fetch this for wider context.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceLines)
}

// Resource handlers

func (s *Server) handleResourceSettings(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	data, err := s.deps.Settings.JSON()
	if err != nil {
		return nil, fmt.Errorf("serializing settings: %w", err)
	}
	return rawResourceResult(req.Params.URI, data), nil
}

func (s *Server) handleResourceSettingsSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	data, err := settings.SchemaJSON()
	if err != nil {
		return nil, fmt.Errorf("serializing settings schema: %w", err)
	}
	return rawResourceResult(req.Params.URI, data), nil
}

func (s *Server) handleResourceLines(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	first, last, err := parseLinesURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	lines, total, err := s.deps.Viewer.ReadLines(first, last)
	if err != nil {
		return nil, tools.WrapViewerError(err, "")
	}

	content := map[string]any{
		"first": first,
		"lines": lines,
		"total": total,
	}
	return toResourceResult(req.Params.URI, content)
}

// parseLinesURI extracts the line range from logviewer://lines/{first}/{last}.
func parseLinesURI(uri string) (int, int, error) {
	path, ok := strings.CutPrefix(uri, "logviewer://lines/")
	if !ok {
		return 0, 0, tools.ErrInvalidInput("invalid URI: expected logviewer://lines/{first}/{last}")
	}
	parts := strings.Split(path, "/")
	if len(parts) != 2 {
		return 0, 0, tools.ErrInvalidInput("lines URI requires first and last line")
	}

	first, err := strconv.Atoi(parts[0])
	if err != nil || first < 1 {
		return 0, 0, tools.ErrInvalidInput("first must be a positive line number")
	}
	last, err := strconv.Atoi(parts[1])
	if err != nil || last < first {
		return 0, 0, tools.ErrInvalidInput("last must be a line number not before first")
	}
	if last-first+1 > maxLines {
		return 0, 0, tools.ErrInvalidInput(fmt.Sprintf("at most %d lines per read", maxLines))
	}
	return first, last, nil
}

// toResourceResult serializes content to JSON and wraps it in a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}
	return rawResourceResult(uri, data), nil
}

func rawResourceResult(uri string, data []byte) *sdkmcp.ReadResourceResult {
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}
}
