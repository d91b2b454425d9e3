// Package mcpsrv provides an extensible MCP server for a text log viewer.
//
// The server exposes search, quick search and bookmark commands against a
// log shown in a viewer, keeps a rolling backup of the log, and persists
// search history and options between runs.
//
// # Basic Usage
//
// Configuration is read from the environment (see internal/config):
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Host Integration
//
// By default the viewer is the file at LOGVIEWER_LOG_PATH. A host with a real
// viewer window plugs in its own text source and announcement sink:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithSource(bridge),
//	    mcpsrv.WithDetector(textsource.DetectorFunc(bridge.IsLogWindow)),
//	    mcpsrv.WithSink(notify.SinkFunc(speech.Say)),
//	)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithTool(&mcp.Tool{Name: "my_tool", Description: "My tool"}, myHandler),
//	)
package mcpsrv
