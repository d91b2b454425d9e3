package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

// HistoryInput is the input for logviewer_history.
type HistoryInput struct{}

// HistoryOutput is the output for logviewer_history.
type HistoryOutput struct {
	// Terms lists recent search terms, most recent first.
	Terms         []string `json:"terms,omitzero"`
	CaseSensitive bool     `json:"case_sensitive"`
	Wrap          bool     `json:"wrap"`
	SearchType    string   `json:"search_type"`
	SearchTypes   []string `json:"search_types,omitzero"`
	DialogOpen    bool     `json:"dialog_open"`
}

// SetCaretInput is the input for logviewer_set_caret.
type SetCaretInput struct {
	Offset int `json:"offset" jsonschema:"Caret position in characters from the start of the log"`
}

// SetCaretOutput is the output for logviewer_set_caret.
type SetCaretOutput struct {
	Offset int `json:"offset"`
}

// BackupSyncInput is the input for logviewer_backup_sync.
type BackupSyncInput struct{}

// BackupSyncOutput is the output for logviewer_backup_sync.
type BackupSyncOutput struct {
	Enabled bool   `json:"enabled"`
	Copied  int64  `json:"copied"`
	Offset  int64  `json:"offset"`
	Target  string `json:"target,omitempty"`
}

// ToolHistory returns the search history and the persisted search options.
func ToolHistory(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input HistoryInput) (*sdkmcp.CallToolResult, HistoryOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input HistoryInput) (*sdkmcp.CallToolResult, HistoryOutput, error) {
		opts := d.Settings.SearchOptions()
		return nil, HistoryOutput{
			Terms:         d.Viewer.History(),
			CaseSensitive: opts.CaseSensitive,
			Wrap:          opts.Wrap,
			SearchType:    opts.Type.Name(),
			SearchTypes:   []string{types.Normal.Name(), types.RegularExpression.Name()},
			DialogOpen:    d.Viewer.DialogOpen(),
		}, nil
	}
}

// ToolSetCaret moves the caret in the log viewer.
func ToolSetCaret(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetCaretInput) (*sdkmcp.CallToolResult, SetCaretOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SetCaretInput) (*sdkmcp.CallToolResult, SetCaretOutput, error) {
		if input.Offset < 0 {
			return nil, SetCaretOutput{}, ErrInvalidInput("offset must not be negative")
		}
		if _, err := d.exec(ctx, func(context.Context) error {
			return d.Viewer.SetCaret(input.Offset)
		}); err != nil {
			return nil, SetCaretOutput{}, err
		}
		return nil, SetCaretOutput{Offset: input.Offset}, nil
	}
}

// ToolBackupSync copies new log content to the backup file now.
func ToolBackupSync(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input BackupSyncInput) (*sdkmcp.CallToolResult, BackupSyncOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input BackupSyncInput) (*sdkmcp.CallToolResult, BackupSyncOutput, error) {
		if d.Backup == nil {
			return nil, BackupSyncOutput{}, nil
		}
		copied, err := d.Backup.Sync(ctx)
		if err != nil {
			return nil, BackupSyncOutput{}, &CodedError{Code: ErrCodeSourceUnavailable, Message: "log backup failed", Cause: err}
		}
		out := BackupSyncOutput{Enabled: true, Copied: copied, Offset: d.Backup.Offset()}
		if d.Config != nil {
			out.Target = d.Config.BackupPath
		}
		return nil, out, nil
	}
}
