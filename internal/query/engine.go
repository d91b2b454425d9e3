// Package query filters tool output with jq expressions.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

// Engine runs jq expressions over tool results.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Result contains the output of a jq expression.
type Result struct {
	Values   []any    `json:"values"`           // Emitted values, nulls dropped
	Errors   []string `json:"errors,omitempty"` // Runtime errors, deduplicated
	RawCount int      `json:"raw_count"`        // Count before deduplication
}

// Run evaluates expression against v. v may be any JSON-marshalable value;
// it is converted to plain maps and slices first. maxResults <= 0 means no
// limit.
func (e *Engine) Run(v any, expression string, deduplicate bool, maxResults int) (*Result, error) {
	code, err := compile(expression)
	if err != nil {
		return nil, err
	}
	input, err := types.ToAny(v)
	if err != nil {
		return nil, fmt.Errorf("encoding jq input: %w", err)
	}

	result := &Result{Values: make([]any, 0)}
	seen := make(map[string]bool)
	seenErrors := make(map[string]bool)

	iter := code.Run(input)
	for {
		if maxResults > 0 && len(result.Values) >= maxResults {
			break
		}
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			msg := formatJQError(err)
			if !seenErrors[msg] {
				seenErrors[msg] = true
				result.Errors = append(result.Errors, msg)
			}
			continue
		}
		if out == nil {
			continue
		}

		result.RawCount++
		if deduplicate {
			key := valueKey(out)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result.Values = append(result.Values, out)
	}
	return result, nil
}

// ValidateExpression checks if a jq expression is valid without executing it.
func (e *Engine) ValidateExpression(expression string) error {
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	q, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// formatJQError adds a hint to common runtime errors. gojq reports them as
// plain errors, so the hints are chosen by message text.
func formatJQError(err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return "query halted"
		}
		return fmt.Sprintf("query halted with: %v", haltErr.Value())
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "cannot iterate over: null"):
		msg += " (the field may be absent from this result)"
	case strings.Contains(msg, "object") && strings.Contains(msg, "cannot be iterated"):
		msg += " (expected array but got object, try removing '[]')"
	case strings.Contains(msg, "array") && strings.Contains(msg, "cannot be indexed"):
		msg += " (expected object but got array, try adding '[]')"
	}
	return msg
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
