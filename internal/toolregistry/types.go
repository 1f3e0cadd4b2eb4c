// Package toolregistry implements the tool registry external interface:
// a name -> executor map returning a textual result and an is_error flag.
package toolregistry

import (
	"context"

	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

// Result is what a tool execution yields back to the turn loop.
type Result struct {
	Content string
	IsError bool
}

// ErrorResult is a convenience constructor for a failed execution.
func ErrorResult(msg string) Result {
	return Result{Content: msg, IsError: true}
}

// Tool is a single executable capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Execute(ctx context.Context, params map[string]any, cwd string) Result
}

// toSchema builds the modelclient.ToolSchema for a registered tool.
func toSchema(t Tool) modelclient.ToolSchema {
	return modelclient.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		InputSchema: t.Schema(),
	}
}
