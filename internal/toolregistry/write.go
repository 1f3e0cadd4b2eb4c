package toolregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteTool creates or overwrites a file. Approval gating happens in the
// approval engine before this runs; this tool trusts its caller.
type WriteTool struct{}

func (t *WriteTool) Name() string        { return "write_file" }
func (t *WriteTool) Description() string { return "Write content to a file, creating parent directories as needed." }

func (t *WriteTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file to write.",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to write.",
			},
		},
		"required": []string{"path", "content"},
	}
}

func (t *WriteTool) Execute(ctx context.Context, params map[string]any, cwd string) Result {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return ErrorResult("path is required")
	}
	content, ok := params["content"].(string)
	if !ok {
		return ErrorResult("content is required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ErrorResult("failed to create directory: " + err.Error())
	}

	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return ErrorResult("failed to write file: " + err.Error())
	}

	action := "Updated"
	if isNew {
		action = "Created"
	}
	lines := strings.Count(content, "\n") + 1
	return Result{Content: fmt.Sprintf("%s %s (%d lines)", action, path, lines)}
}
