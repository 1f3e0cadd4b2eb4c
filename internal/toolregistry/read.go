package toolregistry

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	maxReadLines  = 2000
	maxLineLength = 500
)

// ReadTool reads file contents, truncating long lines and capping the
// number of lines returned the way a context-budget-conscious caller wants.
type ReadTool struct{}

func (t *ReadTool) Name() string        { return "read_file" }
func (t *ReadTool) Description() string { return "Read file contents." }

func (t *ReadTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file to read (absolute or relative to the working directory).",
			},
			"offset": map[string]any{
				"type":        "integer",
				"description": "1-based line number to start reading from. Default 1.",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of lines to read. Default 2000.",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ReadTool) Execute(ctx context.Context, params map[string]any, cwd string) Result {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return ErrorResult("path is required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	offset := 0
	switch v := params["offset"].(type) {
	case int:
		offset = v
	case float64:
		offset = int(v)
	}

	limit := maxReadLines
	switch v := params["limit"].(type) {
	case int:
		if v > 0 {
			limit = v
		}
	case float64:
		if v > 0 {
			limit = int(v)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrorResult("file not found: " + path)
		}
		return ErrorResult("failed to stat file: " + err.Error())
	}
	if info.IsDir() {
		return ErrorResult("path is a directory: " + path)
	}

	file, err := os.Open(path)
	if err != nil {
		return ErrorResult("failed to open file: " + err.Error())
	}
	defer file.Close()

	header := make([]byte, 512)
	n, _ := file.Read(header)
	for _, b := range header[:n] {
		if b == 0 {
			return Result{Content: fmt.Sprintf("Binary file detected: %s", path)}
		}
	}
	file.Seek(0, 0)

	var sb []byte
	scanner := bufio.NewScanner(file)
	lineNo := 0
	read := 0
	truncated := false

	for scanner.Scan() {
		lineNo++
		if offset > 0 && lineNo < offset {
			continue
		}
		if read >= limit {
			truncated = true
			break
		}
		text := scanner.Text()
		if len(text) > maxLineLength {
			text = text[:maxLineLength] + "..."
		}
		sb = append(sb, []byte(fmt.Sprintf("%6d\t%s\n", lineNo, text))...)
		read++
	}
	if err := scanner.Err(); err != nil {
		return ErrorResult("error reading file: " + err.Error())
	}

	out := string(sb)
	if truncated {
		out += fmt.Sprintf("... (truncated after %d lines)\n", read)
	}
	if out == "" {
		out = "(empty file)"
	}
	return Result{Content: out}
}
