package toolregistry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// EditTool performs a string-replacement edit on an existing file.
type EditTool struct{}

func (t *EditTool) Name() string        { return "edit_file" }
func (t *EditTool) Description() string { return "Edit a file by replacing an exact string match." }

func (t *EditTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file to edit.",
			},
			"old_string": map[string]any{
				"type":        "string",
				"description": "Text to replace. Must be unique in the file unless replace_all is set.",
			},
			"new_string": map[string]any{
				"type":        "string",
				"description": "Replacement text.",
			},
			"replace_all": map[string]any{
				"type":        "boolean",
				"description": "Replace every occurrence instead of requiring uniqueness.",
			},
		},
		"required": []string{"path", "old_string", "new_string"},
	}
}

func (t *EditTool) Execute(ctx context.Context, params map[string]any, cwd string) Result {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return ErrorResult("path is required")
	}
	oldString, ok := params["old_string"].(string)
	if !ok {
		return ErrorResult("old_string is required")
	}
	newString, ok := params["new_string"].(string)
	if !ok {
		return ErrorResult("new_string is required")
	}
	replaceAll, _ := params["replace_all"].(bool)

	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrorResult("file not found: " + path)
		}
		return ErrorResult("failed to read file: " + err.Error())
	}
	original := string(content)

	count := strings.Count(original, oldString)
	if count == 0 {
		return ErrorResult("old_string not found in file")
	}
	if !replaceAll && count > 1 {
		return ErrorResult(fmt.Sprintf("old_string is not unique in file (found %d occurrences); set replace_all to replace all", count))
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(original, oldString, newString)
	} else {
		updated = strings.Replace(original, oldString, newString, 1)
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return ErrorResult("failed to write file: " + err.Error())
	}

	replaced := 1
	if replaceAll {
		replaced = count
	}
	return Result{Content: fmt.Sprintf("Edited %s (%d replacement(s))\n%s", path, replaced, unifiedDiff(path, original, updated))}
}

// unifiedDiff renders a compact unified diff between old and new file
// content using the myers algorithm; Execute appends it to the result.
func unifiedDiff(path, oldContent, newContent string) string {
	edits := myers.ComputeEdits(span.URIFromPath(path), oldContent, newContent)
	return fmt.Sprint(gotextdiff.ToUnified(path, path, oldContent, edits))
}
