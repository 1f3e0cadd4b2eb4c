package toolregistry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const maxGlobResults = 100

var ignoredDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".svn":         true,
	".hg":          true,
	"vendor":       true,
	"__pycache__":  true,
	".cache":       true,
	"dist":         true,
	"build":        true,
}

// GlobTool finds files matching a glob pattern, sorted alphabetically by path.
type GlobTool struct{}

func (t *GlobTool) Name() string        { return "glob" }
func (t *GlobTool) Description() string { return "Find files matching a glob pattern (supports **)." }

func (t *GlobTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Glob pattern, e.g. '**/*.go'.",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Base directory to search. Default is the working directory.",
			},
		},
		"required": []string{"pattern"},
	}
}

func (t *GlobTool) Execute(ctx context.Context, params map[string]any, cwd string) Result {
	pattern, ok := params["pattern"].(string)
	if !ok || pattern == "" {
		return ErrorResult("pattern is required")
	}

	base := cwd
	if p, ok := params["path"].(string); ok && p != "" {
		if filepath.IsAbs(p) {
			base = p
		} else {
			base = filepath.Join(cwd, p)
		}
	}

	if _, err := os.Stat(base); err != nil {
		return ErrorResult("path not found: " + base)
	}

	type match struct {
		path string
	}
	var matches []match

	filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			matches = append(matches, match{path: rel})
		}
		return nil
	})

	sort.Slice(matches, func(i, j int) bool { return matches[i].path < matches[j].path })

	truncated := false
	if len(matches) > maxGlobResults {
		matches = matches[:maxGlobResults]
		truncated = true
	}

	if len(matches) == 0 {
		return Result{Content: "(no files found)"}
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.path
	}
	out := strings.Join(paths, "\n")
	if truncated {
		out += "\n... (truncated)"
	}
	return Result{Content: out}
}
