package toolregistry

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	maxGrepMatches = 50
	maxGrepFiles   = 500
)

// GrepTool searches file contents with a regular expression.
type GrepTool struct{}

func (t *GrepTool) Name() string        { return "grep" }
func (t *GrepTool) Description() string { return "Search file contents for a regular expression." }

func (t *GrepTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Regular expression to search for.",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "File or directory to search. Default is the working directory.",
			},
			"include": map[string]any{
				"type":        "string",
				"description": "Glob of filenames to include, e.g. '*.go'.",
			},
		},
		"required": []string{"pattern"},
	}
}

func (t *GrepTool) Execute(ctx context.Context, params map[string]any, cwd string) Result {
	pattern, ok := params["pattern"].(string)
	if !ok || pattern == "" {
		return ErrorResult("pattern is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ErrorResult("invalid pattern: " + err.Error())
	}

	base := cwd
	if p, ok := params["path"].(string); ok && p != "" {
		if filepath.IsAbs(p) {
			base = p
		} else {
			base = filepath.Join(cwd, p)
		}
	}
	include, _ := params["include"].(string)

	info, err := os.Stat(base)
	if err != nil {
		return ErrorResult("path not found: " + base)
	}

	var lines []string
	filesSearched := 0

	searchFile := func(path, rel string) error {
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		for _, b := range buf[:n] {
			if b == 0 {
				return nil
			}
		}
		f.Seek(0, 0)

		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			text := scanner.Text()
			if re.MatchString(text) {
				if len(text) > maxLineLength {
					text = text[:maxLineLength] + "..."
				}
				lines = append(lines, fmt.Sprintf("%s:%d: %s", rel, lineNo, strings.TrimSpace(text)))
				if len(lines) >= maxGrepMatches {
					return filepath.SkipAll
				}
			}
		}
		return nil
	}

	if !info.IsDir() {
		searchFile(base, filepath.Base(base))
	} else {
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
			if include != "" {
				if ok, _ := filepath.Match(include, d.Name()); !ok {
					return nil
				}
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				rel = path
			}
			filesSearched++
			if filesSearched > maxGrepFiles {
				return filepath.SkipAll
			}
			return searchFile(path, rel)
		})
	}

	if len(lines) == 0 {
		return Result{Content: "(no matches found)"}
	}
	out := strings.Join(lines, "\n")
	if len(lines) >= maxGrepMatches {
		out += "\n... (truncated)"
	}
	return Result{Content: out}
}
