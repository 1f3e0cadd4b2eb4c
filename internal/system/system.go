// Package system assembles the system prompt handed to the turn loop at
// startup: a fixed identity/tools section, a dynamic environment block, and
// optional project memory.
package system

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

const maxImportDepth = 5

//go:embed prompts/*.txt
var promptFS embed.FS

// Config holds the inputs BuildPrompt needs to assemble a prompt.
type Config struct {
	Provider string // model client name, e.g. "anthropic", "openai"
	Model    string
	Cwd      string
	IsGit    bool
	Memory   string   // pre-loaded project memory; empty means none
	Extra    []string // appended verbatim, e.g. Settings.SystemPromptExtra
}

// System holds the pieces needed to (re)build the prompt for a running
// loop without threading Config through every call site.
type System struct {
	Client modelclient.StreamingClient
	Cwd    string
	IsGit  bool
	Extra  []string
	Memory string // pre-loaded; if empty, loaded from disk on Prompt()
}

// Prompt builds the complete system prompt from the System's fields.
func (s *System) Prompt() string {
	model := ""
	name := ""
	if s.Client != nil {
		name = s.Client.Name()
	}
	memory := s.Memory
	if memory == "" {
		memory = LoadMemory(s.Cwd)
	}
	return BuildPrompt(Config{
		Provider: name,
		Model:    model,
		Cwd:      s.Cwd,
		IsGit:    s.IsGit,
		Memory:   memory,
		Extra:    s.Extra,
	})
}

// BuildPrompt assembles base + tools + provider/generic + env, then
// appends memory and any Extra sections.
func BuildPrompt(cfg Config) string {
	parts := []string{
		load("base.txt"),
		load("tools.txt"),
		providerOrGeneric(cfg.Provider),
		formatEnv(cfg),
	}

	if cfg.Memory != "" {
		parts = append(parts, formatMemory(cfg.Memory))
	}
	parts = append(parts, cfg.Extra...)

	return join(parts)
}

func load(name string) string {
	data, err := promptFS.ReadFile("prompts/" + name)
	if err != nil {
		return ""
	}
	return string(data)
}

// providerOrGeneric returns a provider-specific prompt section if one is
// embedded for it, falling back to generic.txt.
func providerOrGeneric(provider string) string {
	if provider == "" {
		return load("generic.txt")
	}
	data, err := promptFS.ReadFile("prompts/" + provider + ".txt")
	if err != nil {
		return load("generic.txt")
	}
	return string(data)
}

func formatEnv(cfg Config) string {
	gitStatus := "No"
	if cfg.IsGit {
		gitStatus = "Yes"
	}
	return fmt.Sprintf(`<env>
Working directory: %s
Is git repo: %s
Platform: %s
Date: %s
</env>`, cfg.Cwd, gitStatus, runtime.GOOS, time.Now().Format("2006-01-02"))
}

func formatMemory(m string) string {
	return "<memory>\n" + m + "\n</memory>"
}

func join(parts []string) string {
	var filtered []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, "\n\n")
}

// MemoryFile is one loaded memory source with its resolution metadata.
type MemoryFile struct {
	Path    string
	Size    int64
	Content string
	Level   string // "global", "project", or "local"
}

// LoadMemory concatenates every memory file found for cwd, in priority
// order: global, project, local. Preferred filename is SOLOCLAW.md, falling
// back to CLAUDE.md for compatibility with the wider ecosystem.
func LoadMemory(cwd string) string {
	files := LoadMemoryFiles(cwd)
	if len(files) == 0 {
		return ""
	}
	var parts []string
	for _, f := range files {
		parts = append(parts, f.Content)
	}
	return strings.Join(parts, "\n\n")
}

// LoadMemoryFiles loads all memory files with metadata, resolving @import
// directives within each. Returns files in order: global, project, local.
func LoadMemoryFiles(cwd string) []MemoryFile {
	var files []MemoryFile
	homeDir, _ := os.UserHomeDir()
	seen := make(map[string]bool)

	userSources := []string{
		filepath.Join(homeDir, ".soloclaw", "SOLOCLAW.md"),
		filepath.Join(homeDir, ".claude", "CLAUDE.md"),
	}
	if f := loadMemoryFile(userSources, "global", seen); f != nil {
		files = append(files, *f)
	}

	projectSources := []string{
		filepath.Join(cwd, ".soloclaw", "SOLOCLAW.md"),
		filepath.Join(cwd, "SOLOCLAW.md"),
		filepath.Join(cwd, "CLAUDE.md"),
	}
	if f := loadMemoryFile(projectSources, "project", seen); f != nil {
		files = append(files, *f)
	}

	localSources := []string{filepath.Join(cwd, ".soloclaw", "SOLOCLAW.local.md")}
	if f := loadMemoryFile(localSources, "local", seen); f != nil {
		files = append(files, *f)
	}

	return files
}

func loadMemoryFile(sources []string, level string, seen map[string]bool) *MemoryFile {
	for _, src := range sources {
		info, err := os.Stat(src)
		if err != nil || seen[src] {
			continue
		}
		data, err := os.ReadFile(src)
		if err != nil {
			continue
		}
		content := strings.TrimSpace(string(data))
		if content == "" {
			continue
		}
		seen[src] = true
		content = resolveImports(content, filepath.Dir(src), 0, seen)
		return &MemoryFile{
			Path:    src,
			Size:    info.Size(),
			Content: fmt.Sprintf("<!-- Source: %s -->\n%s", src, content),
			Level:   level,
		}
	}
	return nil
}

var importRe = regexp.MustCompile(`(?m)^@([^\s@]+\.md)\s*$`)

// resolveImports expands @path/to/file.md references within content,
// relative to basePath, up to maxImportDepth, skipping cycles.
func resolveImports(content, basePath string, depth int, seen map[string]bool) string {
	if depth >= maxImportDepth {
		return content
	}
	return importRe.ReplaceAllStringFunc(content, func(match string) string {
		importPath := strings.TrimPrefix(strings.TrimSpace(match), "@")
		fullPath := filepath.Clean(filepath.Join(basePath, importPath))

		if seen[fullPath] {
			return fmt.Sprintf("<!-- Skipped (cycle): @%s -->", importPath)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Sprintf("<!-- Import not found: @%s -->", importPath)
		}
		seen[fullPath] = true
		imported := resolveImports(strings.TrimSpace(string(data)), filepath.Dir(fullPath), depth+1, seen)
		return fmt.Sprintf("<!-- Imported: %s -->\n%s", importPath, imported)
	})
}

// CompactPrompt returns the instructions used when summarizing history
// ahead of a compaction.
func CompactPrompt() string {
	return load("compact.txt")
}

// FindMemoryFile returns the first existing path, or "" if none exist.
func FindMemoryFile(paths []string) string {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ListRulesFiles returns the sorted .md files in dir, or nil if dir
// doesn't exist.
func ListRulesFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files
}
