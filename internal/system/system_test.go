package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveImports(t *testing.T) {
	tmpDir := t.TempDir()

	mainContent := `# Main File
@imported.md
Some content after import`
	importedContent := `## Imported Content
This was imported from another file.`

	os.WriteFile(filepath.Join(tmpDir, "main.md"), []byte(mainContent), 0o644)
	os.WriteFile(filepath.Join(tmpDir, "imported.md"), []byte(importedContent), 0o644)

	seen := make(map[string]bool)
	result := resolveImports(mainContent, tmpDir, 0, seen)

	if !strings.Contains(result, "<!-- Imported: imported.md -->") {
		t.Errorf("expected import comment, got: %s", result)
	}
	if !strings.Contains(result, "This was imported from another file.") {
		t.Errorf("expected imported content, got: %s", result)
	}
	if !strings.Contains(result, "Some content after import") {
		t.Errorf("expected content after import, got: %s", result)
	}
}

func TestResolveImportsCycle(t *testing.T) {
	tmpDir := t.TempDir()

	file1Content := `# File 1
@file2.md`
	file2Content := `# File 2
@file1.md`

	os.WriteFile(filepath.Join(tmpDir, "file1.md"), []byte(file1Content), 0o644)
	os.WriteFile(filepath.Join(tmpDir, "file2.md"), []byte(file2Content), 0o644)

	seen := make(map[string]bool)
	seen[filepath.Join(tmpDir, "file1.md")] = true
	result := resolveImports(file1Content, tmpDir, 0, seen)

	if !strings.Contains(result, "# File 2") {
		t.Errorf("expected file2 content, got: %s", result)
	}
	if !strings.Contains(result, "Skipped (cycle)") {
		t.Errorf("expected cycle skip comment, got: %s", result)
	}
}

func TestResolveImportsNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	content := `# Test
@nonexistent.md`

	seen := make(map[string]bool)
	result := resolveImports(content, tmpDir, 0, seen)

	if !strings.Contains(result, "Import not found") {
		t.Errorf("expected not found comment, got: %s", result)
	}
}

func TestResolveImportsMaxDepth(t *testing.T) {
	content := `@deep.md`
	seen := make(map[string]bool)
	result := resolveImports(content, "/tmp", maxImportDepth, seen)
	if result != content {
		t.Errorf("expected unchanged content at max depth, got: %s", result)
	}
}

func TestResolveImportsNested(t *testing.T) {
	tmpDir := t.TempDir()

	aContent := `# Level A
@b.md
After B import`
	bContent := `## Level B
@c.md
After C import`
	cContent := `### Level C
Deepest content`

	os.WriteFile(filepath.Join(tmpDir, "a.md"), []byte(aContent), 0o644)
	os.WriteFile(filepath.Join(tmpDir, "b.md"), []byte(bContent), 0o644)
	os.WriteFile(filepath.Join(tmpDir, "c.md"), []byte(cContent), 0o644)

	seen := make(map[string]bool)
	result := resolveImports(aContent, tmpDir, 0, seen)

	if !strings.Contains(result, "<!-- Imported: b.md -->") {
		t.Errorf("expected b.md import comment, got: %s", result)
	}
	if !strings.Contains(result, "<!-- Imported: c.md -->") {
		t.Errorf("expected c.md import comment, got: %s", result)
	}
	if !strings.Contains(result, "Deepest content") {
		t.Errorf("expected deepest content, got: %s", result)
	}
}

func TestResolveImportsRelativePath(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	os.MkdirAll(subDir, 0o755)

	mainContent := `# Main
@./subdir/nested.md`
	nestedContent := `## Nested
Nested content here`

	os.WriteFile(filepath.Join(tmpDir, "main.md"), []byte(mainContent), 0o644)
	os.WriteFile(filepath.Join(subDir, "nested.md"), []byte(nestedContent), 0o644)

	seen := make(map[string]bool)
	result := resolveImports(mainContent, tmpDir, 0, seen)

	if !strings.Contains(result, "<!-- Imported: ./subdir/nested.md -->") {
		t.Errorf("expected nested import comment, got: %s", result)
	}
	if !strings.Contains(result, "Nested content here") {
		t.Errorf("expected nested content, got: %s", result)
	}
}

func TestLoadMemoryFilesWithImports(t *testing.T) {
	tmpDir := t.TempDir()
	soloclawDir := filepath.Join(tmpDir, ".soloclaw")
	os.MkdirAll(soloclawDir, 0o755)

	memContent := `# Project Memory
@extra.md
End of memory`
	extraContent := `## Extra Content
This was imported`

	os.WriteFile(filepath.Join(soloclawDir, "SOLOCLAW.md"), []byte(memContent), 0o644)
	os.WriteFile(filepath.Join(soloclawDir, "extra.md"), []byte(extraContent), 0o644)

	files := LoadMemoryFiles(tmpDir)

	var projectFile *MemoryFile
	for i := range files {
		if files[i].Level == "project" && strings.Contains(files[i].Path, "SOLOCLAW.md") {
			projectFile = &files[i]
			break
		}
	}
	if projectFile == nil {
		t.Fatal("expected to find project SOLOCLAW.md file")
	}
	if !strings.Contains(projectFile.Content, "<!-- Imported: extra.md -->") {
		t.Errorf("expected import comment in content, got: %s", projectFile.Content)
	}
	if !strings.Contains(projectFile.Content, "This was imported") {
		t.Errorf("expected imported content, got: %s", projectFile.Content)
	}
}

func TestFindMemoryFile(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.md")
	os.WriteFile(existingFile, []byte("content"), 0o644)

	tests := []struct {
		name     string
		paths    []string
		expected string
	}{
		{"first existing file wins", []string{filepath.Join(tmpDir, "notexist.md"), existingFile}, existingFile},
		{"no files exist", []string{filepath.Join(tmpDir, "a.md"), filepath.Join(tmpDir, "b.md")}, ""},
		{"empty paths", []string{}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := FindMemoryFile(tc.paths)
			if result != tc.expected {
				t.Errorf("FindMemoryFile() = %q, expected %q", result, tc.expected)
			}
		})
	}
}

func TestBuildPromptIncludesEnvAndMemory(t *testing.T) {
	result := BuildPrompt(Config{
		Provider: "anthropic",
		Cwd:      "/work",
		IsGit:    true,
		Memory:   "remember this",
	})
	if !strings.Contains(result, "/work") {
		t.Errorf("expected cwd in prompt, got: %s", result)
	}
	if !strings.Contains(result, "<memory>\nremember this\n</memory>") {
		t.Errorf("expected memory section, got: %s", result)
	}
}
