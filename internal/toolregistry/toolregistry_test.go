package toolregistry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestReadToolMissingPath(t *testing.T) {
	r := &ReadTool{}
	res := r.Execute(context.Background(), map[string]any{}, t.TempDir())
	if !res.IsError {
		t.Fatalf("expected error for missing path")
	}
}

func TestReadToolReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &ReadTool{}
	res := r.Execute(context.Background(), map[string]any{"path": "a.txt"}, dir)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if res.Content == "" {
		t.Fatal("expected non-empty content")
	}
}

func TestWriteToolCreatesFile(t *testing.T) {
	dir := t.TempDir()
	w := &WriteTool{}
	res := w.Execute(context.Background(), map[string]any{
		"path":    "sub/file.txt",
		"content": "hello",
	}, dir)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	data, err := os.ReadFile(filepath.Join(dir, "sub/file.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

func TestEditToolRequiresUniqueMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	os.WriteFile(path, []byte("foo foo"), 0o644)

	e := &EditTool{}
	res := e.Execute(context.Background(), map[string]any{
		"path":       "a.txt",
		"old_string": "foo",
		"new_string": "bar",
	}, dir)
	if !res.IsError {
		t.Fatal("expected error on non-unique match without replace_all")
	}

	res = e.Execute(context.Background(), map[string]any{
		"path":        "a.txt",
		"old_string":  "foo",
		"new_string":  "bar",
		"replace_all": true,
	}, dir)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "bar bar" {
		t.Fatalf("got %q", data)
	}
}

func TestGlobToolFindsFiles(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte(""), 0o644)
	os.WriteFile(filepath.Join(dir, "b.txt"), []byte(""), 0o644)

	g := &GlobTool{}
	res := g.Execute(context.Background(), map[string]any{"pattern": "*.go"}, dir)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if res.Content != "a.go" {
		t.Fatalf("got %q", res.Content)
	}
}

func TestGrepToolFindsMatches(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello\nworld\n"), 0o644)

	g := &GrepTool{}
	res := g.Execute(context.Background(), map[string]any{"pattern": "wor.d"}, dir)
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if res.Content == "(no matches found)" {
		t.Fatal("expected a match")
	}
}

func TestBashToolRunsCommand(t *testing.T) {
	b := &BashTool{}
	res := b.Execute(context.Background(), map[string]any{"command": "echo hi"}, t.TempDir())
	if res.IsError {
		t.Fatalf("unexpected error: %s", res.Content)
	}
	if res.Content != "hi\n" {
		t.Fatalf("got %q", res.Content)
	}
}

func TestBashToolReportsFailure(t *testing.T) {
	b := &BashTool{}
	res := b.Execute(context.Background(), map[string]any{"command": "exit 3"}, t.TempDir())
	if !res.IsError {
		t.Fatal("expected error result")
	}
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	r := New(t.TempDir())
	res := r.Execute(context.Background(), "does_not_exist", []byte(`{}`))
	if !res.IsError || res.Content != "Tool not found: does_not_exist" {
		t.Fatalf("got %+v", res)
	}
}

func TestRegistryDefinitionsNonEmpty(t *testing.T) {
	r := New(t.TempDir())
	defs := r.Definitions()
	if len(defs) == 0 {
		t.Fatal("expected registered tool definitions")
	}
}
