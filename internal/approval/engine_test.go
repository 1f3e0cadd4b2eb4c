package approval

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) (*Engine, *Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "approvals.json")
	store := NewStore(path)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	return NewEngine(store), store
}

func TestEngineSafePipelineAutoAllow(t *testing.T) {
	engine, _ := newTestEngine(t)
	input, _ := json.Marshal(map[string]string{"command": "cat file.txt | grep error | wc -l"})
	detail := engine.Check(BashToolName, input)
	if detail.Outcome != OutcomeAllow {
		t.Fatalf("expected Allow, got %+v", detail)
	}
}

func TestEngineUnsafeCommandAllowAlwaysPersists(t *testing.T) {
	engine, store := newTestEngine(t)
	input, _ := json.Marshal(map[string]string{"command": "cargo build"})

	detail := engine.Check(BashToolName, input)
	if detail.Outcome != OutcomeAsk {
		t.Fatalf("expected Ask, got %+v", detail)
	}
	if detail.Pattern == "" {
		t.Fatal("expected a non-empty allowlist pattern")
	}

	if err := engine.Resolve(BashToolName, detail.Pattern, DecisionAllowAlways); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(store.path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsAllowed(BashToolName, detail.Pattern) {
		t.Fatal("expected pattern to be allowed after reload")
	}

	secondEngine := NewEngine(reloaded)
	second := secondEngine.Check(BashToolName, input)
	if second.Outcome != OutcomeAllow {
		t.Fatalf("expected Allow on second check, got %+v", second)
	}
}

func TestEngineDenyEverythingWildcard(t *testing.T) {
	engine, store := newTestEngine(t)
	store.file.Tools[WildcardTool] = &ToolConfig{
		ToolSecurity: ToolSecurity{Security: SecurityDeny, Ask: AskOff, AskFallback: FallbackDeny},
	}

	input, _ := json.Marshal(map[string]string{"path": "/etc/passwd"})
	detail := engine.Check("read_file", input)
	if detail.Outcome != OutcomeDenied {
		t.Fatalf("expected Denied, got %+v", detail)
	}
	if !strings.Contains(strings.ToLower(detail.Reason), "deny") {
		t.Errorf("expected reason to mention deny, got %q", detail.Reason)
	}
}

func TestEngineAllowOnceDoesNotPersist(t *testing.T) {
	engine, store := newTestEngine(t)
	input, _ := json.Marshal(map[string]string{"command": "cargo build"})
	detail := engine.Check(BashToolName, input)
	if detail.Outcome != OutcomeAsk {
		t.Fatalf("expected Ask, got %+v", detail)
	}
	if err := engine.Resolve(BashToolName, detail.Pattern, DecisionAllowOnce); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(store.path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if reloaded.IsAllowed(BashToolName, detail.Pattern) {
		t.Fatal("allow_once must not persist to the allowlist")
	}
}

func TestEngineDescriptionRendering(t *testing.T) {
	engine, store := newTestEngine(t)
	store.file.Defaults = ToolSecurity{Security: SecurityAllowlist, Ask: AskAlways, AskFallback: FallbackDeny}

	input, _ := json.Marshal(map[string]string{"command": "echo hello"})
	detail := engine.Check(BashToolName, input)
	if detail.Outcome != OutcomeAsk {
		t.Fatalf("expected Ask, got %+v", detail)
	}
	want := `bash("echo hello")`
	if detail.Description != want {
		t.Errorf("expected description %q, got %q", want, detail.Description)
	}

	longInput, _ := json.Marshal(map[string]string{"path": strings.Repeat("x", 100)})
	generic := engine.Check("read_file", longInput)
	if generic.Outcome != OutcomeAsk {
		t.Fatalf("expected Ask, got %+v", generic)
	}
	if !strings.HasSuffix(generic.Description, "...") {
		t.Errorf("expected truncated description, got %q", generic.Description)
	}
}
