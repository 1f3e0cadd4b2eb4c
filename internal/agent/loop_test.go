package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/n1nt3ndon/soloclaw/internal/approval"
	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
	"github.com/n1nt3ndon/soloclaw/internal/toolregistry"
)

type stubTool struct {
	result toolregistry.Result
	calls  []string
}

func (s *stubTool) Execute(_ context.Context, name string, _ []byte) toolregistry.Result {
	s.calls = append(s.calls, name)
	return s.result
}

func newEngine(t *testing.T) *approval.Engine {
	t.Helper()
	store := approval.NewStore(filepath.Join(t.TempDir(), "approvals.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	return approval.NewEngine(store)
}

func drain(t *testing.T, out <-chan AgentEvent, done <-chan struct{}) []AgentEvent {
	t.Helper()
	var events []AgentEvent
	for {
		select {
		case ev := <-out:
			events = append(events, ev)
		case <-done:
			// Drain whatever is already buffered before returning.
			for {
				select {
				case ev := <-out:
					events = append(events, ev)
				default:
					return events
				}
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for events")
			return nil
		}
	}
}

// TestTurnWithToolUse grounds on spec seed scenario 4.
func TestTurnWithToolUse(t *testing.T) {
	fake := &modelclient.FakeClient{
		Turns: []modelclient.FakeTurn{
			{Blocks: []modelclient.FakeBlock{
				{Kind: message.BlockText, TextDeltas: []string{"hello", " world"}},
				{Kind: message.BlockToolUse, ToolUseID: "t1", ToolName: "read_file", InputJSON: `{"path":"a"}`},
			}},
		},
	}

	tools := &stubTool{result: toolregistry.Result{Content: "file contents"}}
	store := approval.NewStore(filepath.Join(t.TempDir(), "approvals.json"))
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	store.Add("read_file", "read_file") // pre-allowlisted so the call auto-allows
	eng := approval.NewEngine(store)
	loop := New(fake, tools, nil, eng, "test-model", 1024, "")

	in := make(chan UserEvent, 1)
	out := make(chan AgentEvent, 64)
	done := make(chan struct{})

	go func() {
		loop.Run(context.Background(), in, out)
		close(done)
	}()

	in <- MessageEvent("hi")
	close(in)

	events := drain(t, out, done)

	var kinds []AgentEventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}

	want := []AgentEventKind{
		EventTextDelta, EventTextDelta,
		EventToolCallStarted,
		EventTextDone,
		EventToolCallApproved,
		EventToolResult,
		// The loop then calls the model again with the tool result; the fake
		// has no second scripted turn, so it answers with its fallback text.
		EventTextDelta,
		EventTextDone,
		EventDone,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d: got %s want %s (full: %v)", i, kinds[i], want[i], kinds)
		}
	}

	msgs := loop.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected user+assistant+tool_result_group+assistant, got %d messages", len(msgs))
	}
	group := msgs[2]
	if group.Role != message.RoleToolResultGroup || len(group.ToolResults) != 1 || group.ToolResults[0].ToolCallID != "t1" {
		t.Fatalf("unexpected tool result group: %+v", group)
	}
}

// TestApprovalTimeoutDeniesWithoutMutatingAllowlist grounds on seed scenario 5.
func TestApprovalTimeoutDeniesWithoutMutatingAllowlist(t *testing.T) {
	fake := &modelclient.FakeClient{
		Turns: []modelclient.FakeTurn{
			{Blocks: []modelclient.FakeBlock{
				{Kind: message.BlockToolUse, ToolUseID: "t1", ToolName: "bash", InputJSON: `{"command":"rm -rf /tmp/data"}`},
			}},
		},
	}

	tools := &stubTool{result: toolregistry.Result{Content: "should not run"}}
	eng := newEngine(t)
	loop := New(fake, tools, nil, eng, "test-model", 1024, "")
	loop.ApprovalTimeout = 20 * time.Millisecond

	in := make(chan UserEvent, 1)
	out := make(chan AgentEvent, 64)
	done := make(chan struct{})

	go func() {
		loop.Run(context.Background(), in, out)
		close(done)
	}()

	in <- MessageEvent("do it")
	close(in)

	events := drain(t, out, done)
	if len(events) < 3 {
		t.Fatalf("expected at least needs-approval + denied + done, got %v", events)
	}

	last := events[len(events)-1]
	if last.Kind != EventDone {
		t.Fatalf("last event should be Done, got %s", last.Kind)
	}

	var sawDenied bool
	for _, ev := range events {
		if ev.Kind == EventToolCallDenied {
			sawDenied = true
			if ev.Reason == "" {
				t.Fatal("expected a reason on timeout denial")
			}
		}
	}
	if !sawDenied {
		t.Fatal("expected a ToolCallDenied event on timeout")
	}
	if len(tools.calls) != 0 {
		t.Fatal("tool must not execute when approval times out")
	}
	if detail := eng.Check("bash", []byte(`{"command":"rm -rf /tmp/data"}`)); detail.Outcome != approval.OutcomeAsk {
		t.Fatalf("allowlist must be unchanged after a timeout, got %+v", detail)
	}
}

// TestQueuedFollowUpStartsNewTurn grounds on seed scenario 6: a second
// Message sent after Done starts a fresh turn against the fake client.
func TestQueuedFollowUpStartsNewTurn(t *testing.T) {
	fake := &modelclient.FakeClient{
		Turns: []modelclient.FakeTurn{
			{Blocks: []modelclient.FakeBlock{{Kind: message.BlockText, Text: "first"}}},
			{Blocks: []modelclient.FakeBlock{{Kind: message.BlockText, Text: "second"}}},
		},
	}

	eng := newEngine(t)
	loop := New(fake, &stubTool{}, nil, eng, "test-model", 1024, "")

	in := make(chan UserEvent, 2)
	out := make(chan AgentEvent, 64)
	done := make(chan struct{})

	go func() {
		loop.Run(context.Background(), in, out)
		close(done)
	}()

	in <- MessageEvent("A")
	in <- MessageEvent("B")
	close(in)

	drain(t, out, done)

	if len(fake.Calls) != 2 {
		t.Fatalf("expected two model calls, got %d", len(fake.Calls))
	}
}

// TestCompactionReplacesHistoryWhenInputTokensNearLimit grounds on the
// teacher's auto-compact trigger (internal/tui/commands.go's
// shouldAutoCompact): once a turn's reported input tokens reach 95% of the
// configured limit, the next turn starts from a single summary message
// instead of the full transcript.
func TestCompactionReplacesHistoryWhenInputTokensNearLimit(t *testing.T) {
	fake := &modelclient.FakeClient{
		Turns: []modelclient.FakeTurn{
			{
				Blocks: []modelclient.FakeBlock{{Kind: message.BlockText, Text: "ok"}},
				Usage:  &modelclient.Usage{InputTokens: 95, OutputTokens: 5},
			},
			{Blocks: []modelclient.FakeBlock{{Kind: message.BlockText, Text: "summary of the conversation so far"}}},
		},
	}

	eng := newEngine(t)
	loop := New(fake, &stubTool{}, nil, eng, "test-model", 1024, "")
	loop.InputTokenLimit = 100

	in := make(chan UserEvent, 1)
	out := make(chan AgentEvent, 64)
	done := make(chan struct{})

	go func() {
		loop.Run(context.Background(), in, out)
		close(done)
	}()

	in <- MessageEvent("hi")
	close(in)

	drain(t, out, done)

	if len(fake.Calls) != 2 {
		t.Fatalf("expected the turn call plus a compaction call, got %d", len(fake.Calls))
	}
	msgs := loop.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected history replaced by a single summary message, got %d messages", len(msgs))
	}
	if got := msgs[0].Text(); got != "Conversation summary:\nsummary of the conversation so far" {
		t.Errorf("unexpected summary message: %q", got)
	}
}
