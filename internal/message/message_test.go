package message

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserMessage(t *testing.T) {
	msg := UserMessage("hello")
	if msg.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Role)
	}
	if msg.Text() != "hello" {
		t.Errorf("expected content 'hello', got %q", msg.Text())
	}
}

func TestAssistantMessageToolUseBlocks(t *testing.T) {
	blocks := []ContentBlock{
		TextBlock("hello"),
		ToolUseBlock("t1", "read_file", json.RawMessage(`{"path":"a"}`)),
	}
	msg := AssistantMessage(blocks)
	if msg.Role != RoleAssistant {
		t.Errorf("expected role %q, got %q", RoleAssistant, msg.Role)
	}
	if msg.Text() != "hello" {
		t.Errorf("expected text 'hello', got %q", msg.Text())
	}
	uses := msg.ToolUseBlocks()
	if len(uses) != 1 {
		t.Fatalf("expected 1 tool_use block, got %d", len(uses))
	}
	if uses[0].ToolUseID != "t1" || uses[0].ToolName != "read_file" {
		t.Errorf("unexpected tool_use block: %+v", uses[0])
	}
}

func TestToolResultGroupMessage(t *testing.T) {
	msg := ToolResultGroupMessage([]ToolResultEntry{
		{ToolCallID: "t1", Text: "file content", IsError: false},
	})
	if msg.Role != RoleToolResultGroup {
		t.Errorf("expected role %q, got %q", RoleToolResultGroup, msg.Role)
	}
	if len(msg.ToolResults) != 1 || msg.ToolResults[0].Text != "file content" {
		t.Fatalf("unexpected tool results: %+v", msg.ToolResults)
	}
}

func TestRoleStringConversion(t *testing.T) {
	if string(RoleUser) != "user" {
		t.Errorf("RoleUser should be 'user', got %q", RoleUser)
	}
	if string(RoleAssistant) != "assistant" {
		t.Errorf("RoleAssistant should be 'assistant', got %q", RoleAssistant)
	}
	if string(RoleToolResultGroup) != "tool_result_group" {
		t.Errorf("RoleToolResultGroup should be 'tool_result_group', got %q", RoleToolResultGroup)
	}
}

func TestBuildConversationText(t *testing.T) {
	msgs := []ConversationMessage{
		UserMessage("hello"),
		AssistantMessage([]ContentBlock{
			TextBlock("hi there"),
			ToolUseBlock("t1", "Read", json.RawMessage(`{}`)),
		}),
		ToolResultGroupMessage([]ToolResultEntry{
			{ToolCallID: "t1", Text: "file data"},
		}),
	}

	text := BuildConversationText(msgs)
	if !strings.Contains(text, "User: hello") {
		t.Error("expected user message in output")
	}
	if !strings.Contains(text, "Assistant: hi there") {
		t.Error("expected assistant message in output")
	}
	if !strings.Contains(text, "[Tool Call: Read]") {
		t.Error("expected tool call in output")
	}
	if !strings.Contains(text, "[Tool Result: t1] file data") {
		t.Error("expected tool result in output")
	}
}

func TestBuildConversationTextTruncation(t *testing.T) {
	longContent := strings.Repeat("x", 600)
	msgs := []ConversationMessage{
		ToolResultGroupMessage([]ToolResultEntry{
			{ToolCallID: "t1", Text: longContent},
		}),
	}

	text := BuildConversationText(msgs)
	if !strings.Contains(text, "...[truncated]") {
		t.Error("expected truncation marker for long tool result")
	}
}

func TestParseToolInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantLen int
	}{
		{"empty", "", false, 0},
		{"valid", `{"key": "value"}`, false, 1},
		{"invalid", `not json`, true, 0},
		{"whitespace", "  ", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseToolInput(json.RawMessage(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseToolInput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(params) != tt.wantLen {
				t.Errorf("expected %d params, got %d", tt.wantLen, len(params))
			}
		})
	}
}

func TestNeedsCompaction(t *testing.T) {
	tests := []struct {
		name        string
		inputTokens int
		inputLimit  int
		want        bool
	}{
		{"zero limit", 100, 0, false},
		{"zero tokens", 0, 1000, false},
		{"below threshold", 500, 1000, false},
		{"at threshold", 950, 1000, true},
		{"above threshold", 960, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NeedsCompaction(tt.inputTokens, tt.inputLimit)
			if got != tt.want {
				t.Errorf("NeedsCompaction(%d, %d) = %v, want %v", tt.inputTokens, tt.inputLimit, got, tt.want)
			}
		})
	}
}
