// Package message defines the conversation data model exchanged between the
// agent turn loop, the model client, and the tool registry.
package message

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies which side of the conversation produced a message.
type Role string

const (
	RoleUser            Role = "user"
	RoleAssistant       Role = "assistant"
	RoleToolResultGroup Role = "tool_result_group"
)

// BlockKind discriminates the ContentBlock variants.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
)

// ContentBlock is a tagged union: {text(string) | tool_use(id, name, json_input) | tool_result(id, text, is_error)}.
// Only the fields relevant to Kind are populated; the rest are left zero.
type ContentBlock struct {
	Kind BlockKind `json:"kind"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ToolUseID string          `json:"tool_use_id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolResultID   string `json:"tool_result_id,omitempty"`
	ToolResultText string `json:"tool_result_text,omitempty"`
	IsError        bool   `json:"is_error,omitempty"`
}

// TextBlock constructs a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

// ToolUseBlock constructs a tool_use content block. id must round-trip
// identically into the matching tool-result block.
func ToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Kind: BlockToolUse, ToolUseID: id, ToolName: name, Input: input}
}

// ToolResultBlock constructs a tool_result content block.
func ToolResultBlock(id, text string, isError bool) ContentBlock {
	return ContentBlock{Kind: BlockToolResult, ToolResultID: id, ToolResultText: text, IsError: isError}
}

// ToolResultEntry is one (tool_call_id, text, is_error) triple carried by a
// tool_result_group message.
type ToolResultEntry struct {
	ToolCallID string `json:"tool_call_id"`
	Text       string `json:"text"`
	IsError    bool   `json:"is_error"`
}

// ConversationMessage is a tagged variant {user | assistant | tool_result_group}.
type ConversationMessage struct {
	Role Role `json:"role"`

	// user, assistant
	Content []ContentBlock `json:"content,omitempty"`

	// tool_result_group
	ToolResults []ToolResultEntry `json:"tool_results,omitempty"`
}

// UserMessage builds a user message from plain text.
func UserMessage(text string) ConversationMessage {
	return ConversationMessage{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// AssistantMessage builds an assistant message out of already-finalized
// content blocks (the result of draining a turn's stream).
func AssistantMessage(blocks []ContentBlock) ConversationMessage {
	return ConversationMessage{Role: RoleAssistant, Content: blocks}
}

// ToolResultGroupMessage builds a tool_result_group message.
func ToolResultGroupMessage(entries []ToolResultEntry) ConversationMessage {
	return ConversationMessage{Role: RoleToolResultGroup, ToolResults: entries}
}

// ToolUseBlocks returns every tool_use block in an assistant message's content, in order.
func (m ConversationMessage) ToolUseBlocks() []ContentBlock {
	var out []ContentBlock
	for _, b := range m.Content {
		if b.Kind == BlockToolUse {
			out = append(out, b)
		}
	}
	return out
}

// Text concatenates every text block's content, in order. Useful for
// rendering a quick preview of a message or building compaction summaries.
func (m ConversationMessage) Text() string {
	var sb strings.Builder
	for _, b := range m.Content {
		if b.Kind == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// ParseToolInput decodes a tool_use block's raw JSON input into a generic map.
// An empty input is treated as no parameters rather than an error.
func ParseToolInput(input json.RawMessage) (map[string]any, error) {
	if len(strings.TrimSpace(string(input))) == 0 {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal(input, &params); err != nil {
		return nil, fmt.Errorf("parse tool input: %w", err)
	}
	return params, nil
}

// BuildConversationText renders a transcript as plain text, used when a
// model needs to summarize or compact the conversation so far.
func BuildConversationText(msgs []ConversationMessage) string {
	var sb strings.Builder
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			sb.WriteString("User: ")
			sb.WriteString(m.Text())
			sb.WriteString("\n")
		case RoleAssistant:
			if text := m.Text(); text != "" {
				sb.WriteString("Assistant: ")
				sb.WriteString(text)
				sb.WriteString("\n")
			}
			for _, b := range m.ToolUseBlocks() {
				fmt.Fprintf(&sb, "[Tool Call: %s]\n", b.ToolName)
			}
		case RoleToolResultGroup:
			for _, r := range m.ToolResults {
				content := r.Text
				if len(content) > 500 {
					content = content[:500] + "...[truncated]"
				}
				fmt.Fprintf(&sb, "[Tool Result: %s] %s\n", r.ToolCallID, content)
			}
		}
	}
	return sb.String()
}

// NeedsCompaction reports whether the conversation is close enough to the
// model's input token limit that it should be summarized before the next turn.
func NeedsCompaction(inputTokens, inputLimit int) bool {
	if inputLimit <= 0 || inputTokens <= 0 {
		return false
	}
	return float64(inputTokens) >= 0.95*float64(inputLimit)
}
