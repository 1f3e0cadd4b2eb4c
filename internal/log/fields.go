package log

import (
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

// contentBlockMarshaler wraps a ContentBlock for zap logging.
type contentBlockMarshaler message.ContentBlock

func (b contentBlockMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(b.Kind))
	switch b.Kind {
	case message.BlockText:
		enc.AddString("text", b.Text)
	case message.BlockToolUse:
		enc.AddString("tool_use_id", b.ToolUseID)
		enc.AddString("tool_name", b.ToolName)
		if len(b.Input) > 0 {
			enc.AddString("input", string(b.Input))
		}
	case message.BlockToolResult:
		enc.AddString("tool_result_id", b.ToolResultID)
		enc.AddBool("is_error", b.IsError)
	}
	return nil
}

type contentBlocksMarshaler []message.ContentBlock

func (bs contentBlocksMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, b := range bs {
		_ = enc.AppendObject(contentBlockMarshaler(b))
	}
	return nil
}

// messageMarshaler wraps a ConversationMessage for zap logging.
type messageMarshaler message.ConversationMessage

func (m messageMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("role", string(m.Role))
	if len(m.Content) > 0 {
		_ = enc.AddArray("content", contentBlocksMarshaler(m.Content))
	}
	for _, r := range m.ToolResults {
		_ = enc.AddObject("tool_result", toolResultMarshaler(r))
	}
	return nil
}

type messagesMarshaler []message.ConversationMessage

func (m messagesMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, msg := range m {
		_ = enc.AppendObject(messageMarshaler(msg))
	}
	return nil
}

// MessagesField creates a zap field for a conversation's messages.
func MessagesField(messages []message.ConversationMessage) zap.Field {
	return zap.Array("messages", messagesMarshaler(messages))
}

// toolMarshaler wraps a ToolSchema for zap logging.
type toolMarshaler modelclient.ToolSchema

func (t toolMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("name", t.Name)
	enc.AddString("description", t.Description)
	if t.InputSchema != nil {
		if paramsJSON, err := json.Marshal(t.InputSchema); err == nil {
			enc.AddString("input_schema", string(paramsJSON))
		}
	}
	return nil
}

type toolsMarshaler []modelclient.ToolSchema

func (t toolsMarshaler) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, tool := range t {
		_ = enc.AppendObject(toolMarshaler(tool))
	}
	return nil
}

// ToolsField creates a zap field for tool schemas.
func ToolsField(tools []modelclient.ToolSchema) zap.Field {
	return zap.Array("tools", toolsMarshaler(tools))
}

// toolResultMarshaler wraps a ToolResultEntry for zap logging.
type toolResultMarshaler message.ToolResultEntry

func (tr toolResultMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("tool_call_id", tr.ToolCallID)
	enc.AddString("text", tr.Text)
	enc.AddBool("is_error", tr.IsError)
	return nil
}

// usageMarshaler wraps Usage for zap logging.
type usageMarshaler modelclient.Usage

func (u usageMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("input_tokens", u.InputTokens)
	enc.AddInt("output_tokens", u.OutputTokens)
	return nil
}

// UsageField creates a zap field for token usage.
func UsageField(usage modelclient.Usage) zap.Field {
	return zap.Object("usage", usageMarshaler(usage))
}
