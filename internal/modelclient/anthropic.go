package modelclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/n1nt3ndon/soloclaw/internal/log"
	"github.com/n1nt3ndon/soloclaw/internal/message"
)

// AnthropicClient implements StreamingClient on top of the Anthropic SDK.
type AnthropicClient struct {
	client anthropic.Client
	name   string
}

// NewAnthropicClient wraps an already-constructed SDK client. name is used
// for logging only (so a Bedrock- or Vertex-backed client can still be
// labeled "anthropic").
func NewAnthropicClient(client anthropic.Client, name string) *AnthropicClient {
	return &AnthropicClient{client: client, name: name}
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return c.name
}

// CreateMessageStream opens a streamed completion against the Anthropic API.
func (c *AnthropicClient) CreateMessageStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	ch := make(chan StreamEvent, 64)

	go func() {
		defer close(ch)

		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(req.Model),
			MaxTokens: int64(req.MaxTokens),
			Messages:  toAnthropicMessages(req.Messages),
		}
		if req.System != "" {
			params.System = []anthropic.TextBlockParam{{Text: req.System}}
		}
		if len(req.Tools) > 0 {
			params.Tools = toAnthropicTools(req.Tools)
		}

		log.LogRequest(c.name, req)

		stream := c.client.Messages.NewStreaming(ctx, params)

		streamStart := time.Now()
		chunkCount := 0

		for stream.Next() {
			event := stream.Current()
			chunkCount++

			switch event.Type {
			case "content_block_start":
				block := event.AsContentBlockStart()
				idx := int(block.Index)
				if block.ContentBlock.Type == "tool_use" {
					ch <- StreamEvent{
						Kind:  EventContentBlockStart,
						Index: idx,
						Block: &BlockStart{
							Index:     idx,
							Kind:      message.BlockToolUse,
							ToolUseID: block.ContentBlock.ID,
							ToolName:  block.ContentBlock.Name,
						},
					}
				} else {
					ch <- StreamEvent{
						Kind:  EventContentBlockStart,
						Index: idx,
						Block: &BlockStart{Index: idx, Kind: message.BlockText},
					}
				}

			case "content_block_delta":
				delta := event.AsContentBlockDelta()
				idx := int(delta.Index)
				switch delta.Delta.Type {
				case "text_delta":
					if delta.Delta.Text != "" {
						ch <- StreamEvent{Kind: EventContentBlockDelta, Index: idx, Text: delta.Delta.Text}
					}
				case "input_json_delta":
					if delta.Delta.PartialJSON != "" {
						ch <- StreamEvent{Kind: EventInputJSONDelta, Index: idx, Text: delta.Delta.PartialJSON}
					}
				}

			case "content_block_stop":
				stop := event.AsContentBlockStop()
				ch <- StreamEvent{Kind: EventContentBlockStop, Index: int(stop.Index)}

			case "message_delta":
				msgDelta := event.AsMessageDelta()
				ch <- StreamEvent{Kind: EventMessageDelta, Usage: &Usage{
					OutputTokens: int(msgDelta.Usage.OutputTokens),
				}}

			case "message_start":
				msgStart := event.AsMessageStart()
				ch <- StreamEvent{Kind: EventMessageDelta, Usage: &Usage{
					InputTokens: int(msgStart.Message.Usage.InputTokens),
				}}
			}
		}

		log.LogStreamDone(c.name, time.Since(streamStart), chunkCount)

		if err := stream.Err(); err != nil {
			log.LogError(c.name, err)
			ch <- StreamEvent{Kind: EventError, Err: err}
			return
		}

		ch <- StreamEvent{Kind: EventTextDone}
		ch <- StreamEvent{Kind: EventMessageStop}
	}()

	return ch, nil
}

func toAnthropicMessages(msgs []message.ConversationMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case message.RoleUser:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
			for _, b := range m.Content {
				if b.Kind == message.BlockText {
					blocks = append(blocks, anthropic.NewTextBlock(b.Text))
				}
			}
			out = append(out, anthropic.NewUserMessage(blocks...))

		case message.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
			for _, b := range m.Content {
				switch b.Kind {
				case message.BlockText:
					if b.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(b.Text))
					}
				case message.BlockToolUse:
					var input any
					if len(b.Input) > 0 {
						if err := json.Unmarshal(b.Input, &input); err != nil {
							input = string(b.Input)
						}
					} else {
						input = map[string]any{}
					}
					blocks = append(blocks, anthropic.NewToolUseBlock(b.ToolUseID, input, b.ToolName))
				}
			}
			out = append(out, anthropic.NewAssistantMessage(blocks...))

		case message.RoleToolResultGroup:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolResults))
			for _, r := range m.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(r.ToolCallID, r.Text, r.IsError))
			}
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

func toAnthropicTools(tools []ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{}
		if props, ok := t.InputSchema.(map[string]any); ok {
			if properties, ok := props["properties"]; ok {
				inputSchema.Properties = properties
			}
			switch required := props["required"].(type) {
			case []string:
				inputSchema.Required = required
			case []any:
				reqStrs := make([]string, 0, len(required))
				for _, r := range required {
					if s, ok := r.(string); ok {
						reqStrs = append(reqStrs, s)
					}
				}
				inputSchema.Required = reqStrs
			}
		}
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: inputSchema,
			},
		})
	}
	return out
}
