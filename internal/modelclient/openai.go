package modelclient

import (
	"time"

	"context"

	"github.com/openai/openai-go/v3"

	"github.com/n1nt3ndon/soloclaw/internal/log"
	"github.com/n1nt3ndon/soloclaw/internal/message"
)

// OpenAIClient implements StreamingClient on top of the Chat Completions
// API. The Responses API (used by the teacher for codex-family models) is
// not wired here: soloclaw targets a single StreamingClient interface per
// provider and Chat Completions covers every model this runtime targets.
type OpenAIClient struct {
	client openai.Client
	name   string
}

// NewOpenAIClient wraps an already-constructed SDK client.
func NewOpenAIClient(client openai.Client, name string) *OpenAIClient {
	return &OpenAIClient{client: client, name: name}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return c.name
}

// CreateMessageStream opens a streamed completion against the Chat
// Completions API.
func (c *OpenAIClient) CreateMessageStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	ch := make(chan StreamEvent, 64)

	go func() {
		defer close(ch)

		messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
		if req.System != "" {
			messages = append(messages, openai.SystemMessage(req.System))
		}
		messages = append(messages, toOpenAIMessages(req.Messages)...)

		params := openai.ChatCompletionNewParams{
			Model:    req.Model,
			Messages: messages,
		}
		if req.MaxTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
		}
		if len(req.Tools) > 0 {
			params.Tools = toOpenAITools(req.Tools)
		}

		log.LogRequest(c.name, req)

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)

		// index -> block index assigned to this tool call in our event stream
		toolIndex := map[int]int{}
		nextBlockIndex := 0
		textBlockOpened := false

		streamStart := time.Now()
		chunkCount := 0

		for stream.Next() {
			chunk := stream.Current()
			chunkCount++

			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					if !textBlockOpened {
						idx := nextBlockIndex
						nextBlockIndex++
						ch <- StreamEvent{Kind: EventContentBlockStart, Index: idx, Block: &BlockStart{Index: idx, Kind: message.BlockText}}
						textBlockOpened = true
					}
					ch <- StreamEvent{Kind: EventContentBlockDelta, Index: 0, Text: choice.Delta.Content}
				}

				for _, tc := range choice.Delta.ToolCalls {
					sdkIdx := int(tc.Index)
					idx, ok := toolIndex[sdkIdx]
					if !ok {
						idx = nextBlockIndex
						nextBlockIndex++
						toolIndex[sdkIdx] = idx
						ch <- StreamEvent{
							Kind:  EventContentBlockStart,
							Index: idx,
							Block: &BlockStart{Index: idx, Kind: message.BlockToolUse, ToolUseID: tc.ID, ToolName: tc.Function.Name},
						}
					}
					if tc.Function.Arguments != "" {
						ch <- StreamEvent{Kind: EventInputJSONDelta, Index: idx, Text: tc.Function.Arguments}
					}
				}
			}

			if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
				ch <- StreamEvent{Kind: EventMessageDelta, Usage: &Usage{
					InputTokens:  int(chunk.Usage.PromptTokens),
					OutputTokens: int(chunk.Usage.CompletionTokens),
				}}
			}
		}

		if textBlockOpened {
			ch <- StreamEvent{Kind: EventContentBlockStop, Index: 0}
		}
		for _, idx := range toolIndex {
			ch <- StreamEvent{Kind: EventContentBlockStop, Index: idx}
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

func toOpenAIMessages(msgs []message.ConversationMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case message.RoleUser:
			out = append(out, openai.UserMessage(m.Text()))

		case message.RoleAssistant:
			uses := m.ToolUseBlocks()
			if len(uses) == 0 {
				out = append(out, openai.AssistantMessage(m.Text()))
				continue
			}
			var asstMsg openai.ChatCompletionAssistantMessageParam
			if text := m.Text(); text != "" {
				asstMsg.Content.OfString = openai.Opt(text)
			}
			asstMsg.ToolCalls = make([]openai.ChatCompletionMessageToolCallUnionParam, len(uses))
			for i, b := range uses {
				asstMsg.ToolCalls[i] = openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: b.ToolUseID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      b.ToolName,
							Arguments: string(b.Input),
						},
					},
				}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asstMsg})

		case message.RoleToolResultGroup:
			for _, r := range m.ToolResults {
				out = append(out, openai.ToolMessage(r.Text, r.ToolCallID))
			}
		}
	}
	return out
}

func toOpenAITools(tools []ToolSchema) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		var funcParams openai.FunctionParameters
		if props, ok := t.InputSchema.(map[string]any); ok {
			funcParams = props
		}
		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        t.Name,
					Description: openai.String(t.Description),
					Parameters:  funcParams,
				},
			},
		})
	}
	return out
}
