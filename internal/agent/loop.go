package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/n1nt3ndon/soloclaw/internal/approval"
	"github.com/n1nt3ndon/soloclaw/internal/log"
	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
	"github.com/n1nt3ndon/soloclaw/internal/system"
	"github.com/n1nt3ndon/soloclaw/internal/toolregistry"
)

// DefaultApprovalTimeout is used when Loop.ApprovalTimeout is zero.
const DefaultApprovalTimeout = 120 * time.Second

// ToolExecutor is the registry's execute seam: name -> {content, is_error}.
// A missing tool is the executor's responsibility to report, not the
// loop's; the loop never retries or interprets the result beyond the flag.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, input []byte) toolregistry.Result
}

// Loop drives the conversation: one task, owning the message history,
// consuming UserEvents and producing AgentEvents.
type Loop struct {
	Client   modelclient.StreamingClient
	Tools    ToolExecutor
	ToolDefs []modelclient.ToolSchema
	Approval *approval.Engine

	Model           string
	MaxTokens       int
	System          string
	ApprovalTimeout time.Duration

	// InputTokenLimit is the model's context window, used to decide when to
	// compact history. Zero disables compaction.
	InputTokenLimit int

	messages        []message.ConversationMessage
	lastInputTokens int
}

// New builds a Loop ready to run.
func New(client modelclient.StreamingClient, tools ToolExecutor, defs []modelclient.ToolSchema, eng *approval.Engine, model string, maxTokens int, system string) *Loop {
	return &Loop{
		Client:   client,
		Tools:    tools,
		ToolDefs: defs,
		Approval: eng,
		Model:    model,
		MaxTokens: maxTokens,
		System:   system,
	}
}

// Messages returns the current conversation history. The turn loop owns
// this slice; callers must not mutate it.
func (l *Loop) Messages() []message.ConversationMessage {
	return l.messages
}

func (l *Loop) timeout() time.Duration {
	if l.ApprovalTimeout > 0 {
		return l.ApprovalTimeout
	}
	return DefaultApprovalTimeout
}

// Run is the outer loop: block on in, dispatch Message/Quit, return when
// Quit is received or in is closed.
func (l *Loop) Run(ctx context.Context, in <-chan UserEvent, out chan<- AgentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-in:
			if !ok {
				return
			}
			switch evt.Kind {
			case UserEventQuit:
				return
			case UserEventMessage:
				l.messages = append(l.messages, message.UserMessage(evt.Text))
				l.runTurnsUntilIdle(ctx, out)
			}
		}
	}
}

// runTurnsUntilIdle iterates turns until the model returns no tool calls.
func (l *Loop) runTurnsUntilIdle(ctx context.Context, out chan<- AgentEvent) {
	for {
		toolCalls, err := l.runOneTurn(ctx, out)
		if err != nil {
			return
		}
		l.compactIfNeeded(ctx)
		if len(toolCalls) == 0 {
			return
		}
	}
}

// compactIfNeeded replaces the conversation history with a single summary
// message when the last turn's input-token usage crossed the model's
// context-window threshold. It runs a dedicated, tool-free completion
// against the compact prompt and collects it with modelclient.Collect
// rather than streaming to the UI; a failure leaves history untouched.
func (l *Loop) compactIfNeeded(ctx context.Context) {
	if !message.NeedsCompaction(l.lastInputTokens, l.InputTokenLimit) {
		return
	}

	req := modelclient.Request{
		Model:     l.Model,
		System:    system.CompactPrompt(),
		Messages:  []message.ConversationMessage{message.UserMessage(message.BuildConversationText(l.messages))},
		MaxTokens: compactMaxTokens,
	}

	stream, err := l.Client.CreateMessageStream(ctx, req)
	if err != nil {
		log.LogError("compact conversation", err)
		return
	}
	resp, err := modelclient.Collect(stream)
	if err != nil {
		log.LogError("compact conversation", err)
		return
	}

	summary := strings.TrimSpace(resp.StopText)
	if summary == "" {
		return
	}
	l.messages = []message.ConversationMessage{message.UserMessage("Conversation summary:\n" + summary)}
}

// compactMaxTokens bounds the compaction call's own response, independent
// of the turn loop's regular MaxTokens.
const compactMaxTokens = 2048

// blockState is the in-progress accumulator for one streamed turn.
type blockState struct {
	blocks    []message.ContentBlock
	jsonAccum []string
}

func (s *blockState) ensure(idx int) {
	for len(s.blocks) <= idx {
		s.blocks = append(s.blocks, message.ContentBlock{})
		s.jsonAccum = append(s.jsonAccum, "")
	}
}

// runOneTurn performs step 1-6 of the agent turn loop: it constructs a
// request, streams the response emitting AgentEvents as it goes, appends
// the assistant message, dispatches any tool calls through the approval
// engine, and appends the resulting tool-result group. It returns the
// tool-use blocks dispatched, so the caller knows whether to iterate again.
func (l *Loop) runOneTurn(ctx context.Context, out chan<- AgentEvent) ([]message.ContentBlock, error) {
	req := modelclient.Request{
		Model:     l.Model,
		System:    l.System,
		Messages:  l.messages,
		Tools:     l.ToolDefs,
		MaxTokens: l.MaxTokens,
	}

	stream, err := l.Client.CreateMessageStream(ctx, req)
	if err != nil {
		out <- AgentEvent{Kind: EventError, Message: err.Error()}
		return nil, err
	}

	state := &blockState{}
	stopped := map[int]bool{}

	for ev := range stream {
		switch ev.Kind {
		case modelclient.EventContentBlockStart:
			if ev.Block == nil {
				continue
			}
			state.ensure(ev.Block.Index)
			switch ev.Block.Kind {
			case message.BlockToolUse:
				state.blocks[ev.Block.Index] = message.ToolUseBlock(ev.Block.ToolUseID, ev.Block.ToolName, nil)
				out <- AgentEvent{Kind: EventToolCallStarted, ToolName: ev.Block.ToolName}
			default:
				state.blocks[ev.Block.Index] = message.TextBlock("")
			}
			state.jsonAccum[ev.Block.Index] = ""

		case modelclient.EventContentBlockDelta:
			state.ensure(ev.Index)
			state.blocks[ev.Index].Text += ev.Text
			out <- AgentEvent{Kind: EventTextDelta, Text: ev.Text}

		case modelclient.EventInputJSONDelta:
			state.ensure(ev.Index)
			state.jsonAccum[ev.Index] += ev.Text

		case modelclient.EventContentBlockStop:
			state.ensure(ev.Index)
			stopped[ev.Index] = true
			if state.blocks[ev.Index].Kind == message.BlockToolUse && state.jsonAccum[ev.Index] != "" {
				var raw json.RawMessage
				if err := json.Unmarshal([]byte(state.jsonAccum[ev.Index]), &raw); err == nil {
					state.blocks[ev.Index].Input = raw
				}
			}

		case modelclient.EventMessageDelta:
			if ev.Usage != nil {
				if ev.Usage.InputTokens > 0 {
					l.lastInputTokens = ev.Usage.InputTokens
				}
				out <- AgentEvent{Kind: EventUsage, InputTokens: ev.Usage.InputTokens, OutputTokens: ev.Usage.OutputTokens}
			}

		case modelclient.EventError:
			out <- AgentEvent{Kind: EventError, Message: ev.Err.Error()}
			// Partial content retained: only fully-stopped blocks are kept.
			var completed []message.ContentBlock
			for i, b := range state.blocks {
				if stopped[i] {
					completed = append(completed, b)
				}
			}
			l.appendAssistant(completed)
			return nil, ev.Err
		}
	}

	out <- AgentEvent{Kind: EventTextDone}
	l.appendAssistant(state.blocks)

	toolUses := toolUseBlocks(state.blocks)
	if len(toolUses) == 0 {
		out <- AgentEvent{Kind: EventDone}
		return nil, nil
	}

	results := make([]message.ToolResultEntry, 0, len(toolUses))
	for _, block := range toolUses {
		results = append(results, l.dispatchToolCall(ctx, out, block))
	}
	l.messages = append(l.messages, message.ToolResultGroupMessage(results))

	return toolUses, nil
}

func (l *Loop) appendAssistant(blocks []message.ContentBlock) {
	l.messages = append(l.messages, message.AssistantMessage(blocks))
}

func toolUseBlocks(blocks []message.ContentBlock) []message.ContentBlock {
	var out []message.ContentBlock
	for _, b := range blocks {
		if b.Kind == message.BlockToolUse {
			out = append(out, b)
		}
	}
	return out
}

// dispatchToolCall implements step 5 of the turn loop for a single
// tool-use block: check the approval engine, possibly wait on a
// responder, execute, and return the resulting tool-result entry.
func (l *Loop) dispatchToolCall(ctx context.Context, out chan<- AgentEvent, block message.ContentBlock) message.ToolResultEntry {
	detail := l.Approval.Check(block.ToolName, block.Input)

	switch detail.Outcome {
	case approval.OutcomeAllow:
		out <- AgentEvent{Kind: EventToolCallApproved, ToolName: block.ToolName}
		return l.execute(ctx, out, block)

	case approval.OutcomeDenied:
		out <- AgentEvent{Kind: EventToolCallDenied, ToolName: block.ToolName, Reason: detail.Reason}
		return message.ToolResultEntry{ToolCallID: block.ToolUseID, Text: detail.Reason, IsError: true}

	default: // OutcomeAsk
		responder := make(Responder, 1)
		out <- AgentEvent{
			Kind:        EventToolCallNeedsAsk,
			ToolName:    block.ToolName,
			Description: detail.Description,
			Pattern:     detail.Pattern,
			Responder:   responder,
		}

		select {
		case decision, ok := <-responder:
			if !ok || decision == approval.DecisionDeny {
				reason := "Denied by user"
				out <- AgentEvent{Kind: EventToolCallDenied, ToolName: block.ToolName, Reason: reason}
				return message.ToolResultEntry{ToolCallID: block.ToolUseID, Text: reason, IsError: true}
			}
			if err := l.Approval.Resolve(block.ToolName, detail.Pattern, decision); err != nil {
				log.LogError("approval persist", err)
			}
			out <- AgentEvent{Kind: EventToolCallApproved, ToolName: block.ToolName}
			return l.execute(ctx, out, block)

		case <-time.After(l.timeout()):
			reason := "Approval timed out"
			out <- AgentEvent{Kind: EventToolCallDenied, ToolName: block.ToolName, Reason: reason}
			return message.ToolResultEntry{ToolCallID: block.ToolUseID, Text: reason, IsError: true}
		}
	}
}

func (l *Loop) execute(ctx context.Context, out chan<- AgentEvent, block message.ContentBlock) message.ToolResultEntry {
	input := block.Input
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	res := l.Tools.Execute(ctx, block.ToolName, input)
	out <- AgentEvent{Kind: EventToolResult, ToolName: block.ToolName, Content: res.Content, IsError: res.IsError}
	return message.ToolResultEntry{ToolCallID: block.ToolUseID, Text: res.Content, IsError: res.IsError}
}
