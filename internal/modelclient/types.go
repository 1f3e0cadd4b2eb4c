// Package modelclient defines the streaming model-client seam the agent
// turn loop consumes, plus concrete Anthropic and OpenAI implementations and
// a scripted fake for tests.
package modelclient

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/n1nt3ndon/soloclaw/internal/message"
)

// EventKind discriminates the StreamEvent variants a model client emits.
type EventKind string

const (
	EventContentBlockStart EventKind = "content_block_start"
	EventContentBlockDelta EventKind = "content_block_delta"
	EventInputJSONDelta    EventKind = "input_json_delta"
	EventContentBlockStop  EventKind = "content_block_stop"
	EventMessageDelta      EventKind = "message_delta"
	EventTextDone          EventKind = "text_done"
	EventMessageStop       EventKind = "message_stop"
	EventError             EventKind = "error"
)

// BlockStart describes the block a ContentBlockStart event is opening.
type BlockStart struct {
	Index     int
	Kind      message.BlockKind // BlockText or BlockToolUse
	ToolUseID string
	ToolName  string
}

// Usage reports token counts, carried on a MessageDelta event.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// StreamEvent is one item of a model client's response stream. Only the
// fields relevant to Kind are populated. Event kinds the turn loop does not
// recognize are ignored by design; new kinds can be added without breaking
// existing consumers.
type StreamEvent struct {
	Kind  EventKind
	Index int

	Block *BlockStart // content_block_start
	Text  string      // content_block_delta, input_json_delta
	Usage *Usage      // message_delta
	Err   error       // error
}

// ToolSchema is a tool definition as handed to the model: name, description,
// and a JSON Schema for its input.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema any
}

// Request is one turn's completion request.
type Request struct {
	Model     string
	System    string
	Messages  []message.ConversationMessage
	Tools     []ToolSchema
	MaxTokens int
}

// StreamingClient turns a Request into a stream of typed events.
type StreamingClient interface {
	// CreateMessageStream opens a streamed completion. The returned channel
	// is closed when the stream ends (successfully or with an error event
	// already delivered).
	CreateMessageStream(ctx context.Context, req Request) (<-chan StreamEvent, error)

	// Name identifies the underlying provider, for logging.
	Name() string
}

// defaultInputTokenLimits gives the compaction threshold a sensible default
// per model family when the caller hasn't set one explicitly, grounded on
// the teacher's per-model InputTokenLimit (there fetched from the
// provider's model catalog; here a fixed table, since this runtime has no
// catalog cache to consult).
var defaultInputTokenLimits = []struct {
	prefix string
	limit  int
}{
	{"claude-", 200000},
	{"gpt-", 128000},
	{"o1", 200000},
	{"o3", 200000},
}

// DefaultInputTokenLimit looks up a model's context window by name prefix.
// Zero means unknown, which callers treat as "compaction disabled."
func DefaultInputTokenLimit(model string) int {
	for _, entry := range defaultInputTokenLimits {
		if strings.HasPrefix(model, entry.prefix) {
			return entry.limit
		}
	}
	return 0
}

// CollectedResponse accumulates a full, non-streamed response out of a
// stream of events, for any caller needing a synchronous completion
// (e.g. conversation compaction).
type CollectedResponse struct {
	Content   []message.ContentBlock
	StopText  string
	Usage     Usage
}

// Collect drains ch into a CollectedResponse, applying the same
// accumulation rules as the turn loop: content blocks are opened on
// ContentBlockStart, text/JSON deltas are appended to the open block, and
// ContentBlockStop finalizes a tool_use block's JSON input.
func Collect(ch <-chan StreamEvent) (CollectedResponse, error) {
	var resp CollectedResponse
	var blocks []message.ContentBlock
	var jsonAccum []string

	ensure := func(idx int) {
		for len(blocks) <= idx {
			blocks = append(blocks, message.ContentBlock{})
			jsonAccum = append(jsonAccum, "")
		}
	}

	for ev := range ch {
		switch ev.Kind {
		case EventContentBlockStart:
			if ev.Block == nil {
				continue
			}
			ensure(ev.Block.Index)
			switch ev.Block.Kind {
			case message.BlockToolUse:
				blocks[ev.Block.Index] = message.ToolUseBlock(ev.Block.ToolUseID, ev.Block.ToolName, nil)
			default:
				blocks[ev.Block.Index] = message.TextBlock("")
			}
			jsonAccum[ev.Block.Index] = ""
		case EventContentBlockDelta:
			ensure(ev.Index)
			blocks[ev.Index].Text += ev.Text
			resp.StopText += ev.Text
		case EventInputJSONDelta:
			ensure(ev.Index)
			jsonAccum[ev.Index] += ev.Text
		case EventContentBlockStop:
			ensure(ev.Index)
			if blocks[ev.Index].Kind == message.BlockToolUse && jsonAccum[ev.Index] != "" {
				var raw json.RawMessage
				if err := json.Unmarshal([]byte(jsonAccum[ev.Index]), &raw); err == nil {
					blocks[ev.Index].Input = raw
				}
			}
		case EventMessageDelta:
			if ev.Usage != nil {
				resp.Usage = *ev.Usage
			}
		case EventError:
			return resp, ev.Err
		}
	}

	resp.Content = blocks
	return resp, nil
}
