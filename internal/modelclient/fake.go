package modelclient

import (
	"context"
	"encoding/json"

	"github.com/n1nt3ndon/soloclaw/internal/message"
)

// FakeBlock scripts one content block of a FakeTurn. For a text block, each
// element of TextDeltas becomes its own ContentBlockDelta event so tests can
// exercise incremental accumulation; if TextDeltas is empty, Text is emitted
// as a single delta.
type FakeBlock struct {
	Kind       message.BlockKind
	Text       string
	TextDeltas []string

	ToolUseID   string
	ToolName    string
	InputJSON   string // raw JSON text, delivered as one or more InputJsonDelta events
	InputChunks []string
}

// FakeTurn scripts one full streamed response.
type FakeTurn struct {
	Blocks []FakeBlock
	Usage  *Usage
	Err    error // when set, the stream emits a single error event and nothing else
}

// FakeClient is a scripted StreamingClient test double. Each call to
// CreateMessageStream pops the next FakeTurn and replays it as a sequence of
// StreamEvents.
type FakeClient struct {
	Turns []FakeTurn

	ModelName    string
	ProviderName string

	// Calls records every request received, in order.
	Calls []Request
}

// CreateMessageStream replays the next scripted turn.
func (f *FakeClient) CreateMessageStream(_ context.Context, req Request) (<-chan StreamEvent, error) {
	f.Calls = append(f.Calls, req)

	turn := f.next()
	ch := make(chan StreamEvent, 16)

	go func() {
		defer close(ch)
		if turn.Err != nil {
			ch <- StreamEvent{Kind: EventError, Err: turn.Err}
			return
		}
		for i, b := range turn.Blocks {
			switch b.Kind {
			case message.BlockToolUse:
				ch <- StreamEvent{
					Kind:  EventContentBlockStart,
					Index: i,
					Block: &BlockStart{Index: i, Kind: message.BlockToolUse, ToolUseID: b.ToolUseID, ToolName: b.ToolName},
				}
				chunks := b.InputChunks
				if len(chunks) == 0 && b.InputJSON != "" {
					chunks = []string{b.InputJSON}
				}
				for _, c := range chunks {
					ch <- StreamEvent{Kind: EventInputJSONDelta, Index: i, Text: c}
				}
			default:
				ch <- StreamEvent{
					Kind:  EventContentBlockStart,
					Index: i,
					Block: &BlockStart{Index: i, Kind: message.BlockText},
				}
				deltas := b.TextDeltas
				if len(deltas) == 0 && b.Text != "" {
					deltas = []string{b.Text}
				}
				for _, d := range deltas {
					ch <- StreamEvent{Kind: EventContentBlockDelta, Index: i, Text: d}
				}
			}
			ch <- StreamEvent{Kind: EventContentBlockStop, Index: i}
		}
		if turn.Usage != nil {
			ch <- StreamEvent{Kind: EventMessageDelta, Usage: turn.Usage}
		}
		ch <- StreamEvent{Kind: EventTextDone}
		ch <- StreamEvent{Kind: EventMessageStop}
	}()

	return ch, nil
}

// Name returns the provider name.
func (f *FakeClient) Name() string {
	if f.ProviderName != "" {
		return f.ProviderName
	}
	return "fake"
}

func (f *FakeClient) next() FakeTurn {
	if len(f.Turns) == 0 {
		return FakeTurn{Blocks: []FakeBlock{{Kind: message.BlockText, Text: "no more responses"}}}
	}
	turn := f.Turns[0]
	f.Turns = f.Turns[1:]
	return turn
}

// ToolUseInput is a convenience for building a FakeBlock's InputJSON from a
// Go value.
func ToolUseInput(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
