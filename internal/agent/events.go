// Package agent implements the turn loop: it drives one model turn at a
// time, dispatches tool calls through the approval engine, and exchanges
// typed events with a UI over bounded channels.
package agent

import "github.com/n1nt3ndon/soloclaw/internal/approval"

// UserEventKind discriminates UserEvent variants.
type UserEventKind string

const (
	UserEventMessage UserEventKind = "message"
	UserEventQuit    UserEventKind = "quit"
)

// UserEvent flows from the UI to the turn loop.
type UserEvent struct {
	Kind UserEventKind
	Text string
}

// MessageEvent builds a UserEvent carrying a new user message.
func MessageEvent(text string) UserEvent {
	return UserEvent{Kind: UserEventMessage, Text: text}
}

// QuitEvent builds a UserEvent requesting shutdown.
func QuitEvent() UserEvent {
	return UserEvent{Kind: UserEventQuit}
}

// AgentEventKind discriminates AgentEvent variants.
type AgentEventKind string

const (
	EventTextDelta          AgentEventKind = "text_delta"
	EventTextDone           AgentEventKind = "text_done"
	EventToolCallStarted    AgentEventKind = "tool_call_started"
	EventToolCallApproved   AgentEventKind = "tool_call_approved"
	EventToolCallDenied     AgentEventKind = "tool_call_denied"
	EventToolCallNeedsAsk   AgentEventKind = "tool_call_needs_approval"
	EventToolResult         AgentEventKind = "tool_result"
	EventUsage              AgentEventKind = "usage"
	EventError              AgentEventKind = "error"
	EventDone               AgentEventKind = "done"
)

// Responder is the single-use reply channel the UI fulfills with exactly
// one ApprovalDecision, or drops (treated identically to deny).
type Responder chan approval.ApprovalDecision

// AgentEvent flows from the turn loop to the UI.
type AgentEvent struct {
	Kind AgentEventKind

	Text string // TextDelta

	ToolName      string // ToolCallStarted/Approved/Denied/NeedsAsk/ToolResult
	ParamsSummary string // ToolCallStarted
	Reason        string // ToolCallDenied
	Description   string // ToolCallNeedsApproval
	Pattern       string // ToolCallNeedsApproval, empty if none
	Responder     Responder

	Content string // ToolResult
	IsError bool   // ToolResult

	InputTokens  int // Usage
	OutputTokens int // Usage

	Message string // Error
}
