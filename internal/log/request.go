package log

import (
	"fmt"
	"strings"

	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

// LogRequest logs an LLM request in human-readable format and, when DEV_DIR
// is set, writes the raw request as JSON for offline inspection.
func LogRequest(providerName string, req modelclient.Request) {
	turn := NextTurn()

	WriteDevRequest(providerName, req, turn)

	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "───────────────────────────────────────── Turn %d ─────────────────────────────────────────\n", turn)
	fmt.Fprintf(&sb, ">>> [%s] %s | max_tokens=%d\n", providerName, req.Model, req.MaxTokens)

	if req.System != "" {
		fmt.Fprintf(&sb, "    System: %s\n", escapeForLog(req.System))
	}

	if len(req.Tools) > 0 {
		toolNames := make([]string, len(req.Tools))
		for i, t := range req.Tools {
			toolNames[i] = t.Name
		}
		fmt.Fprintf(&sb, "    Tools(%d): [%s]\n", len(req.Tools), strings.Join(toolNames, ", "))
	}

	fmt.Fprintf(&sb, "    Messages(%d):\n", len(req.Messages))
	for i, msg := range req.Messages {
		switch msg.Role {
		case message.RoleUser:
			if text := msg.Text(); text != "" {
				fmt.Fprintf(&sb, "      [%d] User: %s\n", i, escapeForLog(text))
			}
		case message.RoleAssistant:
			if text := msg.Text(); text != "" {
				fmt.Fprintf(&sb, "      [%d] Assistant: %s\n", i, escapeForLog(text))
			}
			for _, b := range msg.ToolUseBlocks() {
				fmt.Fprintf(&sb, "      [%d] ToolCall: %s(%s)\n", i, b.ToolName, escapeForLog(string(b.Input)))
			}
		case message.RoleToolResultGroup:
			for _, r := range msg.ToolResults {
				if r.IsError {
					fmt.Fprintf(&sb, "      [%d] ToolResult[%s] ERROR: %s\n", i, r.ToolCallID, escapeForLog(r.Text))
				} else {
					fmt.Fprintf(&sb, "      [%d] ToolResult[%s]: %s\n", i, r.ToolCallID, escapeForLog(r.Text))
				}
			}
		}
	}

	logger.Info(sb.String())
}
