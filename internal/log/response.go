package log

import (
	"fmt"
	"strings"

	"github.com/n1nt3ndon/soloclaw/internal/message"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
)

// LogResponse logs a collected LLM response in human-readable format and,
// when DEV_DIR is set, writes the raw response as JSON.
func LogResponse(providerName string, resp modelclient.CollectedResponse) {
	turn := CurrentTurn()

	WriteDevResponse(providerName, resp, turn)

	if !enabled {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<<< [%s] in=%d out=%d\n", providerName, resp.Usage.InputTokens, resp.Usage.OutputTokens)

	for _, b := range resp.Content {
		switch b.Kind {
		case message.BlockText:
			if b.Text != "" {
				sb.WriteString("    Content:\n")
				for _, line := range strings.Split(b.Text, "\n") {
					fmt.Fprintf(&sb, "        %s\n", line)
				}
			}
		case message.BlockToolUse:
			fmt.Fprintf(&sb, "    ToolCall: [%s] %s(%s)\n", b.ToolUseID, b.ToolName, escapeForLog(string(b.Input)))
		}
	}

	logger.Info(sb.String())
}

// LogError logs an error in human-readable format.
func LogError(context string, err error) {
	if !enabled {
		return
	}
	logger.Error(fmt.Sprintf("!!! ERROR [%s] %v", context, err))
}
