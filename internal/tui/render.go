package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// markdownRenderer builds a glamour renderer tuned for inline chat output:
// no document/paragraph margins, word-wrapped to the terminal width.
func markdownRenderer(width int) *glamour.TermRenderer {
	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var compactStyle ansi.StyleConfig
	if lipgloss.HasDarkBackground() {
		compactStyle = styles.DarkStyleConfig
	} else {
		compactStyle = styles.LightStyleConfig
	}

	uintPtr := func(u uint) *uint { return &u }
	compactStyle.Document.Margin = uintPtr(0)
	compactStyle.Paragraph.Margin = uintPtr(0)
	compactStyle.CodeBlock.Margin = uintPtr(0)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStyles(compactStyle),
		glamour.WithWordWrap(wrapWidth),
	)
	return renderer
}

// chatLine is one entry in the scrollback: either a user/assistant message,
// a tool call/result pair, or a UI-only notice.
type chatLine struct {
	kind    lineKind
	text    string
	tool    string
	isError bool
}

type lineKind int

const (
	lineUser lineKind = iota
	lineAssistant
	lineToolCall
	lineToolResult
	lineNotice
	lineError
)

func (m *model) renderChatLine(l chatLine) string {
	switch l.kind {
	case lineUser:
		return userMsgStyle.Render("❯ "+l.text)
	case lineAssistant:
		return assistantMsgStyle.Render(m.renderMarkdown(l.text))
	case lineToolCall:
		return toolCallStyle.Render(fmt.Sprintf("⚡ %s", l.tool))
	case lineToolResult:
		style := toolResultStyle
		if l.isError {
			style = toolErrorStyle
		}
		return style.Render(indent(l.text, "  "))
	case lineNotice:
		return noticeStyle.Render(l.text)
	case lineError:
		return errorStyle.Render(l.text)
	}
	return l.text
}

// renderMarkdown renders assistant text through glamour, falling back to
// the raw text if the width isn't known yet or rendering fails.
func (m *model) renderMarkdown(text string) string {
	if m.width <= 0 {
		return text
	}
	r := markdownRenderer(m.width)
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// renderStatusLine shows the streaming/turn state beneath the input box.
func (m *model) renderStatusLine() string {
	if !m.streaming {
		return ""
	}
	status := thinkingStyle.Render(m.spinner.View() + " thinking...")
	if m.queuedFollowUp != "" {
		status += " " + noticeStyle.Render("queued: "+truncate(m.queuedFollowUp, 60))
	}
	return status
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
