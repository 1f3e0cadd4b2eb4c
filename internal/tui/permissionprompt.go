package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/n1nt3ndon/soloclaw/internal/agent"
	"github.com/n1nt3ndon/soloclaw/internal/approval"
)

// PermissionPrompt renders the 3-option approval menu for a pending
// EventToolCallNeedsAsk event: allow once, allow always (shift+tab
// synonym), or deny.
type PermissionPrompt struct {
	active      bool
	toolName    string
	description string
	pattern     string
	responder   agent.Responder
	selectedIdx int // 0=allow once, 1=allow always, 2=deny
}

func NewPermissionPrompt() *PermissionPrompt {
	return &PermissionPrompt{selectedIdx: 0}
}

func (p *PermissionPrompt) Show(toolName, description, pattern string, responder agent.Responder) {
	p.active = true
	p.toolName = toolName
	p.description = description
	p.pattern = pattern
	p.responder = responder
	p.selectedIdx = 0
}

func (p *PermissionPrompt) Hide() {
	p.active = false
	p.responder = nil
}

func (p *PermissionPrompt) IsActive() bool { return p.active }

func (p *PermissionPrompt) respond(decision approval.ApprovalDecision) {
	if p.responder != nil {
		p.responder <- decision
	}
	p.Hide()
}

// HandleKeypress handles keyboard input while the prompt is active. It
// never returns a tea.Cmd: responding happens synchronously over the
// responder channel, which is buffered so this never blocks the UI loop.
func (p *PermissionPrompt) HandleKeypress(msg tea.KeyMsg) {
	if !p.active {
		return
	}

	switch msg.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		if p.selectedIdx > 0 {
			p.selectedIdx--
		}
		return
	case tea.KeyDown, tea.KeyCtrlN:
		if p.selectedIdx < 2 {
			p.selectedIdx++
		}
		return
	case tea.KeyEnter:
		p.confirmSelection()
		return
	case tea.KeyShiftTab:
		p.respond(approval.DecisionAllowAlways)
		return
	case tea.KeyEsc:
		p.respond(approval.DecisionDeny)
		return
	}

	switch msg.String() {
	case "1", "y", "Y":
		p.respond(approval.DecisionAllowOnce)
	case "2":
		p.respond(approval.DecisionAllowAlways)
	case "3", "n", "N":
		p.respond(approval.DecisionDeny)
	}
}

func (p *PermissionPrompt) confirmSelection() {
	switch p.selectedIdx {
	case 0:
		p.respond(approval.DecisionAllowOnce)
	case 1:
		p.respond(approval.DecisionAllowAlways)
	case 2:
		p.respond(approval.DecisionDeny)
	}
}

func (p *PermissionPrompt) Render(width int) string {
	if !p.active {
		return ""
	}

	contentWidth := width - 2
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sb strings.Builder
	sep := strings.Repeat("─", contentWidth)
	sb.WriteString(solidSeparatorStyle.Render(sep))
	sb.WriteString("\n")

	desc := p.description
	if desc == "" {
		desc = p.toolName
	}
	sb.WriteString(" ")
	sb.WriteString(promptDescStyle.Render(desc))
	sb.WriteString("\n")

	dotted := strings.Repeat("╌", contentWidth)
	sb.WriteString(dottedSeparatorStyle.Render(dotted))
	sb.WriteString("\n")

	sb.WriteString(" ")
	sb.WriteString(promptQuestionStyle.Render(fmt.Sprintf("Allow %s to run?", p.toolName)))
	sb.WriteString("\n")
	sb.WriteString(p.renderMenu())
	sb.WriteString(solidSeparatorStyle.Render(sep))

	return sb.String()
}

func (p *PermissionPrompt) renderMenu() string {
	allowAllLabel := "Yes, allow always"
	if p.pattern != "" {
		allowAllLabel = fmt.Sprintf("Yes, always allow %s", p.pattern)
	}

	options := []struct{ label, hint string }{
		{"Yes", ""},
		{allowAllLabel, "(shift+tab)"},
		{"No", ""},
	}

	var sb strings.Builder
	for i, opt := range options {
		if i == p.selectedIdx {
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf(" ❯ %d. %s", i+1, opt.label)))
		} else {
			sb.WriteString(menuUnselectedStyle.Render(fmt.Sprintf("   %d. %s", i+1, opt.label)))
		}
		if opt.hint != "" {
			sb.WriteString(" ")
			sb.WriteString(menuHintStyle.Render(opt.hint))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
