package tui

import "github.com/charmbracelet/lipgloss"

var (
	userMsgStyle      lipgloss.Style
	assistantMsgStyle lipgloss.Style
	inputPromptStyle  lipgloss.Style
	separatorStyle    lipgloss.Style
	thinkingStyle     lipgloss.Style
	noticeStyle       lipgloss.Style
	errorStyle        lipgloss.Style

	toolCallStyle   lipgloss.Style
	toolResultStyle lipgloss.Style
	toolErrorStyle  lipgloss.Style

	promptDescStyle      lipgloss.Style
	promptQuestionStyle  lipgloss.Style
	menuSelectedStyle    lipgloss.Style
	menuUnselectedStyle  lipgloss.Style
	menuHintStyle        lipgloss.Style
	solidSeparatorStyle  lipgloss.Style
	dottedSeparatorStyle lipgloss.Style
)

func init() {
	userMsgStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	assistantMsgStyle = lipgloss.NewStyle().Foreground(CurrentTheme.AI)

	inputPromptStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	separatorStyle = lipgloss.NewStyle().Faint(true).Foreground(CurrentTheme.Separator)
	thinkingStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Accent)
	noticeStyle = lipgloss.NewStyle().Foreground(CurrentTheme.TextDim).PaddingLeft(2)
	errorStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Error)

	toolCallStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Accent)
	toolResultStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	toolErrorStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Error)

	promptDescStyle = lipgloss.NewStyle().Foreground(CurrentTheme.TextDim)
	promptQuestionStyle = lipgloss.NewStyle().Foreground(CurrentTheme.TextDim)
	menuSelectedStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Success).Bold(true)
	menuUnselectedStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	menuHintStyle = lipgloss.NewStyle().Foreground(CurrentTheme.TextDisabled).Italic(true)
	solidSeparatorStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Separator)
	dottedSeparatorStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
}
