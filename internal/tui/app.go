// Package tui implements the terminal UI: the user-facing half of the
// event protocol that drives internal/agent.Loop. It owns the chat log,
// the input buffer, and the pending-approval dialog, and exchanges
// UserEvent/AgentEvent over the loop's bounded channels — it never touches
// the loop's message history directly.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n1nt3ndon/soloclaw/internal/agent"
	"github.com/n1nt3ndon/soloclaw/internal/approval"
	"github.com/n1nt3ndon/soloclaw/internal/config"
	"github.com/n1nt3ndon/soloclaw/internal/log"
	"github.com/n1nt3ndon/soloclaw/internal/modelclient"
	"github.com/n1nt3ndon/soloclaw/internal/system"
	"github.com/n1nt3ndon/soloclaw/internal/toolregistry"
)

// userEventBuffer and agentEventBuffer are the bounded-channel sizes the
// turn loop and UI task communicate over.
const (
	userEventBuffer  = 16
	agentEventBuffer = 256
)

// Options configures a Run.
type Options struct {
	Client          modelclient.StreamingClient
	Model           string
	MaxTokens       int
	InputTokenLimit int
	Cwd             string
	Settings        *config.Settings
}

type model struct {
	textarea textarea.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool

	chatLines      []chatLine
	committedCount int
	streamBuf      strings.Builder

	streaming      bool
	queuedFollowUp string

	lastInputTokens  int
	lastOutputTokens int

	permissionPrompt *PermissionPrompt

	in  chan agent.UserEvent
	out chan agent.AgentEvent

	cancel context.CancelFunc
}

type agentEventMsg agent.AgentEvent
type agentDoneMsg struct{}

// Run wires a Loop to a fresh TUI and blocks until the program exits.
func Run(opts Options) error {
	cwd := opts.Cwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	settings := opts.Settings
	if settings == nil {
		settings = config.NewSettings()
	}

	approvalsPath := settings.ApprovalsPath
	if approvalsPath == "" {
		home, _ := os.UserHomeDir()
		approvalsPath = home + "/.soloclaw/approvals.json"
	}
	store := approval.NewStore(approvalsPath)
	if err := store.Load(); err != nil {
		log.LogError("load approvals", err)
	}
	engine := approval.NewEngine(store)

	registry := toolregistry.New(cwd)

	sys := &system.System{Client: opts.Client, Cwd: cwd, IsGit: isGitRepo(cwd)}
	if settings.SystemPromptExtra != "" {
		sys.Extra = []string{settings.SystemPromptExtra}
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	loop := agent.New(opts.Client, registry, registry.Definitions(), engine, opts.Model, maxTokens, sys.Prompt())
	if settings.ApprovalTimeout > 0 {
		loop.ApprovalTimeout = settings.ApprovalTimeout
	}
	loop.InputTokenLimit = opts.InputTokenLimit

	m := newModel(loop)
	p := tea.NewProgram(m)
	_, err := p.Run()
	return err
}

func newModel(loop *agent.Loop) model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Focus()
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetWidth(defaultWidth)
	ta.SetHeight(minTextareaHeight)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	ta.KeyMap.InsertNewline.SetEnabled(true)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		FPS:    80 * time.Millisecond,
	}
	sp.Style = thinkingStyle

	in := make(chan agent.UserEvent, userEventBuffer)
	out := make(chan agent.AgentEvent, agentEventBuffer)

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx, in, out)

	return model{
		textarea:         ta,
		spinner:          sp,
		permissionPrompt: NewPermissionPrompt(),
		in:               in,
		out:              out,
		cancel:           cancel,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, waitForAgentEvent(m.out))
}

// waitForAgentEvent blocks on the loop's out channel; a closed channel
// means the loop exited and the UI should stop polling.
func waitForAgentEvent(out <-chan agent.AgentEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-out
		if !ok {
			return agentDoneMsg{}
		}
		return agentEventMsg(ev)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.textarea.SetWidth(msg.Width - 2)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeypress(msg)

	case agentEventMsg:
		m.applyAgentEvent(agent.AgentEvent(msg))
		cmds := m.commitLines()
		cmds = append(cmds, waitForAgentEvent(m.out))
		return m, tea.Batch(cmds...)

	case agentDoneMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.permissionPrompt.IsActive() {
		m.permissionPrompt.HandleKeypress(msg)
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancel()
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" {
			return m, nil
		}
		m.textarea.Reset()

		if text == "/quit" {
			select {
			case m.in <- agent.QuitEvent():
			default:
			}
			m.cancel()
			return m, tea.Quit
		}

		m.chatLines = append(m.chatLines, chatLine{kind: lineUser, text: text})
		if m.streaming {
			m.queuedFollowUp = text
		} else {
			m.streaming = true
			in := m.in
			go func() { in <- agent.MessageEvent(text) }()
		}
		return m, tea.Batch(m.commitLines()...)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// applyAgentEvent folds one AgentEvent into chat state. It never blocks:
// the permission-ask branch stores the loop's buffered Responder in the
// prompt and returns immediately, letting the UI render the prompt and respond on the
// next keypress.
func (m *model) applyAgentEvent(ev agent.AgentEvent) {
	switch ev.Kind {
	case agent.EventTextDelta:
		m.streamBuf.WriteString(ev.Text)

	case agent.EventTextDone:
		if text := strings.TrimSpace(m.streamBuf.String()); text != "" {
			m.chatLines = append(m.chatLines, chatLine{kind: lineAssistant, text: text})
		}
		m.streamBuf.Reset()

	case agent.EventToolCallStarted:
		m.chatLines = append(m.chatLines, chatLine{kind: lineToolCall, tool: ev.ToolName})

	case agent.EventToolCallNeedsAsk:
		m.streaming = false
		m.permissionPrompt.Show(ev.ToolName, ev.Description, ev.Pattern, ev.Responder)

	case agent.EventToolCallApproved:
		m.streaming = true

	case agent.EventToolCallDenied:
		m.chatLines = append(m.chatLines, chatLine{kind: lineToolResult, tool: ev.ToolName, text: "Denied: " + ev.Reason, isError: true})

	case agent.EventToolResult:
		m.chatLines = append(m.chatLines, chatLine{kind: lineToolResult, tool: ev.ToolName, text: ev.Content, isError: ev.IsError})

	case agent.EventUsage:
		m.lastInputTokens = ev.InputTokens
		m.lastOutputTokens = ev.OutputTokens

	case agent.EventError:
		m.chatLines = append(m.chatLines, chatLine{kind: lineError, text: ev.Message})
		m.streaming = false

	case agent.EventDone:
		m.streaming = false
		if m.queuedFollowUp != "" {
			text := m.queuedFollowUp
			m.queuedFollowUp = ""
			m.streaming = true
			in := m.in
			go func() { in <- agent.MessageEvent(text) }()
		}
	}
}

// commitLines pushes every chat line added since the last commit into the
// terminal's real scrollback via tea.Println, the way the teacher's TUI
// commits finished messages instead of redrawing the whole transcript
// every frame. The in-progress streamBuf is never committed this way; it
// lives in the managed region rendered by View until EventTextDone.
func (m *model) commitLines() []tea.Cmd {
	var cmds []tea.Cmd
	for i := m.committedCount; i < len(m.chatLines); i++ {
		cmds = append(cmds, tea.Println(m.renderChatLine(m.chatLines[i])))
	}
	m.committedCount = len(m.chatLines)
	return cmds
}

func (m model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	var sb strings.Builder
	if m.streamBuf.Len() > 0 {
		sb.WriteString(assistantMsgStyle.Render(m.streamBuf.String()))
		sb.WriteString("\n")
	}

	separator := separatorStyle.Render(strings.Repeat("─", max(m.width, defaultWidth)))

	if m.permissionPrompt.IsActive() {
		sb.WriteString(m.permissionPrompt.Render(m.width))
		return sb.String()
	}

	sb.WriteString(separator)
	sb.WriteString("\n")
	sb.WriteString(inputPromptStyle.Render("❯ "))
	sb.WriteString(m.textarea.View())
	sb.WriteString("\n")
	sb.WriteString(separator)

	if status := m.renderStatusLine(); status != "" {
		sb.WriteString("\n")
		sb.WriteString(status)
	}
	if m.lastInputTokens > 0 || m.lastOutputTokens > 0 {
		sb.WriteString("\n")
		sb.WriteString(noticeStyle.Render(fmt.Sprintf("tokens: %d in / %d out", m.lastInputTokens, m.lastOutputTokens)))
	}

	return sb.String()
}

func isGitRepo(dir string) bool {
	_, err := os.Stat(dir + "/.git")
	return err == nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
