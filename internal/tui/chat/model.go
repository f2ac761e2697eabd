// Package chat provides the interactive chat view over a copilot client.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"

	"github.com/drewfead/copilot/internal/client"
	"github.com/drewfead/copilot/internal/message"
	"github.com/drewfead/copilot/internal/response"
	"github.com/drewfead/copilot/internal/tui"
)

// Model is the chat session over one agent.
type Model struct {
	mgr       *client.Manager
	agentName string
	threadID  string

	history []*message.Message

	// In-flight stream assembly, keyed by message id.
	stream  *response.Stream
	partial map[string]*partialMessage
	order   []string

	agentState string // rendered snapshot of the latest agent state
	showState  bool

	errBanner  string
	warnBanner string

	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model

	width     int
	height    int
	ready     bool
	streaming bool
}

// partialMessage accumulates deltas for one message id until its terminal
// status arrives.
type partialMessage struct {
	kind       response.Kind
	role       string
	content    strings.Builder
	actionName string
	args       strings.Builder
	done       bool
	failed     bool
}

type (
	streamStartedMsg struct{ stream *response.Stream }
	outputMsg        response.Output
	streamDoneMsg    struct{}
	streamErrMsg     struct{ err error }
	bannerMsg        struct{ text string }
	warningMsg       struct{ text string }
)

// New creates a chat model. Error and warning callbacks configured on the
// manager feed the banners through the program's message loop.
func New(mgr *client.Manager, agentName, threadID string, showState bool) Model {
	ti := textarea.New()
	ti.Placeholder = "Send a message..."
	ti.Prompt = ""
	ti.SetHeight(3)
	ti.ShowLineNumbers = false
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.StyleAction

	if threadID == "" {
		threadID = uuid.NewString()
	}

	return Model{
		mgr:       mgr,
		agentName: agentName,
		threadID:  threadID,
		partial:   map[string]*partialMessage{},
		showState: showState,
		input:     ti,
		spin:      sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelStream()
			return m, tea.Quit
		case "esc":
			if m.streaming {
				m.cancelStream()
				return m, nil
			}
			return m, tea.Quit
		case "ctrl+t":
			m.showState = !m.showState
			m.refreshTranscript()
		case "enter":
			if !m.streaming {
				if cmd := m.send(); cmd != nil {
					return m, cmd
				}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		inputHeight := m.input.Height() + 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight - 4
		}
		m.input.SetWidth(msg.Width - 4)
		m.refreshTranscript()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case streamStartedMsg:
		m.stream = msg.stream
		cmds = append(cmds, m.readOutput())

	case outputMsg:
		m.apply(response.Output(msg))
		m.refreshTranscript()
		cmds = append(cmds, m.readOutput())

	case streamDoneMsg:
		m.finishStream()
		m.refreshTranscript()

	case streamErrMsg:
		m.finishStream()
		m.errBanner = msg.err.Error()
		m.refreshTranscript()

	case bannerMsg:
		m.errBanner = msg.text

	case warningMsg:
		m.warnBanner = msg.text
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// send turns the input into a user message and starts a generate stream.
func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}

	c := m.mgr.Resolve(m.agentName)
	if c == nil {
		m.errBanner = fmt.Sprintf("no client available for agent %q", m.agentName)
		return nil
	}

	m.history = append(m.history, message.NewText(message.RoleUser, text))
	m.input.Reset()
	m.errBanner = ""
	m.streaming = true
	m.refreshTranscript()

	req := &client.GenerateRequest{
		AgentName: m.agentName,
		ThreadID:  m.threadID,
		Messages:  m.history,
	}
	return func() tea.Msg {
		stream, err := c.AsStream(context.Background(), req)
		if err != nil {
			return streamErrMsg{err}
		}
		return streamStartedMsg{stream}
	}
}

// readOutput waits for the next record from the in-flight stream.
func (m Model) readOutput() tea.Cmd {
	s := m.stream
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		out, ok := <-s.Outputs()
		if !ok {
			if err := s.Err(); err != nil {
				return streamErrMsg{err}
			}
			return streamDoneMsg{}
		}
		return outputMsg(out)
	}
}

// apply folds one output record into the partial transcript.
func (m *Model) apply(out response.Output) {
	switch out.Kind {
	case response.KindAgentState:
		m.agentState = renderState(out)
		return
	case response.KindMetaEvent:
		m.warnBanner = fmt.Sprintf("interrupt: %s", string(out.Value))
		return
	}

	p, ok := m.partial[out.MessageID]
	if !ok {
		p = &partialMessage{kind: out.Kind, role: out.Role}
		m.partial[out.MessageID] = p
		m.order = append(m.order, out.MessageID)
	}
	if out.Role != "" {
		p.role = out.Role
	}
	if out.ActionName != "" {
		p.actionName = out.ActionName
	}
	p.content.WriteString(out.Content)
	p.args.WriteString(out.Args)

	switch out.Status {
	case response.StatusSuccess:
		p.done = true
	case response.StatusError:
		p.done = true
		p.failed = true
	}
}

// finishStream folds completed partials into the durable history so they
// ride along on the next request.
func (m *Model) finishStream() {
	m.streaming = false
	m.stream = nil

	for _, id := range m.order {
		p := m.partial[id]
		if p.failed {
			continue
		}
		switch p.kind {
		case response.KindTextMessage:
			msg := message.NewText(message.RoleAssistant, p.content.String())
			msg.ID = id
			m.history = append(m.history, msg)
		case response.KindActionExecution:
			msg := message.NewActionExecution(p.actionName, p.args.String())
			msg.ID = id
			m.history = append(m.history, msg)
		}
	}
	m.partial = map[string]*partialMessage{}
	m.order = nil
}

func (m *Model) cancelStream() {
	if m.stream != nil {
		m.stream.Cancel()
	}
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	var b strings.Builder

	for _, msg := range m.history {
		b.WriteString(m.renderHistoryMessage(msg))
		b.WriteString("\n")
	}
	for _, id := range m.order {
		b.WriteString(m.renderPartial(m.partial[id]))
		b.WriteString("\n")
	}
	if m.showState && m.agentState != "" {
		b.WriteString(tui.StyleMuted.Render("── agent state ──"))
		b.WriteString("\n")
		b.WriteString(tui.StyleMuted.Render(m.agentState))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHistoryMessage(msg *message.Message) string {
	switch msg.Kind {
	case message.KindText:
		if msg.Role == message.RoleUser {
			return tui.StyleUser.Render(tui.RoleIcons["user"]+" ") + msg.Text
		}
		return tui.RoleIcons["assistant"] + " " + m.renderMarkdown(msg.Text)
	case message.KindActionExecution:
		return tui.StyleAction.Render(fmt.Sprintf("%s %s(%s)", tui.RoleIcons["tool"], msg.Action.Name, msg.Action.Arguments))
	case message.KindResult:
		return tui.StyleMuted.Render(fmt.Sprintf("%s → %s", tui.RoleIcons["tool"], msg.Result.Value))
	default:
		return ""
	}
}

func (m Model) renderPartial(p *partialMessage) string {
	switch p.kind {
	case response.KindActionExecution:
		line := fmt.Sprintf("%s %s(%s)", tui.RoleIcons["tool"], p.actionName, p.args.String())
		if !p.done {
			line += " " + m.spin.View()
		}
		return tui.StyleAction.Render(line)
	default:
		text := p.content.String()
		if p.done {
			return tui.RoleIcons["assistant"] + " " + m.renderMarkdown(text)
		}
		return tui.RoleIcons["assistant"] + " " + text + m.spin.View()
	}
}

// renderMarkdown renders markdown content using glamour
func (m Model) renderMarkdown(content string) string {
	width := m.width - 4
	if width < 40 {
		width = 40
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content // fallback to raw
	}

	out, err := r.Render(content)
	if err != nil {
		return content // fallback to raw
	}
	return strings.TrimRight(out, "\n")
}

func renderState(out response.Output) string {
	label := out.AgentName
	if out.NodeName != "" {
		label += "/" + out.NodeName
	}
	var pretty strings.Builder
	if len(out.State) > 0 {
		var buf map[string]any
		if err := json.Unmarshal(out.State, &buf); err == nil {
			enc, _ := json.MarshalIndent(buf, "", "  ")
			pretty.Write(enc)
		} else {
			pretty.Write(out.State)
		}
	}
	return fmt.Sprintf("%s %s running=%v\n%s", tui.RoleIcons["agent"], label, out.Running, pretty.String())
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	agent := m.agentName
	if agent == "" {
		agent = "default"
	}
	header := fmt.Sprintf("%s  %s  %s",
		tui.StyleTitle.Render("copilot"),
		tui.StyleMuted.Render("agent: "+agent),
		tui.StyleMuted.Render("thread: "+shortID(m.threadID)))
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(tui.StyleMuted.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.errBanner != "" {
		b.WriteString(tui.StyleError.Render("✗ " + m.errBanner))
		b.WriteString("\n")
	} else if m.warnBanner != "" {
		b.WriteString(tui.StyleWarning.Render("⚠ " + m.warnBanner))
		b.WriteString("\n")
	} else if m.streaming {
		b.WriteString(m.spin.View() + tui.StyleMuted.Render(" generating... [esc] cancel"))
		b.WriteString("\n")
	} else {
		b.WriteString(tui.StyleMuted.Render("[enter] send  [ctrl+t] agent state  [esc] quit"))
		b.WriteString("\n")
	}

	b.WriteString(tui.StyleBorder.Render(m.input.View()))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Banner returns a command that surfaces a classified error in the UI.
// Wire it as the manager's error callback via a tea.Program Send.
func Banner(text string) tea.Msg {
	return bannerMsg{text: text}
}

// Warning returns a command that surfaces a warning in the UI.
func Warning(text string) tea.Msg {
	return warningMsg{text: text}
}
