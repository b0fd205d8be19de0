// Package statusview is a small dev-mode TUI overlay (spec §7's
// user-visible behavior note) showing transport state, last-save
// status, and the last tick's StateSurface hash — exactly the three
// things a developer chasing a determinism bug wants on screen without
// reading logs.
package statusview

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"

	"github.com/lox/sphereforge/internal/transport"
)

// Logger is the overlay's own internal diagnostic logger, kept separate
// from the simulation core's rs/zerolog logger the same way the original
// TUI split "what the engine logs" from "what the TUI itself logs about
// its own rendering and key handling".
var Logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: true,
	Prefix:          "statusview",
})

const (
	logPaneWidth  = 60
	logPaneHeight = 8
	logScrollback = 200
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)

	logStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#454545"))
)

// TickMsg is sent into the model whenever the engine completes a tick.
type TickMsg struct {
	Tick uint64
	Hash string
}

// SaveMsg is sent whenever a persistence save completes or fails.
type SaveMsg struct {
	Key string
	Err error
}

// TransportMsg is sent on any transport.State transition.
type TransportMsg struct {
	State transport.State
}

// LogMsg appends one line to the scrolling log pane, typically a
// forwarded zerolog event from the simulation core.
type LogMsg struct {
	Line string
}

// Model is the bubbletea model for the status overlay.
type Model struct {
	transportState transport.State
	lastTick       uint64
	lastHash       string
	lastSaveKey    string
	lastSaveErr    error

	logLines []string
	logView  viewport.Model
}

// New constructs an empty Model.
func New() Model {
	vp := viewport.New(logPaneWidth, logPaneHeight)
	return Model{transportState: transport.StateDisconnected, logView: vp}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.logView.ScrollUp(1)
		case "down", "j":
			m.logView.ScrollDown(1)
		case "pgup":
			m.logView.HalfPageUp()
		case "pgdown":
			m.logView.HalfPageDown()
		case "home":
			m.logView.GotoTop()
		case "end":
			m.logView.GotoBottom()
		}
	case TickMsg:
		m.lastTick = msg.Tick
		m.lastHash = msg.Hash
	case SaveMsg:
		m.lastSaveKey = msg.Key
		m.lastSaveErr = msg.Err
	case TransportMsg:
		m.transportState = msg.State
	case LogMsg:
		m.logLines = append(m.logLines, msg.Line)
		if len(m.logLines) > logScrollback {
			m.logLines = m.logLines[len(m.logLines)-logScrollback:]
		}
		m.logView.SetContent(joinLines(m.logLines))
		m.logView.GotoBottom()
	}
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := headerStyle.Render(" sphereforge ")

	transportLine := labelStyle.Render("transport: ") + m.renderTransportState()
	tickLine := fmt.Sprintf("%s%s", labelStyle.Render("tick: "), valueStyle.Render(fmt.Sprintf("%d", m.lastTick)))
	hashLine := labelStyle.Render("hash: ") + valueStyle.Render(shortHash(m.lastHash))
	saveLine := labelStyle.Render("save: ") + m.renderSaveState()

	body := lipgloss.JoinVertical(lipgloss.Left, transportLine, tickLine, hashLine, saveLine)
	logPane := logStyle.Render(m.logView.View())
	return lipgloss.JoinVertical(lipgloss.Left, header, panelStyle.Render(body), logPane)
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func (m Model) renderTransportState() string {
	if m.transportState == transport.StateConnected {
		return goodStyle.Render(m.transportState.String())
	}
	return errStyle.Render(m.transportState.String())
}

func (m Model) renderSaveState() string {
	if m.lastSaveKey == "" {
		return labelStyle.Render("(none)")
	}
	if m.lastSaveErr != nil {
		return errStyle.Render(m.lastSaveKey + ": " + m.lastSaveErr.Error())
	}
	return goodStyle.Render(m.lastSaveKey + ": ok")
}

func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
