package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// snapshotMsg carries a fresh document state into the tea program.
type snapshotMsg snapshot

type theme struct {
	header  lipgloss.Style
	divider lipgloss.Style
	body    lipgloss.Style
	status  lipgloss.Style
	hint    lipgloss.Style
	input   lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")),
		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("60")),
		body: lipgloss.NewStyle().
			Padding(0, 1),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1),
	}
}

// model renders one document and turns submitted input lines into IPC
// requests via the emit callback.
type model struct {
	theme    theme
	input    textinput.Model
	viewport viewport.Model
	snap     snapshot
	emit     func(body string)
	width    int
	height   int
	isReady  bool
	sent     int
}

func newModel(initial snapshot, emit func(body string)) *model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "Post a message to the frame..."
	in.Focus()
	in.CharLimit = 0

	vp := viewport.New(80, 16)

	return &model{
		theme:    defaultTheme(),
		input:    in,
		viewport: vp,
		snap:     initial,
		emit:     emit,
		width:    100,
		height:   28,
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport()
		m.isReady = true
		return m, nil
	case snapshotMsg:
		m.snap = snapshot(typed)
		m.refreshViewport()
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			body := strings.TrimSpace(m.input.Value())
			if body == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.sent++
			if m.emit != nil {
				m.emit(body)
			}
			return m, nil
		}
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport()
	}

	title := m.snap.title
	if title == "" {
		title = "WebFrame"
	}

	header := m.theme.header.Width(m.width - 2).Render(title)
	line := m.theme.divider.Render(strings.Repeat("─", max(8, m.width-2)))

	status := m.theme.status.Render(m.snap.status)
	if m.snap.status == "" {
		status = m.theme.hint.Render(fmt.Sprintf("%d request(s) sent · Enter send · Ctrl+C/Esc quit", m.sent))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		line,
		m.theme.body.Render(m.viewport.View()),
		status,
		m.theme.input.Width(m.width-2).Render(m.input.View()),
	)
}

func (m *model) resizeComponents() {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	h := m.height - 7
	if h < 6 {
		h = 6
	}

	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
}

func (m *model) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.snap.lines, "\n"))
	m.viewport.GotoBottom()
}
