package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notewriter/log"
	"notewriter/panel"
)

type outcomeMsg panel.Outcome
type refreshMsg time.Time

type button struct {
	key   string
	label string
}

var buttons = []button{
	{"ctrl+o", "Open Editor"},
	{"ctrl+r", "Start Listening"},
	{"ctrl+x", "Stop Listening"},
	{"ctrl+t", "Type This Text"},
}

var statusColors = map[panel.Color]lipgloss.Color{
	panel.Green:  "42",
	panel.Blue:   "33",
	panel.Orange: "208",
	panel.Red:    "196",
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24"))
	disabledStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244")).Background(lipgloss.Color("236"))
	inputStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("239")).Padding(0, 1)
	modalStyles   = map[panel.Kind]lipgloss.Style{
		panel.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		panel.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		panel.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// tuiModel is the terminal control panel. Printable keys always go to the
// manual input so that text typed into this terminal cannot trigger an
// action; actions are bound to ctrl chords.
type tuiModel struct {
	ctl    *panel.Controller
	ctx    context.Context
	header string

	state panel.State
	input []rune
	modal *panel.Outcome
	busy  bool
	width int
}

func newTUIModel(ctx context.Context, ctl *panel.Controller, header string) tuiModel {
	return tuiModel{ctl: ctl, ctx: ctx, header: header, state: ctl.State()}
}

func refresh() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m tuiModel) Init() tea.Cmd {
	return refresh()
}

func (m tuiModel) run(fn func() panel.Outcome) (tuiModel, tea.Cmd) {
	m.busy = true
	return m, func() tea.Msg { return outcomeMsg(fn()) }
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case refreshMsg:
		m.state = m.ctl.State()
		return m, refresh()

	case outcomeMsg:
		out := panel.Outcome(msg)
		m.busy = false
		m.modal = &out
		if out.ClearInput {
			m.input = m.input[:0]
		}
		m.state = m.ctl.State()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.modal = nil
		return m, nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	case tea.KeyEnter:
		m.input = append(m.input, '\n')
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.input = append(m.input, msg.Runes...)
		return m, nil
	}

	if m.busy {
		return m, nil
	}
	ctl := m.ctl
	switch msg.String() {
	case "ctrl+o":
		ctx := m.ctx
		return m.run(func() panel.Outcome { return ctl.OpenEditor(ctx) })
	case "ctrl+r":
		if m.state.CanStart() {
			return m.run(ctl.StartListening)
		}
	case "ctrl+x":
		if m.state.CanStop() {
			return m.run(ctl.StopListening)
		}
	case "ctrl+t":
		text := string(m.input)
		return m.run(func() panel.Outcome { return ctl.TypeText(text) })
	}
	return m, nil
}

func (m tuiModel) enabled(i int) bool {
	switch i {
	case 1:
		return m.state.CanStart()
	case 2:
		return m.state.CanStop()
	}
	return true
}

func (m tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(panel.Title) + "\n")
	if m.header != "" {
		b.WriteString(dimStyle.Render(m.header) + "\n")
	}
	status := lipgloss.NewStyle().Foreground(statusColors[m.state.Color]).Render(m.state.StatusLine())
	if m.busy {
		status += dimStyle.Render("  ...")
	}
	b.WriteString(status + "\n\n")

	var row []string
	for i, btn := range buttons {
		style := buttonStyle
		if !m.enabled(i) || m.busy {
			style = disabledStyle
		}
		row = append(row, style.Render(btn.label)+helpStyle.Render(" "+btn.key))
	}
	b.WriteString(strings.Join(row, "  ") + "\n\n")

	b.WriteString(titleStyle.Render("Manual Text Input:") + "\n")
	width := 50
	if m.width > 8 && m.width-4 < width {
		width = m.width - 4
	}
	b.WriteString(inputStyle.Width(width).Render(string(m.input)+"█") + "\n")

	if m.modal != nil {
		b.WriteString(modalStyles[m.modal.Kind].Render(m.modal.Title+": "+m.modal.Message) +
			helpStyle.Render("  (esc)") + "\n")
	}
	b.WriteString("\n" + dimStyle.Render(panel.Instructions) + "\n\n")
	b.WriteString(helpStyle.Render("ctrl+c to quit"))
	return b.String()
}

func runTUI(a *app) int {
	m := newTUIModel(context.Background(), a.panel, a.providerLine())
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		return 1
	}
	return 0
}
