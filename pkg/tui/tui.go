// Package tui provides a terminal editor for the voice slots and the
// remaining kick parameters, showing derived note labels as they change.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gruvah/kickbridge/pkg/framework/param"
	"github.com/gruvah/kickbridge/pkg/kick"
)

var (
	accent = lipgloss.Color("#FF8C1A")
	dim    = lipgloss.Color("#666666")
	text   = lipgloss.Color("#D0D0D0")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(accent).
			Padding(0, 2).
			MarginBottom(1)

	slotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dim).
			Padding(0, 1).
			Width(20)

	activeSlotStyle = slotStyle.BorderForeground(accent)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	rowStyle      = lipgloss.NewStyle().Foreground(text)
	selectedStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(dim).MarginTop(1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#39FF14"))
)

// refreshInterval is how often the view picks up changes made elsewhere
// (HTTP, automation).
const refreshInterval = 100 * time.Millisecond

type tickMsg time.Time

// Model is the bubbletea model of the editor.
type Model struct {
	plugin *kick.Plugin
	cursor kick.Key
	status string
	saved  []byte
	width  int
}

// New creates an editor for p.
func New(p *kick.Plugin) Model {
	return Model{plugin: p}
}

// Saved returns the state blob captured by the last "s" key press, or nil.
func (m Model) Saved() []byte {
	return m.saved
}

// Cursor returns the selected parameter.
func (m Model) Cursor() kick.Key {
	return m.cursor
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < kick.NumKeys-1 {
			m.cursor++
		}
	case "tab":
		m.cursor = nextSlot(m.cursor)
	case "right", "l":
		m.nudge(1, false)
	case "left", "h":
		m.nudge(-1, false)
	case "shift+right", "L":
		m.nudge(1, true)
	case "shift+left", "H":
		m.nudge(-1, true)
	case "d":
		p := m.param()
		m.plugin.Set(m.cursor, p.DefaultValue)
		m.status = fmt.Sprintf("%s reset to %s", p.Name, p.Text())
	case "r":
		m.plugin.Reset()
		m.status = "all parameters reset"
	case "s":
		blob, err := m.plugin.SaveState()
		if err != nil {
			m.status = "save failed: " + err.Error()
			break
		}
		m.saved = blob
		m.status = fmt.Sprintf("state captured (%d bytes)", len(blob))
	}
	return m, nil
}

func (m Model) param() *param.Parameter {
	return m.plugin.Parameters().Get(int(m.cursor))
}

// nudge moves the selected parameter by one step: one unit for integer and
// choice parameters, one percent of the range otherwise. coarse multiplies
// the step by ten.
func (m *Model) nudge(dir float64, coarse bool) {
	p := m.param()
	step := 1.0
	if p.Kind == param.KindFloat {
		step = (p.Max - p.Min) / 100
	}
	if coarse {
		step *= 10
	}
	m.plugin.Set(m.cursor, p.Value()+dir*step)
	m.status = ""
}

func nextSlot(k kick.Key) kick.Key {
	slot, _ := k.Slot()
	switch {
	case slot > 0 && slot < kick.SlotCount:
		return kick.OctaveKey(slot + 1)
	case slot == kick.SlotCount:
		return kick.AmpAttack
	}
	return kick.OctaveKey(1)
}

// View renders the slots side by side, then the global parameters.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" KICKBRIDGE "))
	s.WriteString("\n")

	boxes := make([]string, 0, kick.SlotCount)
	for slot := 1; slot <= kick.SlotCount; slot++ {
		boxes = append(boxes, m.viewSlot(slot))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	s.WriteString("\n\n")

	for k := kick.AmpAttack; k < kick.NumKeys; k++ {
		s.WriteString(m.row(k))
		s.WriteString("\n")
	}

	if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("↑/↓ select • ←/→ adjust (shift: coarse) • tab next slot • d default • r reset all • s capture state • q quit"))
	return s.String()
}

func (m Model) viewSlot(slot int) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render(fmt.Sprintf("Slot %d  %s", slot, m.plugin.Label(slot))))
	s.WriteString("\n")
	for _, k := range []kick.Key{kick.OctaveKey(slot), kick.NoteKey(slot), kick.TimingKey(slot)} {
		s.WriteString(m.row(k))
		s.WriteString("\n")
	}
	style := slotStyle
	if active, _ := m.cursor.Slot(); active == slot {
		style = activeSlotStyle
	}
	return style.Render(strings.TrimRight(s.String(), "\n"))
}

func (m Model) row(k kick.Key) string {
	p := m.plugin.Parameters().Get(int(k))
	name := p.ShortName
	if name == "" {
		name = p.Name
	}
	line := fmt.Sprintf("%-10s %s", truncate(name, 10), p.Text())
	if k == m.cursor {
		return selectedStyle.Render("▸ " + line)
	}
	return rowStyle.Render("  " + line)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Run starts the editor and returns the final model.
func Run(p *kick.Plugin) (Model, error) {
	final, err := tea.NewProgram(New(p), tea.WithAltScreen()).Run()
	if err != nil {
		return Model{}, err
	}
	return final.(Model), nil
}
