// Package tui is the terminal front end of Rig Panel. It drives the same
// control dispatcher as the GUI, so debounce and in-flight rules are
// identical.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dysperse/rigpanel/control"
	"github.com/dysperse/rigpanel/rig"
)

// Controls is what the model drives. *control.Dispatcher implements it.
type Controls interface {
	SelectColor(value string) error
	SetStyle(style rig.Style) bool
	SendScene(command string) bool
	TriggerLock(event rig.EventType) bool
	Busy(key string) bool
}

// OnlineMsg reports a connectivity change.
type OnlineMsg bool

// BusyMsg reports that an in-flight flag changed. The model re-reads the
// flag itself.
type BusyMsg string

type itemKind int

const (
	kindStyle itemKind = iota
	kindScene
	kindLock
)

type item struct {
	kind    itemKind
	label   string
	section string
	key     string
	style   rig.Style
	command string
	event   rig.EventType
}

func buildItems() []item {
	var items []item
	for _, s := range rig.Styles {
		items = append(items, item{kind: kindStyle, label: s.Label(), section: "Style", key: control.KeyStyle, style: s})
	}
	for _, sc := range rig.Scenes {
		items = append(items, item{kind: kindScene, label: sc.Name, section: "Ambient lighting", key: control.AmbientKey(sc.Command), command: sc.Command})
	}
	items = append(items,
		item{kind: kindLock, label: "Lock", section: "Lock", key: control.KeyLock, event: rig.EventLock},
		item{kind: kindLock, label: "Unlock", section: "Lock", key: control.KeyLock, event: rig.EventUnlock},
	)
	return items
}

// Model is the bubbletea model.
type Model struct {
	controls Controls
	server   string

	items   []item
	cursor  int
	editing bool
	online  bool
	status  string
	bad     bool

	color   textinput.Model
	spinner spinner.Model
	help    help.Model
	width   int
}

// New creates the model.
func New(controls Controls, server string) Model {
	ti := textinput.New()
	ti.Prompt = "# "
	ti.Placeholder = "ff0000"
	ti.CharLimit = 7
	ti.Width = 10

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(busyStyle),
	)

	return Model{
		controls: controls,
		server:   server,
		items:    buildItems(),
		color:    ti,
		spinner:  sp,
		help:     help.New(),
		status:   "Ready",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case OnlineMsg:
		m.online = bool(msg)
		return m, nil

	case BusyMsg:
		if m.anyBusy() {
			return m, m.spinner.Tick
		}
		return m, nil

	case spinner.TickMsg:
		if !m.anyBusy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.updateColor(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		m.activate(m.items[m.cursor])
	case key.Matches(msg, keys.Lock):
		m.activate(item{kind: kindLock, label: "Lock", key: control.KeyLock, event: rig.EventLock})
	case key.Matches(msg, keys.Color):
		m.editing = true
		return m, m.color.Focus()
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// updateColor feeds keystrokes to the color input. Every change is handed
// to the dispatcher, whose debounce sends only the last one.
func (m Model) updateColor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Back) || msg.Type == tea.KeyEnter {
		m.editing = false
		m.color.Blur()
		return m, nil
	}
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	before := m.color.Value()
	var cmd tea.Cmd
	m.color, cmd = m.color.Update(msg)

	value := strings.TrimSpace(m.color.Value())
	if value != before && value != "" {
		if err := m.controls.SelectColor(value); err != nil {
			m.bad = true
		} else {
			m.bad = false
			m.status = "Color #" + strings.ToLower(strings.TrimPrefix(value, "#"))
		}
	}
	return m, cmd
}

func (m *Model) activate(it item) {
	var started bool
	switch it.kind {
	case kindStyle:
		started = m.controls.SetStyle(it.style)
	case kindScene:
		started = m.controls.SendScene(it.command)
	case kindLock:
		started = m.controls.TriggerLock(it.event)
	}
	if started {
		m.status = "Sent: " + it.label
	} else {
		m.status = it.label + " is still in flight"
	}
}

func (m Model) anyBusy() bool {
	if m.controls.Busy(control.KeyColor) {
		return true
	}
	for _, it := range m.items {
		if m.controls.Busy(it.key) {
			return true
		}
	}
	return false
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RIG PANEL"))
	b.WriteString("  ")
	if m.online {
		b.WriteString(onlineStyle.Render("● online"))
	} else {
		b.WriteString(offlineStyle.Render("○ offline"))
	}
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(m.server))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("RGB color"))
	b.WriteString("\n")
	colorLine := m.color.View()
	if m.bad {
		colorLine += "  " + errorStyle.Render("invalid color")
	}
	if m.controls.Busy(control.KeyColor) {
		colorLine += " " + m.spinner.View()
	}
	b.WriteString(boxStyle.Render(colorLine))
	b.WriteString("\n")

	section := ""
	for i, it := range m.items {
		if it.section != section {
			section = it.section
			b.WriteString(sectionStyle.Render(section))
			b.WriteString("\n")
		}

		label := it.label
		busy := m.controls.Busy(it.key)
		if busy {
			label = fmt.Sprintf("%s %s", label, m.spinner.View())
		}

		switch {
		case i == m.cursor && !m.editing:
			b.WriteString(selectedStyle.Render("› " + label))
		case busy:
			b.WriteString(normalStyle.Render("  " + busyStyle.Render(label)))
		default:
			b.WriteString(normalStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	status := statusBarStyle.Render(m.status)
	if m.width > 0 {
		status = statusBarStyle.Width(m.width).Render(m.status)
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return lipgloss.NewStyle().Margin(0, 1).Render(b.String())
}
