package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dysperse/rigpanel/host"
)

// Subscriber is where Run hooks service callbacks. *host.Host implements it.
type Subscriber interface {
	SetOnChange(callback func(oldOnline, newOnline bool))
	SetOnBusy(callback func(key string, busy bool))
}

// Run shows the terminal UI until the user quits. The host's services run
// for as long as the UI does.
func Run(h *host.Host) error {
	m := New(h.Dispatcher(), h.Config().Server.URL)
	p := tea.NewProgram(m, tea.WithAltScreen())

	subscribe(p, h)

	h.Start()
	defer h.Stop()

	_, err := p.Run()
	return err
}

// subscribe forwards service callbacks to p as messages.
func subscribe(p *tea.Program, s Subscriber) {
	s.SetOnChange(func(_, online bool) {
		p.Send(OnlineMsg(online))
	})
	// A flag turns busy on the goroutine that claims it, which for a key
	// press is p's own event loop; Send from there would never be received.
	s.SetOnBusy(func(key string, _ bool) {
		go p.Send(BusyMsg(key))
	})
}
