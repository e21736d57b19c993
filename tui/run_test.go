package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/control"
	"github.com/dysperse/rigpanel/rig"
)

type recordingRemote struct {
	mu     sync.Mutex
	styles []rig.Style
}

func (r *recordingRemote) SetColor(ctx context.Context, value string) error { return nil }

func (r *recordingRemote) SetStyle(ctx context.Context, style rig.Style) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles = append(r.styles, style)
	return nil
}

func (r *recordingRemote) SendAmbient(ctx context.Context, command string) error { return nil }

func (r *recordingRemote) TriggerLock(ctx context.Context, event rig.EventType) error { return nil }

// gateSubscriber routes busy changes straight from a dispatcher's gate,
// the way the host does.
type gateSubscriber struct{ d *control.Dispatcher }

func (g gateSubscriber) SetOnChange(func(oldOnline, newOnline bool)) {}

func (g gateSubscriber) SetOnBusy(callback func(key string, busy bool)) {
	g.d.Gate().SetOnChange(callback)
}

func TestSubscribe_KeyPressesKeepProgramResponsive(t *testing.T) {
	remote := &recordingRemote{}
	d := control.NewDispatcher(remote, control.Options{Logger: common.NopLogger{}})
	defer d.Close()

	// Enter on the first style, then quit.
	p := tea.NewProgram(New(d, "http://rig.lan:5000"),
		tea.WithInput(strings.NewReader("\rq")),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)
	subscribe(p, gateSubscriber{d})

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		p.Kill()
		t.Fatal("program stopped handling keys after a control was activated")
	}

	d.Close()
	remote.mu.Lock()
	defer remote.mu.Unlock()
	if len(remote.styles) != 1 || remote.styles[0] != rig.Styles[0] {
		t.Errorf("styles = %v, want [%s]", remote.styles, rig.Styles[0])
	}
}
