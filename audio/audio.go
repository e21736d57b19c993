// Package audio queries and toggles the output mute state of the host.
//
// There is no portable mute API, so each platform is driven through its own
// command-line tool. Only "is it muted" and "flip it" are needed; callers
// compare the state themselves and toggle at most once.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dysperse/rigpanel/common"
)

// Controller reads and flips the mute state.
type Controller interface {
	Muted(ctx context.Context) (bool, error)
	ToggleMute(ctx context.Context) error
}

// Runner runs a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandError reports a failed mute query or toggle.
type CommandError struct {
	Op      error
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%v: %s: %v", e.Op, e.Command, e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Unwrap returns both the operation sentinel and the cause so errors.Is
// matches either.
func (e *CommandError) Unwrap() []error {
	return []error{e.Op, e.Err}
}

// ShellController drives an external tool.
type ShellController struct {
	// Name identifies the backend in logs.
	Name   string
	Query  []string
	Toggle []string
	// Parse turns query output into the mute state.
	Parse func(out string) (bool, error)
	Run   Runner
}

// Muted runs the query command and parses its output.
func (s *ShellController) Muted(ctx context.Context) (bool, error) {
	out, err := s.run(ctx, s.Query)
	if err != nil {
		return false, &CommandError{Op: common.ErrMuteQuery, Command: strings.Join(s.Query, " "), Output: trimOutput(out), Err: err}
	}
	muted, err := s.Parse(string(out))
	if err != nil {
		return false, &CommandError{Op: common.ErrMuteQuery, Command: strings.Join(s.Query, " "), Output: trimOutput(out), Err: err}
	}
	return muted, nil
}

// ToggleMute runs the toggle command.
func (s *ShellController) ToggleMute(ctx context.Context) error {
	out, err := s.run(ctx, s.Toggle)
	if err != nil {
		return &CommandError{Op: common.ErrMuteToggle, Command: strings.Join(s.Toggle, " "), Output: trimOutput(out), Err: err}
	}
	return nil
}

func (s *ShellController) run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("no command configured for %s", s.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, common.ShellTimeout)
	defer cancel()

	run := s.Run
	if run == nil {
		run = ExecRunner
	}
	return run(ctx, argv[0], argv[1:]...)
}

// ExecRunner runs the command with os/exec. Standard error is folded into
// the returned error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%w: %s", err, msg)
		}
		return out, err
	}
	return out, nil
}

func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// NewPulseAudio controls the default sink through pactl, which also works
// against PipeWire's pulse server.
func NewPulseAudio() *ShellController {
	return &ShellController{
		Name:   "pulseaudio",
		Query:  []string{"pactl", "get-sink-mute", "@DEFAULT_SINK@"},
		Toggle: []string{"pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"},
		Parse:  parsePactl,
	}
}

// NewPowerShell uses the AudioDeviceCmdlets module for the query and the
// media mute key for the toggle.
func NewPowerShell() *ShellController {
	return &ShellController{
		Name:   "powershell",
		Query:  []string{"powershell", "-NoProfile", "-Command", "Get-AudioDevice -PlaybackMute"},
		Toggle: []string{"powershell", "-NoProfile", "-Command", "$wshell = New-Object -ComObject wscript.shell; $wshell.SendKeys([char]173)"},
		Parse:  parseTrueFalse,
	}
}

// NewAppleScript drives the system output volume through osascript.
func NewAppleScript() *ShellController {
	return &ShellController{
		Name:   "applescript",
		Query:  []string{"osascript", "-e", "output muted of (get volume settings)"},
		Toggle: []string{"osascript", "-e", "set volume output muted (not (output muted of (get volume settings)))"},
		Parse:  parseTrueFalse,
	}
}

// New returns the controller for the running platform.
func New() (*ShellController, error) {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return NewPulseAudio(), nil
	case "windows":
		return NewPowerShell(), nil
	case "darwin":
		return NewAppleScript(), nil
	default:
		return nil, fmt.Errorf("%w: audio control on %s", common.ErrUnsupportedPlatform, runtime.GOOS)
	}
}

// parsePactl reads "Mute: yes" / "Mute: no".
func parsePactl(out string) (bool, error) {
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "mute") {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "yes":
			return true, nil
		case "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("unexpected pactl output %q", strings.TrimSpace(out))
}

// parseTrueFalse reads a bare True/False as printed by PowerShell and
// AppleScript.
func parseTrueFalse(out string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(out)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("unexpected output %q", strings.TrimSpace(out))
}
