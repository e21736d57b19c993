// Package cli provides command-line interface functionality for Rig Panel.
// This allows users to drive the rig from the terminal or from scripts
// without launching the GUI application.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
	"github.com/dysperse/rigpanel/keyring"
	"github.com/dysperse/rigpanel/rig"
	"golang.org/x/term"
)

// TokenStore keeps the bearer token per server. *keyring.Store implements it.
type TokenStore interface {
	StoreToken(server, token string) error
	GetToken(server string) (string, error)
	DeleteToken(server string) error
}

// CLI represents the command-line interface.
type CLI struct {
	cfg    *config.Config
	client *rig.Client
	tokens TokenStore
	out    io.Writer
	in     io.Reader
}

// New creates a new CLI instance for the configured server.
func New(cfg *config.Config) (*CLI, error) {
	return NewWithStore(cfg, keyring.Default())
}

// NewWithStore creates a CLI that reads tokens from tokens.
func NewWithStore(cfg *config.Config, tokens TokenStore) (*CLI, error) {
	if err := cfg.RequireServer(); err != nil {
		return nil, fmt.Errorf("%w (set server.url in %s or pass --server)", err, cfg.Path())
	}

	opts := []rig.Option{rig.WithTimeout(cfg.Server.Timeout)}
	if cfg.Server.UseToken && tokens != nil {
		token, err := tokens.GetToken(cfg.Server.URL)
		switch {
		case err == nil:
			opts = append(opts, rig.WithToken(token))
		case errors.Is(err, common.ErrCredentialsNotFound):
			common.LogWarn("No token stored for %s; sending requests without one", cfg.Server.URL)
		default:
			return nil, fmt.Errorf("failed to read token: %w", err)
		}
	}

	return &CLI{
		cfg:    cfg,
		client: rig.New(cfg.Server.URL, opts...),
		tokens: tokens,
		out:    os.Stdout,
		in:     os.Stdin,
	}, nil
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// SetInput sets where SetToken reads the token from.
func (c *CLI) SetInput(r io.Reader) {
	c.in = r
}

// Status probes the server once and prints the result. It fails when the
// server is not online so scripts can test the exit code.
func (c *CLI) Status(ctx context.Context) error {
	start := time.Now()
	st, err := c.client.Status(ctx)
	latency := time.Since(start)

	status := "OFFLINE"
	if err == nil && st.Online() {
		status = "ONLINE"
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVER\tSTATUS\tLATENCY")
	fmt.Fprintln(w, "------\t------\t-------")
	fmt.Fprintf(w, "%s\t%s\t%s\n", c.client.BaseURL(), status, formatDuration(latency))
	w.Flush()

	if err != nil {
		return err
	}
	if !st.Online() {
		return fmt.Errorf("%w: server reported %q", common.ErrUnexpectedStatus, st.Status)
	}
	return nil
}

// SetColor sets the RGB strip color.
func (c *CLI) SetColor(ctx context.Context, value string) error {
	hex, err := rig.NormalizeColor(value)
	if err != nil {
		return err
	}
	if err := c.client.SetColor(ctx, hex); err != nil {
		return fmt.Errorf("failed to set color: %w", err)
	}
	fmt.Fprintf(c.out, "✓ Color set to #%s\n", hex)
	return nil
}

// SetStyle sets the RGB strip style by name.
func (c *CLI) SetStyle(ctx context.Context, name string) error {
	style, err := rig.ParseStyle(name)
	if err != nil {
		return err
	}
	if err := c.client.SetStyle(ctx, style); err != nil {
		return fmt.Errorf("failed to set style: %w", err)
	}
	fmt.Fprintf(c.out, "✓ Style set to %s\n", style.Label())
	return nil
}

// Scene sends an ambient scene by name or raw command.
func (c *CLI) Scene(ctx context.Context, nameOrCommand string) error {
	scene, err := rig.LookupScene(nameOrCommand)
	if err != nil {
		return err
	}
	if err := c.client.SendAmbient(ctx, scene.Command); err != nil {
		return fmt.Errorf("failed to send scene %s: %w", scene.Name, err)
	}
	fmt.Fprintf(c.out, "✓ Scene %s sent\n", scene.Name)
	return nil
}

// Lock sends the manual lock/unlock override.
func (c *CLI) Lock(ctx context.Context, event rig.EventType) error {
	if err := c.client.TriggerLock(ctx, event); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	fmt.Fprintf(c.out, "✓ %s sent\n", event)
	return nil
}

// ListScenes prints the styles and scenes a front end offers.
func (c *CLI) ListScenes() error {
	return PrintScenes(c.out)
}

// PrintScenes writes the style and scene tables to out.
func PrintScenes(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STYLE\tVALUE")
	fmt.Fprintln(w, "-----\t-----")
	for _, st := range rig.Styles {
		fmt.Fprintf(w, "%s\t%s\n", st.Label(), st)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SCENE\tCOMMAND")
	fmt.Fprintln(w, "-----\t-------")
	for _, sc := range rig.Scenes {
		fmt.Fprintf(w, "%s\t%s\n", sc.Name, sc.Command)
	}
	return w.Flush()
}

// SetToken reads a bearer token from the input and stores it for the
// configured server. Terminal input is not echoed.
func (c *CLI) SetToken() error {
	if c.tokens == nil {
		return errors.New("no token store available")
	}

	token, err := c.readToken()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if err := c.tokens.StoreToken(c.cfg.Server.URL, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if !c.cfg.Server.UseToken {
		c.cfg.Server.UseToken = true
		if err := c.cfg.Save(); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "✓ Token stored for %s\n", c.cfg.Server.URL)
	return nil
}

// ClearToken removes the stored token and stops sending one.
func (c *CLI) ClearToken() error {
	if c.tokens == nil {
		return errors.New("no token store available")
	}
	if err := c.tokens.DeleteToken(c.cfg.Server.URL); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if c.cfg.Server.UseToken {
		c.cfg.Server.UseToken = false
		if err := c.cfg.Save(); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.out, "✓ Token removed for %s\n", c.cfg.Server.URL)
	return nil
}

func (c *CLI) readToken() (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(c.out, "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// formatDuration formats a request latency in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Rig Panel - Command Line Interface

Usage:
  rigpanel [OPTIONS]

Options:
  --version         Show version and exit
  --verbose         Enable verbose logging
  --config PATH     Use a different configuration file
  --server URL      Override the rig server address
  --tui             Run the terminal control panel
  --headless        Run only the background services (no window)
  --status          Probe the server and show its status
  --color HEX       Set the RGB strip color (e.g. ff8800 or #ff8800)
  --style NAME      Set the RGB strip style
  --scene NAME      Send an ambient scene by name or raw command
  --lock            Send a manual LOCK event
  --unlock          Send a manual UNLOCK event
  --scenes          List the available styles and scenes
  --set-token       Store a bearer token for the server (read from stdin)
  --clear-token     Remove the stored bearer token
  --help            Show this help message

Examples:
  rigpanel --server http://192.168.1.44:5000 --status
  rigpanel --color "#00ff88"
  rigpanel --style raise_up
  rigpanel --scene Warm
  echo "$RIG_TOKEN" | rigpanel --set-token

Notes:
  - The server address is read from server.url in the config file
  - Run without options to launch the GUI; a second launch shows the window
  - Headless mode keeps the lock/unlock bridge running without a window`)
}
