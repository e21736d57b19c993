// Package main provides the entry point for the Rig Panel application.
// Rig Panel is a desktop control panel for a home-automation rig server:
// it drives the RGB strip and ambient lighting, and tells the server when
// the screen locks or unlocks.
//
// Features:
//   - GTK4 window with a tray icon; closing the window keeps it running
//   - Lock/unlock bridge that notifies the server and mutes audio
//   - Connectivity indicator polled every few seconds
//   - Terminal UI and headless modes sharing the same services
//   - Command-line interface for scripting and automation
//
// Usage:
//
//	rigpanel [options]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dysperse/rigpanel/cli"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
	"github.com/dysperse/rigpanel/host"
	"github.com/dysperse/rigpanel/instance"
	"github.com/dysperse/rigpanel/rig"
	"github.com/dysperse/rigpanel/tui"
	"github.com/dysperse/rigpanel/ui"
	"golang.org/x/sync/errgroup"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	// General flags
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")
	configPath  = flag.String("config", "", "Path to the configuration file")
	serverURL   = flag.String("server", "", "Override the rig server address")

	// Mode flags
	runTUI      = flag.Bool("tui", false, "Run the terminal control panel")
	runHeadless = flag.Bool("headless", false, "Run the background services without a window")

	// CLI flags
	showStatus = flag.Bool("status", false, "Probe the server and show its status")
	setColor   = flag.String("color", "", "Set the RGB strip color")
	setStyle   = flag.String("style", "", "Set the RGB strip style")
	sendScene  = flag.String("scene", "", "Send an ambient scene")
	sendLock   = flag.Bool("lock", false, "Send a manual LOCK event")
	sendUnlock = flag.Bool("unlock", false, "Send a manual UNLOCK event")
	listScenes = flag.Bool("scenes", false, "List styles and scenes")
	setToken   = flag.Bool("set-token", false, "Store a bearer token for the server")
	clearToken = flag.Bool("clear-token", false, "Remove the stored bearer token")
)

func main() {
	flag.Parse()

	// Handle help flag
	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	// Handle version flag
	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger with structured logging and file output
	logLevel := common.ParseLogLevel(cfg.LogLevel)
	if *verbose {
		logLevel = common.LevelDebug
	}
	logConfig := common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}
	if *runTUI {
		logConfig.Console = io.Discard
	}
	if err := common.InitLogger(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals (SIGINT, SIGTERM)
	setupSignalHandler(cancel)

	// Check if any CLI mode flag is set
	if cliRequested() {
		os.Exit(runCLI(ctx, cfg))
	}

	switch {
	case *runHeadless:
		if err := runHeadlessMode(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	case *runTUI:
		if err := runTUIMode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Start the GTK application (GUI mode)
	h, err := host.New(cfg, host.Options{})
	if err != nil {
		common.LogError("Cannot start: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\nSet server.url in %s or pass --server.\n", err, cfg.Path())
		os.Exit(1)
	}

	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	app := ui.NewApplication(h, cfg, appVersion)
	go func() {
		<-ctx.Done()
		app.Quit()
	}()
	exitCode := app.Run(os.Args[:1])

	if exitCode != 0 {
		common.LogWarn("Application exited with code %d", exitCode)
	}
	common.CloseLogger()
	os.Exit(exitCode)
}

// loadConfig loads the configuration and applies the --server override.
// The override is written back only if something saves the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *serverURL != "" {
		if err := cfg.SetServerURL(*serverURL); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func cliRequested() bool {
	return *showStatus || *setColor != "" || *setStyle != "" || *sendScene != "" ||
		*sendLock || *sendUnlock || *listScenes || *setToken || *clearToken
}

// runCLI handles command-line interface operations and returns the exit code.
// It accepts a context for graceful shutdown support.
func runCLI(ctx context.Context, cfg *config.Config) int {
	if *listScenes {
		// Listing needs no server.
		if err := cli.PrintScenes(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	cliApp, err := cli.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Check if context is already cancelled before proceeding
	select {
	case <-ctx.Done():
		common.LogInfo("Operation cancelled before execution")
		return 1
	default:
	}

	var cliErr error

	switch {
	case *setToken:
		cliErr = cliApp.SetToken()
	case *clearToken:
		cliErr = cliApp.ClearToken()
	case *showStatus:
		cliErr = cliApp.Status(ctx)
	case *setColor != "":
		cliErr = cliApp.SetColor(ctx, *setColor)
	case *setStyle != "":
		cliErr = cliApp.SetStyle(ctx, *setStyle)
	case *sendScene != "":
		cliErr = cliApp.Scene(ctx, *sendScene)
	case *sendLock:
		cliErr = cliApp.Lock(ctx, rig.EventLock)
	case *sendUnlock:
		cliErr = cliApp.Lock(ctx, rig.EventUnlock)
	}

	if cliErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cliErr)
		return 1
	}
	return 0
}

// runTUIMode runs the terminal control panel. It exits on q or Ctrl+C, so
// the signal context is not needed.
func runTUIMode(cfg *config.Config) error {
	h, err := host.New(cfg, host.Options{})
	if err != nil {
		return err
	}
	common.LogInfo("Starting %s v%s (terminal)", common.AppName, appVersion)
	return tui.Run(h)
}

// runHeadlessMode runs the services without any front end until ctx is
// cancelled. SIGHUP reloads the configuration file. Headless mode exists to
// bridge lock events, so it refuses to start while another process does.
func runHeadlessMode(ctx context.Context, cfg *config.Config) error {
	lock, err := instance.Acquire(common.BusName)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyRunning) {
			return fmt.Errorf("%w: another %s is bridging lock events", err, common.AppName)
		}
		common.LogWarn("Single-instance check unavailable: %v", err)
	} else {
		defer lock.Release()
	}

	h, err := host.New(cfg, host.Options{ClaimBridge: host.Claimed})
	if err != nil {
		return err
	}
	h.SetOnChange(logTransitions(h.Config))

	common.LogInfo("Starting %s v%s (headless)", common.AppName, appVersion)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Run(gctx)
	})
	g.Go(func() error {
		return watchReload(gctx, h)
	})
	g.Go(func() error {
		return rotateLogs(gctx)
	})
	return g.Wait()
}

// logTransitions logs connectivity changes against the server currently
// configured, which a reload may have changed.
func logTransitions(current func() *config.Config) func(oldOnline, newOnline bool) {
	return func(_, online bool) {
		url := current().Server.URL
		if online {
			common.LogInfo("Rig server %s is online", url)
		} else {
			common.LogWarn("Rig server %s is offline", url)
		}
	}
}

// watchReload reloads the configuration on SIGHUP until ctx is done.
func watchReload(ctx context.Context, h *host.Host) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			cfg, err := loadConfig()
			if err != nil {
				common.LogError("Reload failed, keeping the running configuration: %v", err)
				continue
			}
			if err := h.Reload(cfg); err != nil {
				common.LogError("Reload failed: %v", err)
				continue
			}
			common.LogInfo("Configuration reloaded")
		}
	}
}

// rotateLogs checks the log file size while a long-running mode is up.
func rotateLogs(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			common.GetLogger().CheckRotation()
		}
	}
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
