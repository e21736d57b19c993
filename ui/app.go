package ui

import (
	"os"
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
	"github.com/dysperse/rigpanel/host"
)

// Application is the GUI context: the GTK application, its window and tray,
// and the shared services they drive.
type Application struct {
	app      *gtk.Application
	window   *MainWindow
	host     *host.Host
	config   *config.Config
	version  string
	tray     *TrayIndicator
	notifier *Notifier
	log      common.Logger
	held     bool
}

// NewApplication creates the GUI around services built for cfg.
// The application id makes GTK keep a single instance per session: a
// second launch only re-activates this one.
func NewApplication(h *host.Host, cfg *config.Config, version string) *Application {
	app := gtk.NewApplication(common.AppID, gio.ApplicationFlagsNone)

	application := &Application{
		app:      app,
		host:     h,
		config:   cfg,
		version:  version,
		notifier: NewNotifier(),
		log:      common.GetLogger().With("ui"),
	}

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.onShutdown)

	return application
}

// Run runs the application
func (a *Application) Run(args []string) int {
	return a.app.Run(args)
}

// onActivate runs on first launch and again whenever another launch hands
// over to this instance. The second time it only brings the window back.
func (a *Application) onActivate() {
	if a.window != nil {
		a.showWindow()
		return
	}

	// Hiding the only window must not end the application.
	a.app.Hold()
	a.held = true

	a.ApplyTheme(a.config.UI.Theme)
	a.setupAppIcon()
	LoadStyles()

	a.window = NewMainWindow(a)
	if !a.config.UI.StartHidden {
		a.window.Show()
	}

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()

	a.connectServices()
	a.host.Start()
}

// connectServices routes service callbacks onto the GTK main loop.
func (a *Application) connectServices() {
	a.host.SetOnChange(func(_, online bool) {
		glib.IdleAdd(func() {
			a.window.SetOnline(online)
		})
		a.tray.SetOnline(online)
		// Runs on the poller goroutine; a.config belongs to the GTK thread.
		if title, body, ok := onlineNotice(a.host.Config(), online); ok {
			a.notify(title, body)
		}
	})

	a.host.SetOnBusy(func(key string, _ bool) {
		// The flag may have flipped again by the time the idle callback
		// runs, so the window re-reads it instead of trusting busy.
		glib.IdleAdd(func() {
			a.window.RefreshBusy(key)
		})
	})
}

// onlineNotice builds the desktop notification for a connectivity change,
// or reports false when cfg turns notifications off.
func onlineNotice(cfg *config.Config, online bool) (title, body string, ok bool) {
	if cfg == nil || !cfg.UI.ShowNotifications {
		return "", "", false
	}
	if online {
		return "Rig online", "Connected to " + cfg.Server.URL, true
	}
	return "Rig offline", cfg.Server.URL + " is not responding", true
}

func (a *Application) notify(title, body string) {
	go func() {
		if err := a.notifier.Notify(title, body); err != nil {
			a.log.Debug("notification failed: %v", err)
		}
	}()
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	// GTK4 looks for theme subdirectories (like "hicolor") inside these paths
	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName(common.ConfigDirName)
}

// Host returns the shared services.
func (a *Application) Host() *host.Host {
	return a.host
}

// GetConfig returns the configuration
func (a *Application) GetConfig() *config.Config {
	return a.config
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	settings := gtk.SettingsGetDefault()
	if settings == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", false)
	case common.ThemeDark:
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", true)
	default:
		// auto: leave the system preference alone
	}
}

// ApplyConfig saves cfg and pushes it to the running services.
func (a *Application) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Save(); err != nil {
		return err
	}
	if err := a.host.Reload(cfg); err != nil {
		return err
	}
	a.config = cfg
	a.ApplyTheme(cfg.UI.Theme)
	a.connectServices()

	online := a.host.Online()
	a.window.SetServer(cfg.Server.URL)
	a.window.SetOnline(online)
	a.window.RefreshAllBusy()
	a.tray.SetOnline(online)
	return nil
}

// GetVersion returns the application version
func (a *Application) GetVersion() string {
	return a.version
}

// showWindow brings the main window to the front. Safe to call from any
// goroutine.
func (a *Application) showWindow() {
	glib.IdleAdd(func() {
		if a.window != nil {
			a.window.Present()
		}
	})
}

// Quit ends the application. Closing the window never does.
func (a *Application) Quit() {
	glib.IdleAdd(func() {
		if a.held {
			a.held = false
			a.app.Release()
		}
		a.app.Quit()
	})
}

func (a *Application) onShutdown() {
	a.log.Info("Shutting down")
	a.host.Stop()
	if a.tray != nil {
		a.tray.Stop()
	}
	a.notifier.Close()
}
