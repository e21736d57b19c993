package ui

import (
	"fmt"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/control"
	"github.com/dysperse/rigpanel/rig"
)

// swatches are the one-click colors under the color entry.
var swatches = []string{"ff0000", "ff7f00", "ffff00", "00ff00", "00ffff", "0000ff", "8b00ff", "ffffff"}

// MainWindow represents the main application window.
type MainWindow struct {
	app         *Application
	window      *gtk.ApplicationWindow
	headerBar   *gtk.HeaderBar
	onlineDot   *gtk.Label
	onlineLabel *gtk.Label
	serverLabel *gtk.Label
	colorEntry  *gtk.Entry
	colorSpin   *gtk.Spinner
	statusLabel *gtk.Label

	// bound holds the widgets disabled while their group is in flight.
	bound map[string][]*gtk.Button
}

// NewMainWindow creates a new main window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{
		app:   app,
		bound: make(map[string][]*gtk.Button),
	}

	mw.window = gtk.NewApplicationWindow(app.app)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetIconName(common.ConfigDirName)

	// Clicking X hides the window; the tray keeps the application alive.
	mw.window.SetHideOnClose(true)

	mw.createLayout()
	mw.SetServer(app.config.Server.URL)
	mw.SetOnline(false)

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	mw.headerBar = gtk.NewHeaderBar()

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	menuButton.SetMenuModel(mw.createMenu())
	mw.headerBar.PackEnd(menuButton)

	mw.window.SetTitlebar(mw.headerBar)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	contentBox := gtk.NewBox(gtk.OrientationVertical, 18)
	contentBox.SetMarginTop(common.DialogMargin)
	contentBox.SetMarginBottom(common.DialogMargin)
	contentBox.SetMarginStart(common.DialogMargin)
	contentBox.SetMarginEnd(common.DialogMargin)

	contentBox.Append(mw.createConnectionCard())
	contentBox.Append(mw.createColorSection())
	contentBox.Append(mw.createStyleSection())
	contentBox.Append(mw.createSceneSection())
	contentBox.Append(mw.createLockSection())

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetChild(contentBox)
	mainBox.Append(scrolled)

	mainBox.Append(mw.createStatusBar())

	mw.window.SetChild(mainBox)
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()

	settingsSection := gio.NewMenu()
	settingsSection.Append("Preferences", "app.preferences")
	menu.AppendSection("", &settingsSection.MenuModel)

	appSection := gio.NewMenu()
	appSection.Append("About", "app.about")
	appSection.Append("Quit", "app.quit")
	menu.AppendSection("", &appSection.MenuModel)

	mw.setupActions()

	return menu
}

// setupActions configures menu actions.
func (mw *MainWindow) setupActions() {
	preferencesAction := gio.NewSimpleAction("preferences", nil)
	preferencesAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onPreferences()
	})
	mw.app.app.AddAction(preferencesAction)
	mw.app.app.SetAccelsForAction("app.preferences", []string{"<Control>comma"})

	aboutAction := gio.NewSimpleAction("about", nil)
	aboutAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onAbout()
	})
	mw.app.app.AddAction(aboutAction)

	// Quit really quits; closing the window only hides it.
	quitAction := gio.NewSimpleAction("quit", nil)
	quitAction.ConnectActivate(func(_ *glib.Variant) {
		mw.app.Quit()
	})
	mw.app.app.AddAction(quitAction)
	mw.app.app.SetAccelsForAction("app.quit", []string{"<Control>q"})

	hideAction := gio.NewSimpleAction("hide", nil)
	hideAction.ConnectActivate(func(_ *glib.Variant) {
		mw.window.SetVisible(false)
	})
	mw.app.app.AddAction(hideAction)
	mw.app.app.SetAccelsForAction("app.hide", []string{"<Control>w"})
}

// createConnectionCard shows whether the rig server answers.
func (mw *MainWindow) createConnectionCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationHorizontal, 12)
	card.AddCSSClass("card")
	card.AddCSSClass("connection-card")

	mw.onlineDot = gtk.NewLabel("●")
	mw.onlineDot.AddCSSClass("online-dot")
	card.Append(mw.onlineDot)

	textBox := gtk.NewBox(gtk.OrientationVertical, 2)
	textBox.SetHExpand(true)

	mw.onlineLabel = gtk.NewLabel("")
	mw.onlineLabel.SetXAlign(0)
	mw.onlineLabel.AddCSSClass("heading")
	textBox.Append(mw.onlineLabel)

	mw.serverLabel = gtk.NewLabel("")
	mw.serverLabel.SetXAlign(0)
	mw.serverLabel.AddCSSClass("dim-label")
	mw.serverLabel.AddCSSClass("caption")
	textBox.Append(mw.serverLabel)

	card.Append(textBox)
	return card
}

func (mw *MainWindow) createSection(title string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)
	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	section.Append(label)
	return section
}

// createColorSection builds the color entry and swatches. Every change
// goes through the debounce; only the last one within the window is sent.
func (mw *MainWindow) createColorSection() *gtk.Box {
	section := mw.createSection("RGB color")

	row := gtk.NewBox(gtk.OrientationHorizontal, 8)

	mw.colorEntry = gtk.NewEntry()
	mw.colorEntry.SetPlaceholderText("#ff0000")
	mw.colorEntry.SetMaxLength(7)
	mw.colorEntry.SetHExpand(true)
	mw.colorEntry.ConnectChanged(func() {
		text := strings.TrimSpace(mw.colorEntry.Text())
		if text == "" {
			return
		}
		if err := mw.app.host.Dispatcher().SelectColor(text); err != nil {
			mw.colorEntry.AddCSSClass("error")
			return
		}
		mw.colorEntry.RemoveCSSClass("error")
	})
	row.Append(mw.colorEntry)

	mw.colorSpin = gtk.NewSpinner()
	mw.colorSpin.SetVisible(false)
	row.Append(mw.colorSpin)

	section.Append(row)

	grid := gtk.NewGrid()
	grid.SetColumnSpacing(6)
	grid.SetRowSpacing(6)
	grid.SetColumnHomogeneous(true)
	for i, hex := range swatches {
		hex := hex
		btn := gtk.NewButton()
		btn.AddCSSClass("swatch")
		btn.AddCSSClass("swatch-" + hex)
		btn.SetTooltipText("#" + hex)
		btn.ConnectClicked(func() {
			// Setting the text fires the entry's changed handler.
			mw.colorEntry.SetText("#" + hex)
		})
		grid.Attach(btn, i%len(swatches), i/len(swatches), 1, 1)
	}
	section.Append(grid)

	return section
}

// createStyleSection builds one button per animation style. The buttons
// share one in-flight flag.
func (mw *MainWindow) createStyleSection() *gtk.Box {
	section := mw.createSection("Style")

	grid := gtk.NewGrid()
	grid.SetColumnSpacing(6)
	grid.SetRowSpacing(6)
	grid.SetColumnHomogeneous(true)
	for i, style := range rig.Styles {
		style := style
		btn := gtk.NewButtonWithLabel(style.Label())
		btn.ConnectClicked(func() {
			if mw.app.host.Dispatcher().SetStyle(style) {
				mw.SetStatus("Style: " + style.Label())
			}
		})
		mw.bind(control.KeyStyle, btn)
		grid.Attach(btn, i%3, i/3, 1, 1)
	}
	section.Append(grid)

	return section
}

// createSceneSection builds the ambient lighting presets. Each preset has
// its own in-flight flag.
func (mw *MainWindow) createSceneSection() *gtk.Box {
	section := mw.createSection("Ambient lighting")

	grid := gtk.NewGrid()
	grid.SetColumnSpacing(6)
	grid.SetRowSpacing(6)
	grid.SetColumnHomogeneous(true)
	for i, scene := range rig.Scenes {
		scene := scene
		btn := gtk.NewButtonWithLabel(scene.Name)
		btn.SetTooltipText(scene.Command)
		btn.ConnectClicked(func() {
			if mw.app.host.Dispatcher().SendScene(scene.Command) {
				mw.SetStatus("Scene: " + scene.Name)
			}
		})
		mw.bind(control.AmbientKey(scene.Command), btn)
		grid.Attach(btn, i%4, i/4, 1, 1)
	}
	section.Append(grid)

	return section
}

// createLockSection builds the manual lock/unlock override.
func (mw *MainWindow) createLockSection() *gtk.Box {
	section := mw.createSection("Lock")

	row := gtk.NewBox(gtk.OrientationHorizontal, 8)
	row.SetHomogeneous(true)

	lockBtn := gtk.NewButtonWithLabel("Lock")
	lockBtn.AddCSSClass("destructive-action")
	lockBtn.ConnectClicked(func() {
		if mw.app.host.Dispatcher().TriggerLock(rig.EventLock) {
			mw.SetStatus("Lock sent")
		}
	})
	mw.bind(control.KeyLock, lockBtn)
	row.Append(lockBtn)

	unlockBtn := gtk.NewButtonWithLabel("Unlock")
	unlockBtn.AddCSSClass("suggested-action")
	unlockBtn.ConnectClicked(func() {
		if mw.app.host.Dispatcher().TriggerLock(rig.EventUnlock) {
			mw.SetStatus("Unlock sent")
		}
	})
	mw.bind(control.KeyLock, unlockBtn)
	row.Append(unlockBtn)

	section.Append(row)
	return section
}

// createStatusBar creates the status bar.
func (mw *MainWindow) createStatusBar() *gtk.Box {
	statusBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	statusBar.AddCSSClass("status-bar")

	mw.statusLabel = gtk.NewLabel("Ready")
	mw.statusLabel.SetXAlign(0)
	mw.statusLabel.SetHExpand(true)
	statusBar.Append(mw.statusLabel)

	return statusBar
}

func (mw *MainWindow) bind(key string, btn *gtk.Button) {
	mw.bound[key] = append(mw.bound[key], btn)
}

// RefreshBusy syncs the widgets bound to key with its in-flight flag.
// Must run on the main thread.
func (mw *MainWindow) RefreshBusy(key string) {
	busy := mw.app.host.Dispatcher().Busy(key)

	if key == control.KeyColor {
		mw.colorSpin.SetVisible(busy)
		if busy {
			mw.colorSpin.Start()
		} else {
			mw.colorSpin.Stop()
		}
		return
	}
	for _, btn := range mw.bound[key] {
		btn.SetSensitive(!busy)
		if busy {
			btn.AddCSSClass("busy")
		} else {
			btn.RemoveCSSClass("busy")
		}
	}
}

// RefreshAllBusy re-reads every flag, e.g. after the services were rebuilt.
func (mw *MainWindow) RefreshAllBusy() {
	mw.RefreshBusy(control.KeyColor)
	for key := range mw.bound {
		mw.RefreshBusy(key)
	}
}

// SetOnline updates the connectivity indicator.
func (mw *MainWindow) SetOnline(online bool) {
	mw.onlineDot.RemoveCSSClass("online")
	mw.onlineDot.RemoveCSSClass("offline")
	if online {
		mw.onlineDot.AddCSSClass("online")
		mw.onlineLabel.SetText("Rig online")
	} else {
		mw.onlineDot.AddCSSClass("offline")
		mw.onlineLabel.SetText("Rig offline")
	}
}

// SetServer shows the configured server address.
func (mw *MainWindow) SetServer(url string) {
	mw.serverLabel.SetText(url)
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// Present shows the window if hidden and raises it.
func (mw *MainWindow) Present() {
	mw.window.Present()
}

// SetStatus updates the status text.
func (mw *MainWindow) SetStatus(text string) {
	if mw.statusLabel != nil {
		mw.statusLabel.SetText(text)
	}
}

func (mw *MainWindow) onPreferences() {
	prefsDialog := NewPreferencesDialog(mw)
	prefsDialog.Show()
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)

	about.SetProgramName(common.AppName)
	about.SetLogoIconName(common.ConfigDirName)
	about.SetVersion(mw.app.version)
	about.SetComments(fmt.Sprintf("Remote control for the rig server at %s.\nLocks the rig and mutes this machine when you step away.",
		mw.app.config.Server.URL))
	about.SetLicenseType(gtk.LicenseMITX11)

	about.Show()
}

// showError displays an error dialog.
func (mw *MainWindow) showError(title, message string) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	window.SetTransientFor(&mw.window.Window)
	window.SetModal(true)
	window.SetDefaultSize(350, 150)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)
	mainBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName("dialog-error-symbolic")
	icon.SetPixelSize(48)
	mainBox.Append(icon)

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("heading")
	mainBox.Append(titleLabel)

	msgLabel := gtk.NewLabel(message)
	msgLabel.SetWrap(true)
	msgLabel.SetMaxWidthChars(40)
	mainBox.Append(msgLabel)

	okBtn := gtk.NewButtonWithLabel("OK")
	okBtn.SetHAlign(gtk.AlignCenter)
	okBtn.SetMarginTop(12)
	okBtn.ConnectClicked(func() {
		window.Close()
	})
	mainBox.Append(okBtn)

	window.SetChild(mainBox)
	window.Show()
}
