// Package ui provides the graphical user interface for Rig Panel.
// This file contains the PreferencesDialog component for application settings.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
)

// PreferencesDialog represents the preferences dialog.
type PreferencesDialog struct {
	window        *gtk.Window
	mainWindow    *MainWindow
	config        *config.Config
	serverEntry   *gtk.Entry
	tokenSwitch   *gtk.Switch
	lockSwitch    *gtk.Switch
	notifySrvSw   *gtk.Switch
	muteSwitch    *gtk.Switch
	hiddenSwitch  *gtk.Switch
	notifySwitch  *gtk.Switch
	themeDropDown *gtk.DropDown
	themeIDs      []string
}

// NewPreferencesDialog creates a new preferences dialog.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	pd := &PreferencesDialog{
		mainWindow: mainWindow,
		config:     mainWindow.app.config,
	}

	pd.build()
	return pd
}

func newSwitch(active bool) *gtk.Switch {
	sw := gtk.NewSwitch()
	sw.SetActive(active)
	sw.SetVAlign(gtk.AlignCenter)
	return sw
}

// build constructs the dialog UI.
func (pd *PreferencesDialog) build() {
	pd.window = gtk.NewWindow()
	pd.window.SetTitle("Settings")
	pd.window.SetTransientFor(&pd.mainWindow.window.Window)
	pd.window.SetModal(true)
	pd.window.SetDefaultSize(500, 620)
	pd.window.SetResizable(false)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	// ═══════════════════════════════════════════════════════════════════
	// SERVER SECTION
	// ═══════════════════════════════════════════════════════════════════
	serverSection := pd.createSection("Rig server", "network-server-symbolic")
	serverCard := pd.createCard()

	pd.serverEntry = gtk.NewEntry()
	pd.serverEntry.SetText(pd.config.Server.URL)
	pd.serverEntry.SetPlaceholderText("http://192.168.1.44:5000")
	pd.serverEntry.SetWidthChars(24)
	pd.serverEntry.SetVAlign(gtk.AlignCenter)
	serverCard.Append(pd.createSettingRow(
		"Address",
		"Base URL of the rig server",
		pd.serverEntry,
	))

	serverCard.Append(pd.createSeparator())

	pd.tokenSwitch = newSwitch(pd.config.Server.UseToken)
	serverCard.Append(pd.createSettingRow(
		"Send Token",
		"Authenticate with the token stored by --set-token",
		pd.tokenSwitch,
	))

	serverSection.Append(serverCard)
	mainBox.Append(serverSection)

	// ═══════════════════════════════════════════════════════════════════
	// LOCK ON LEAVE SECTION
	// ═══════════════════════════════════════════════════════════════════
	lockSection := pd.createSection("Lock on leave", "system-lock-screen-symbolic")
	lockCard := pd.createCard()

	pd.lockSwitch = newSwitch(pd.config.LockOnLeave.Enabled)
	lockCard.Append(pd.createSettingRow(
		"Enabled",
		"React when this computer locks or unlocks",
		pd.lockSwitch,
	))

	lockCard.Append(pd.createSeparator())

	pd.notifySrvSw = newSwitch(pd.config.LockOnLeave.NotifyServer)
	lockCard.Append(pd.createSettingRow(
		"Lock the Rig",
		"Tell the rig server when you lock or unlock",
		pd.notifySrvSw,
	))

	lockCard.Append(pd.createSeparator())

	pd.muteSwitch = newSwitch(pd.config.LockOnLeave.MuteAudio)
	lockCard.Append(pd.createSettingRow(
		"Mute Audio",
		"Mute this computer while it is locked",
		pd.muteSwitch,
	))

	lockSection.Append(lockCard)
	mainBox.Append(lockSection)

	// ═══════════════════════════════════════════════════════════════════
	// STARTUP & NOTIFICATIONS SECTION
	// ═══════════════════════════════════════════════════════════════════
	generalSection := pd.createSection("General", "preferences-system-symbolic")
	generalCard := pd.createCard()

	pd.hiddenSwitch = newSwitch(pd.config.UI.StartHidden)
	generalCard.Append(pd.createSettingRow(
		"Start in Tray",
		"Do not show the window when Rig Panel starts",
		pd.hiddenSwitch,
	))

	generalCard.Append(pd.createSeparator())

	pd.notifySwitch = newSwitch(pd.config.UI.ShowNotifications)
	generalCard.Append(pd.createSettingRow(
		"Connection Alerts",
		"Show a notification when the rig goes online or offline",
		pd.notifySwitch,
	))

	generalSection.Append(generalCard)
	mainBox.Append(generalSection)

	// ═══════════════════════════════════════════════════════════════════
	// APPEARANCE SECTION
	// ═══════════════════════════════════════════════════════════════════
	appearSection := pd.createSection("Appearance", "preferences-desktop-theme-symbolic")
	appearCard := pd.createCard()

	pd.themeIDs = []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark}
	themeModel := gtk.NewStringList([]string{"System Default", "Light", "Dark"})
	pd.themeDropDown = gtk.NewDropDown(themeModel, nil)
	pd.themeDropDown.SetSelected(pd.findThemeIndex(pd.config.UI.Theme))
	pd.themeDropDown.SetVAlign(gtk.AlignCenter)
	pd.themeDropDown.AddCSSClass("flat")

	appearCard.Append(pd.createSettingRow(
		"Theme",
		"Choose the visual appearance of the application",
		pd.themeDropDown,
	))

	appearSection.Append(appearCard)
	mainBox.Append(appearSection)

	scrolled.SetChild(mainBox)
	rootBox.Append(scrolled)

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(common.DialogMargin)
	buttonBar.SetMarginEnd(common.DialogMargin)
	buttonBar.AddCSSClass("dialog-action-area")

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.AddCSSClass("dialog-button")
	cancelBtn.ConnectClicked(func() {
		pd.window.Close()
	})
	buttonBar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.AddCSSClass("dialog-button")
	saveBtn.ConnectClicked(func() {
		if pd.savePreferences() {
			pd.window.Close()
		}
	})
	buttonBar.Append(saveBtn)

	rootBox.Append(buttonBar)

	pd.window.SetChild(rootBox)
}

// createSection creates a section with icon and title.
func (pd *PreferencesDialog) createSection(title string, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	// Header with icon
	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)

	return section
}

// createCard creates a styled card container for settings.
func (pd *PreferencesDialog) createCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	card.AddCSSClass("preferences-card")
	return card
}

// createSettingRow creates a row with title, description, and widget.
func (pd *PreferencesDialog) createSettingRow(title string, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(14)
	row.SetMarginBottom(14)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	// Text container (title + description)
	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	titleLabel.AddCSSClass("settings-title")
	textBox.Append(titleLabel)

	descLabel := gtk.NewLabel(description)
	descLabel.SetXAlign(0)
	descLabel.AddCSSClass("dim-label")
	descLabel.AddCSSClass("caption")
	descLabel.SetWrap(true)
	descLabel.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
	textBox.Append(descLabel)

	row.Append(textBox)
	row.Append(widget)

	return row
}

// createSeparator creates a styled separator for cards.
func (pd *PreferencesDialog) createSeparator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}

// findThemeIndex returns the index of a theme ID, or 0 if not found.
func (pd *PreferencesDialog) findThemeIndex(themeID string) uint {
	for i, id := range pd.themeIDs {
		if id == themeID {
			return uint(i)
		}
	}
	return 0
}

// savePreferences applies the dialog to a copy of the configuration and
// hands it to the application. It reports false, leaving the dialog open,
// when the input is rejected.
func (pd *PreferencesDialog) savePreferences() bool {
	next := *pd.config

	if err := next.SetServerURL(pd.serverEntry.Text()); err != nil {
		pd.serverEntry.AddCSSClass("error")
		pd.mainWindow.showError("Invalid server address", err.Error())
		return false
	}
	pd.serverEntry.RemoveCSSClass("error")

	next.Server.UseToken = pd.tokenSwitch.Active()
	next.LockOnLeave.Enabled = pd.lockSwitch.Active()
	next.LockOnLeave.NotifyServer = pd.notifySrvSw.Active()
	next.LockOnLeave.MuteAudio = pd.muteSwitch.Active()
	next.UI.StartHidden = pd.hiddenSwitch.Active()
	next.UI.ShowNotifications = pd.notifySwitch.Active()

	themeIdx := pd.themeDropDown.Selected()
	if int(themeIdx) < len(pd.themeIDs) {
		next.UI.Theme = pd.themeIDs[themeIdx]
	}

	if err := pd.mainWindow.app.ApplyConfig(&next); err != nil {
		pd.mainWindow.showError("Error", "Could not save preferences: "+err.Error())
		return false
	}

	pd.mainWindow.SetStatus("Settings saved")
	return true
}

// Show displays the preferences dialog.
func (pd *PreferencesDialog) Show() {
	pd.window.Show()
}
