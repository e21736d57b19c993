// Package ui provides the graphical user interface for Rig Panel.
// This file contains the CSS styles and theming.
package ui

import (
	"fmt"
	"strings"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles; colors derive from currentColor where possible so
// dark and light mode both work.
const appCSS = `
/* Connection card */
.connection-card {
    border-radius: 12px;
    padding: 12px 16px;
    border: 1px solid alpha(currentColor, 0.15);
}

.online-dot {
    font-size: 18px;
}

.online-dot.online {
    color: #2ec27e;
}

.online-dot.offline {
    color: #e01b24;
    opacity: 0.8;
}

/* Color swatches */
button.swatch {
    min-width: 28px;
    min-height: 28px;
    border-radius: 50%;
    border: 1px solid alpha(currentColor, 0.25);
    padding: 0;
}

entry.error {
    border-color: #e01b24;
    outline-color: alpha(#e01b24, 0.5);
}

/* Buttons waiting on the rig */
button.busy {
    opacity: 0.5;
}

/* Lock button */
button.destructive-action {
    background-color: #e01b24;
    color: white;
}

button.destructive-action:hover {
    background-color: #c01c28;
}

/* Preferences */
.preferences-card {
    border-radius: 12px;
}

.settings-title {
    font-weight: 600;
}

/* Status Bar */
.status-bar {
    border-top: 1px solid alpha(currentColor, 0.15);
    padding: 6px 12px;
    opacity: 0.8;
}

/* Entry fields */
entry {
    border-radius: 6px;
    min-height: 34px;
}

/* Flat button */
button.flat {
    background-color: transparent;
}

button.flat:hover {
    background-color: alpha(currentColor, 0.1);
}
`

// swatchCSS paints each swatch button with its own color.
func swatchCSS() string {
	var b strings.Builder
	for _, hex := range swatches {
		fmt.Fprintf(&b, "button.swatch-%s { background: #%s; }\n", hex, hex)
	}
	return b.String()
}

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS + swatchCSS())

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
