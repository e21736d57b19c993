package rig

import (
	"fmt"
	"strings"

	"github.com/dysperse/rigpanel/common"
)

// OnlineStatus is the status value reported by a healthy server.
const OnlineStatus = "ONLINE"

// Status is the body of the status probe.
type Status struct {
	Status string `json:"status"`
}

// Online reports whether the body says the server is online.
func (s Status) Online() bool {
	return s.Status == OnlineStatus
}

// EventType is a lock event sent to the server.
type EventType string

const (
	EventLock   EventType = "LOCK"
	EventUnlock EventType = "UNLOCK"
)

// ParseEventType accepts "lock" or "unlock" in any case.
func ParseEventType(s string) (EventType, error) {
	switch EventType(strings.ToUpper(strings.TrimSpace(s))) {
	case EventLock:
		return EventLock, nil
	case EventUnlock:
		return EventUnlock, nil
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidEventType, s)
}

// Style is an RGB strip animation mode.
type Style string

const (
	StyleBreath   Style = "breath"
	StyleColorful Style = "colorful"
	StyleFlow     Style = "flow"
	StyleRaiseUp  Style = "raise_up"
	StyleLeap     Style = "leap"
)

// Styles lists every style in display order.
var Styles = []Style{StyleBreath, StyleColorful, StyleFlow, StyleRaiseUp, StyleLeap}

// ParseStyle accepts a style name in any case. "raise-up" is accepted for
// raise_up.
func ParseStyle(s string) (Style, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, st := range Styles {
		if string(st) == name {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownStyle, s)
}

// Label returns a human readable name for buttons.
func (s Style) Label() string {
	switch s {
	case StyleRaiseUp:
		return "Raise up"
	case "":
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// NormalizeColor turns "#FF00aa", "ff00aa" or "#f0a" into "ff00aa".
func NormalizeColor(s string) (string, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidColor, s)
	}
	for _, c := range hex {
		if !isHexDigit(c) {
			return "", fmt.Errorf("%w: %q", common.ErrInvalidColor, s)
		}
	}
	return strings.ToLower(hex), nil
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
