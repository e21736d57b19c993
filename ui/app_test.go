package ui

import (
	"strings"
	"testing"

	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
	"github.com/dysperse/rigpanel/host"
)

func TestOnlineNotice(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := cfg.SetServerURL("http://rig.lan:5000"); err != nil {
		t.Fatal(err)
	}

	title, body, ok := onlineNotice(cfg, true)
	if !ok || title != "Rig online" || !strings.Contains(body, "http://rig.lan:5000") {
		t.Errorf("online notice = %q, %q, %v", title, body, ok)
	}
	title, body, ok = onlineNotice(cfg, false)
	if !ok || title != "Rig offline" || !strings.Contains(body, "not responding") {
		t.Errorf("offline notice = %q, %q, %v", title, body, ok)
	}

	cfg.UI.ShowNotifications = false
	if _, _, ok := onlineNotice(cfg, true); ok {
		t.Error("notifications disabled should produce no notice")
	}
	if _, _, ok := onlineNotice(nil, true); ok {
		t.Error("nil config should produce no notice")
	}
}

func TestOnlineNotice_FollowsHostReload(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := cfg.SetServerURL("http://rig.lan:5000"); err != nil {
		t.Fatal(err)
	}
	h, err := host.New(cfg, host.Options{NoLockEvents: true, Logger: common.NopLogger{}})
	if err != nil {
		t.Fatal(err)
	}

	if _, _, ok := onlineNotice(h.Config(), true); !ok {
		t.Fatal("notifications are on by default")
	}

	quiet := *cfg
	quiet.UI.ShowNotifications = false
	if err := h.Reload(&quiet); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := onlineNotice(h.Config(), true); ok {
		t.Error("the poller callback should see notifications turned off after a reload")
	}
}
