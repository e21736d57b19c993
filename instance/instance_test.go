package instance

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/dysperse/rigpanel/common"
	"github.com/godbus/dbus/v5"
)

func TestCheckReply(t *testing.T) {
	tests := []struct {
		reply       dbus.RequestNameReply
		wantErr     bool
		wantRunning bool
	}{
		{dbus.RequestNameReplyPrimaryOwner, false, false},
		{dbus.RequestNameReplyAlreadyOwner, false, false},
		{dbus.RequestNameReplyExists, true, true},
		{dbus.RequestNameReplyInQueue, true, true},
		{dbus.RequestNameReply(42), true, false},
	}
	for _, tt := range tests {
		err := checkReply(tt.reply, common.BusName)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkReply(%d) error = %v, wantErr %v", tt.reply, err, tt.wantErr)
		}
		if got := errors.Is(err, common.ErrAlreadyRunning); got != tt.wantRunning {
			t.Errorf("checkReply(%d) ErrAlreadyRunning = %v, want %v", tt.reply, got, tt.wantRunning)
		}
	}
}

func TestRelease_Idempotent(t *testing.T) {
	l := &Lock{name: common.BusName}
	if err := l.Release(); err != nil {
		t.Errorf("Release() on an unowned lock = %v", err)
	}
	if l.Name() != common.BusName {
		t.Errorf("Name() = %q", l.Name())
	}
}

func TestAcquire_SecondHolderRefused(t *testing.T) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		t.Skipf("no session bus: %v", err)
	}
	conn.Close()

	name := fmt.Sprintf("%s.Test.p%d", common.BusName, os.Getpid())
	first, err := Acquire(name)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	if second, err := Acquire(name); !errors.Is(err, common.ErrAlreadyRunning) {
		if second != nil {
			second.Release()
		}
		first.Release()
		t.Fatalf("second Acquire() error = %v, want ErrAlreadyRunning", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	again, err := Acquire(name)
	if err != nil {
		t.Fatalf("Acquire() after Release error = %v", err)
	}
	again.Release()
}
