package keyring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dysperse/rigpanel/common"
	"github.com/zalando/go-keyring"
)

const server = "http://192.168.1.44:5000"

func TestStore_SystemKeyring(t *testing.T) {
	keyring.MockInit()
	path := filepath.Join(t.TempDir(), ".credentials")
	s := New("test-service", path)

	if s.UsesFile() {
		t.Fatal("mock keyring should be used")
	}
	if _, err := s.GetToken(server); !errors.Is(err, common.ErrCredentialsNotFound) {
		t.Errorf("GetToken() before store = %v, want ErrCredentialsNotFound", err)
	}

	if err := s.StoreToken(server+"/", "s3cret"); err != nil {
		t.Fatalf("StoreToken() error = %v", err)
	}
	got, err := s.GetToken(server)
	if err != nil || got != "s3cret" {
		t.Errorf("GetToken() = %q, %v", got, err)
	}
	if common.FileExists(path) {
		t.Error("no credentials file should be written while the keyring works")
	}

	if err := s.DeleteToken(server); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
	if s.HasToken(server) {
		t.Error("token should be gone after DeleteToken")
	}
	if err := s.DeleteToken(server); err != nil {
		t.Errorf("deleting a missing token = %v", err)
	}
}

func TestStore_FileFallback(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	path := filepath.Join(t.TempDir(), "sub", ".credentials")
	s := New("test-service", path)

	if !s.UsesFile() {
		t.Fatal("file fallback should be active")
	}
	if err := s.StoreToken(server, "s3cret"); err != nil {
		t.Fatalf("StoreToken() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Error("credentials file must not contain the token in clear text")
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("credentials file mode = %v, want 0600", info.Mode().Perm())
	}

	// A second store on the same file reads what the first wrote.
	other := New("test-service", path)
	got, err := other.GetToken(server)
	if err != nil || got != "s3cret" {
		t.Errorf("GetToken() from a new store = %q, %v", got, err)
	}

	if err := other.DeleteToken(server); err != nil {
		t.Fatal(err)
	}
	if s.HasToken(server) {
		t.Error("token should be gone after DeleteToken")
	}
}

func TestStore_WrongKeyCannotDecrypt(t *testing.T) {
	keyring.MockInitWithError(errors.New("no secret service"))
	path := filepath.Join(t.TempDir(), ".credentials")

	if err := New("service-a", path).StoreToken(server, "s3cret"); err != nil {
		t.Fatal(err)
	}
	if _, err := New("service-b", path).GetToken(server); err == nil {
		t.Error("a store with a different key should not read the token")
	}
}

func TestStore_RequiresServer(t *testing.T) {
	keyring.MockInit()
	s := New("test-service", filepath.Join(t.TempDir(), ".credentials"))

	if err := s.StoreToken("  ", "x"); !errors.Is(err, common.ErrMissingServerURL) {
		t.Errorf("StoreToken() error = %v", err)
	}
	if err := s.StoreToken(server, ""); err == nil {
		t.Error("empty token should be rejected")
	}
}

func TestDeriveKey(t *testing.T) {
	a, b := deriveKey("one"), deriveKey("two")
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32", len(a))
	}
	if string(a) == string(b) {
		t.Error("different services should derive different keys")
	}
	if string(a) != string(deriveKey("one")) {
		t.Error("key derivation should be deterministic")
	}
}
