// Package keyring stores the optional rig server bearer token.
// It uses the system keyring when available, falling back to an encrypted
// file in the config directory when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dysperse/rigpanel/common"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/hkdf"
)

const probeUser = "rigpanel-probe"

// Store keeps one token per server URL.
type Store struct {
	service string

	mu      sync.Mutex
	useFile bool
	file    *fileStore
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the store for the application, created on first use.
func Default() *Store {
	defaultOnce.Do(func() {
		path := ""
		if dir, err := common.GetConfigDir(); err == nil {
			path = filepath.Join(dir, common.CredentialsFileName)
		}
		defaultStore = New(common.AppID, path)
	})
	return defaultStore
}

// New creates a store. The system keyring is probed once; when it refuses
// writes the encrypted file at fallbackPath is used instead.
func New(service, fallbackPath string) *Store {
	s := &Store{
		service: service,
		file:    newFileStore(fallbackPath, service),
	}
	if err := keyring.Set(service, probeUser, "probe"); err != nil {
		common.LogDebug("System keyring unavailable, using %s: %v", fallbackPath, err)
		s.useFile = true
	} else {
		keyring.Delete(service, probeUser)
	}
	return s
}

// UsesFile reports whether the encrypted file fallback is active.
func (s *Store) UsesFile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useFile
}

func account(server string) (string, error) {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		return "", common.ErrMissingServerURL
	}
	return server, nil
}

// StoreToken saves the token for server.
func (s *Store) StoreToken(server, token string) error {
	acct, err := account(server)
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.useFile {
		err := keyring.Set(s.service, acct, token)
		if err == nil {
			return nil
		}
		common.LogWarn("System keyring write failed, falling back to file: %v", err)
		s.useFile = true
	}
	return s.file.set(acct, token)
}

// GetToken returns the token for server, or ErrCredentialsNotFound.
func (s *Store) GetToken(server string) (string, error) {
	acct, err := account(server)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.useFile {
		token, err := keyring.Get(s.service, acct)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, keyring.ErrNotFound) {
			common.LogDebug("System keyring read failed: %v", err)
		}
	}
	// The file may hold tokens written while the keyring was unavailable.
	return s.file.get(acct)
}

// DeleteToken removes the token for server. Deleting a missing token is
// not an error.
func (s *Store) DeleteToken(server string) error {
	acct, err := account(server)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.useFile {
		if err := keyring.Delete(s.service, acct); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			common.LogDebug("System keyring delete failed: %v", err)
		}
	}
	return s.file.delete(acct)
}

// HasToken reports whether a token is stored for server.
func (s *Store) HasToken(server string) bool {
	_, err := s.GetToken(server)
	return err == nil
}

// fileStore is a JSON map sealed with AES-GCM. The key is derived from
// machine data, so the file only opens on the machine and account that
// wrote it.
type fileStore struct {
	path string
	key  []byte
}

func newFileStore(path, service string) *fileStore {
	return &fileStore{path: path, key: deriveKey(service)}
}

func deriveKey(service string) []byte {
	hostname, _ := os.Hostname()
	secret := fmt.Sprintf("%s-%s-%d", hostname, machineID(), os.Getuid())

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), []byte(service), []byte("rig token store v1"))
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255 blocks of output.
		panic(err)
	}
	return key
}

func machineID() string {
	for _, p := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if data, err := os.ReadFile(p); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return "default-machine-id"
}

func (f *fileStore) load() (map[string]string, error) {
	store := make(map[string]string)
	if f.path == "" {
		return store, nil
	}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	plain, err := f.decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", f.path, err)
	}
	if err := json.Unmarshal(plain, &store); err != nil {
		return nil, err
	}
	return store, nil
}

func (f *fileStore) save(store map[string]string) error {
	if f.path == "" {
		return errors.New("no credentials file configured")
	}
	data, err := json.Marshal(store)
	if err != nil {
		return err
	}
	sealed, err := f.encrypt(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(f.path, sealed, 0600)
}

func (f *fileStore) get(acct string) (string, error) {
	store, err := f.load()
	if err != nil {
		return "", err
	}
	token, ok := store[acct]
	if !ok {
		return "", common.ErrCredentialsNotFound
	}
	return token, nil
}

func (f *fileStore) set(acct, token string) error {
	store, err := f.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking new tokens.
		store = make(map[string]string)
	}
	store[acct] = token
	return f.save(store)
}

func (f *fileStore) delete(acct string) error {
	store, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := store[acct]; !ok {
		return nil
	}
	delete(store, acct)
	return f.save(store)
}

func (f *fileStore) encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := f.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(sealed)), nil
}

func (f *fileStore) decrypt(data []byte) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}
	gcm, err := f.gcm()
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (f *fileStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
