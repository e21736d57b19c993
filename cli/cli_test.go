package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
	"github.com/dysperse/rigpanel/rig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: map[string]string{}}
}

func (m *memTokens) StoreToken(server, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[server] = token
	return nil
}

func (m *memTokens) GetToken(server string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[server]
	if !ok {
		return "", common.ErrCredentialsNotFound
	}
	return token, nil
}

func (m *memTokens) DeleteToken(server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, server)
	return nil
}

type recorder struct {
	mu       sync.Mutex
	requests []string
	auth     string
	status   string
}

func newServer(t *testing.T, status string) (*httptest.Server, *recorder) {
	rec := &recorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.requests = append(rec.requests, r.URL.RequestURI())
		rec.auth = r.Header.Get("Authorization")
		rec.mu.Unlock()
		if r.URL.Path == "/" {
			json.NewEncoder(w).Encode(map[string]string{"status": rec.status})
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return ""
	}
	return r.requests[len(r.requests)-1]
}

func newTestCLI(t *testing.T, url string, tokens TokenStore) (*CLI, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.SetServerURL(url))

	c, err := NewWithStore(cfg, tokens)
	require.NoError(t, err)
	var out bytes.Buffer
	c.SetOutput(&out)
	return c, &out
}

func TestNew_RequiresServer(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	_, err = NewWithStore(cfg, newMemTokens())
	assert.ErrorIs(t, err, common.ErrMissingServerURL)
}

func TestStatus(t *testing.T) {
	t.Run("online", func(t *testing.T) {
		srv, _ := newServer(t, "ONLINE")
		c, out := newTestCLI(t, srv.URL, nil)

		require.NoError(t, c.Status(context.Background()))
		assert.Contains(t, out.String(), "ONLINE")
		assert.Contains(t, out.String(), srv.URL)
	})

	t.Run("unexpected body", func(t *testing.T) {
		srv, _ := newServer(t, "BOOTING")
		c, out := newTestCLI(t, srv.URL, nil)

		err := c.Status(context.Background())
		assert.ErrorIs(t, err, common.ErrUnexpectedStatus)
		assert.Contains(t, out.String(), "OFFLINE")
	})

	t.Run("unreachable", func(t *testing.T) {
		srv, _ := newServer(t, "ONLINE")
		url := srv.URL
		srv.Close()
		c, out := newTestCLI(t, url, nil)

		err := c.Status(context.Background())
		assert.ErrorIs(t, err, common.ErrServerUnreachable)
		assert.Contains(t, out.String(), "OFFLINE")
	})
}

func TestCommands(t *testing.T) {
	srv, rec := newServer(t, "ONLINE")
	c, out := newTestCLI(t, srv.URL, nil)
	ctx := context.Background()

	require.NoError(t, c.SetColor(ctx, "#FF8800"))
	assert.Equal(t, "/set-rgb-color?value=ff8800", rec.last())

	require.NoError(t, c.SetStyle(ctx, "Raise-Up"))
	assert.Equal(t, "/set-rgb-style?value=raise_up", rec.last())

	require.NoError(t, c.Scene(ctx, "warm"))
	assert.Equal(t, "/ambient_lighting?value=7e000503ff8c2000ef", rec.last())

	require.NoError(t, c.Lock(ctx, rig.EventUnlock))
	assert.Equal(t, "/lock_event?eventType=UNLOCK", rec.last())

	assert.Contains(t, out.String(), "✓ Color set to #ff8800")
	assert.Contains(t, out.String(), "✓ Scene Warm sent")
}

func TestCommands_RejectBadInput(t *testing.T) {
	srv, rec := newServer(t, "ONLINE")
	c, _ := newTestCLI(t, srv.URL, nil)
	ctx := context.Background()

	assert.ErrorIs(t, c.SetColor(ctx, "orange"), common.ErrInvalidColor)
	assert.ErrorIs(t, c.SetStyle(ctx, "disco"), common.ErrUnknownStyle)
	assert.ErrorIs(t, c.Scene(ctx, "nope"), common.ErrUnknownScene)
	assert.Empty(t, rec.last(), "nothing should reach the server")
}

func TestListScenes(t *testing.T) {
	srv, _ := newServer(t, "ONLINE")
	c, out := newTestCLI(t, srv.URL, nil)

	require.NoError(t, c.ListScenes())
	for _, sc := range rig.Scenes {
		assert.Contains(t, out.String(), sc.Command)
	}
	assert.Contains(t, out.String(), "raise_up")
}

func TestSetToken(t *testing.T) {
	srv, rec := newServer(t, "ONLINE")
	tokens := newMemTokens()
	c, out := newTestCLI(t, srv.URL, tokens)
	c.SetInput(strings.NewReader("s3cret\n"))

	require.NoError(t, c.SetToken())
	assert.Contains(t, out.String(), "✓ Token stored")

	got, err := tokens.GetToken(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	reloaded, err := config.Load(c.cfg.Path())
	require.NoError(t, err)
	assert.True(t, reloaded.Server.UseToken, "storing a token should enable it")

	// A fresh CLI picks the token up.
	c2, err := NewWithStore(reloaded, tokens)
	require.NoError(t, err)
	c2.SetOutput(&bytes.Buffer{})
	require.NoError(t, c2.Lock(context.Background(), rig.EventLock))
	rec.mu.Lock()
	assert.Equal(t, "Bearer s3cret", rec.auth)
	rec.mu.Unlock()
}

func TestSetToken_Empty(t *testing.T) {
	srv, _ := newServer(t, "ONLINE")
	c, _ := newTestCLI(t, srv.URL, newMemTokens())
	c.SetInput(strings.NewReader("\n"))

	assert.Error(t, c.SetToken())
}

func TestClearToken(t *testing.T) {
	srv, _ := newServer(t, "ONLINE")
	tokens := newMemTokens()
	c, _ := newTestCLI(t, srv.URL, tokens)
	c.SetInput(strings.NewReader("s3cret"))
	require.NoError(t, c.SetToken())

	require.NoError(t, c.ClearToken())

	_, err := tokens.GetToken(srv.URL)
	assert.True(t, errors.Is(err, common.ErrCredentialsNotFound))
	assert.False(t, c.cfg.Server.UseToken)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "<1ms", formatDuration(0))
	assert.Equal(t, "42ms", formatDuration(42_000_000))
	assert.Equal(t, "1.5s", formatDuration(1_500_000_000))
}
