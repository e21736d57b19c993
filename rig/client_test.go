package rig

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dysperse/rigpanel/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   map[string]string
	Header http.Header
}

// fakeRig records every request and answers with the configured handler.
type fakeRig struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeRig) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	}
	if r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeRig) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newFakeRig(t *testing.T) (*fakeRig, *Client) {
	t.Helper()
	fr := &fakeRig{}
	srv := httptest.NewServer(fr)
	t.Cleanup(srv.Close)
	return fr, New(srv.URL+"/", WithLogger(common.NopLogger{}))
}

func TestClient_ControlEndpoints(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		call  func(c *Client) error
		path  string
		key   string
		value string
	}{
		{"color", func(c *Client) error { return c.SetColor(ctx, "#00FF00") }, "/set-rgb-color", "value", "00ff00"},
		{"style", func(c *Client) error { return c.SetStyle(ctx, StyleRaiseUp) }, "/set-rgb-style", "value", "raise_up"},
		{"ambient", func(c *Client) error { return c.SendAmbient(ctx, "7e0004f00001ff00ef") }, "/ambient_lighting", "value", "7e0004f00001ff00ef"},
		{"lock", func(c *Client) error { return c.TriggerLock(ctx, EventLock) }, "/lock_event", "eventType", "LOCK"},
		{"unlock", func(c *Client) error { return c.TriggerLock(ctx, EventUnlock) }, "/lock_event", "eventType", "UNLOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr, c := newFakeRig(t)
			require.NoError(t, tt.call(c))

			req := fr.last(t)
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, []string{tt.value}, req.Query[tt.key])
			assert.NotEmpty(t, req.Header.Get(RequestIDHeader))
		})
	}
}

func TestClient_NotifyLock(t *testing.T) {
	fr, c := newFakeRig(t)

	require.NoError(t, c.NotifyLock(context.Background(), EventLock))

	req := fr.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/lock_event", req.Path)
	assert.Equal(t, map[string]string{"event_type": "LOCK"}, req.Body)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestClient_RejectsInvalidParameters(t *testing.T) {
	fr, c := newFakeRig(t)
	ctx := context.Background()

	assert.ErrorIs(t, c.SetColor(ctx, "red"), common.ErrInvalidColor)
	assert.ErrorIs(t, c.SetStyle(ctx, Style("strobe")), common.ErrUnknownStyle)
	assert.ErrorIs(t, c.TriggerLock(ctx, EventType("NAP")), common.ErrInvalidEventType)
	assert.ErrorIs(t, c.SendAmbient(ctx, ""), common.ErrUnknownScene)

	fr.mu.Lock()
	defer fr.mu.Unlock()
	assert.Empty(t, fr.requests, "invalid parameters must not reach the server")
}

func TestClient_NonSuccessStatus(t *testing.T) {
	fr, c := newFakeRig(t)
	fr.status = http.StatusInternalServerError

	err := c.SetStyle(context.Background(), StyleFlow)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnexpectedStatus)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "/set-rgb-style", se.Path)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base, WithTimeout(time.Second), WithLogger(common.NopLogger{}))
	err := c.SetColor(context.Background(), "ff0000")
	assert.ErrorIs(t, err, common.ErrServerUnreachable)
	assert.False(t, c.Online(context.Background()))
}

func TestClient_BearerToken(t *testing.T) {
	fr := &fakeRig{}
	srv := httptest.NewServer(fr)
	defer srv.Close()

	c := New(srv.URL, WithToken("s3cret"), WithLogger(common.NopLogger{}))
	require.NoError(t, c.SetColor(context.Background(), "ffffff"))
	assert.Equal(t, "Bearer s3cret", fr.last(t).Header.Get("Authorization"))
}

func TestClient_Online(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"online", http.StatusOK, `{"status":"ONLINE"}`, true},
		{"offline body", http.StatusOK, `{"status":"OFFLINE"}`, false},
		{"malformed body", http.StatusOK, `<html>`, false},
		{"empty body", http.StatusOK, ``, false},
		{"server error", http.StatusServiceUnavailable, `{"status":"ONLINE"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr, c := newFakeRig(t)
			fr.status = tt.status
			fr.body = tt.body

			assert.Equal(t, tt.want, c.Online(context.Background()))
			assert.Equal(t, "/", fr.last(t).Path)
		})
	}
}

func TestClient_BaseURLTrimmed(t *testing.T) {
	c := New("http://192.168.1.44:5000///")
	assert.Equal(t, "http://192.168.1.44:5000", c.BaseURL())
}
