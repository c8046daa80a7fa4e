package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	header    string
	err       error
	refreshes int
	onRefresh func()
}

func (f *fakeCreds) Headers(context.Context) (http.Header, error) {
	if f.err != nil {
		return nil, f.err
	}
	hdr := make(http.Header)
	hdr.Set("Authorization", f.header)
	return hdr, nil
}

func (f *fakeCreds) Refresh(context.Context) error {
	f.refreshes++
	if f.onRefresh != nil {
		f.onRefresh()
	}
	return nil
}

func newTestGateway(url string, creds Credentials) *Gateway {
	gw := NewGateway(url, nil, creds, nil)
	gw.Delay = 0
	return gw
}

func TestGateway_MergesHeaders(t *testing.T) {
	var gotAuth, gotTrace, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTrace = r.Header.Get("X-Trace")
		gotType = r.Header.Get("Content-Type")
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	gw := newTestGateway(srv.URL, &fakeCreds{header: "Bearer default"})

	res := gw.Do(context.Background(), http.MethodPost, "x/", WithJSON(map[string]int{"a": 1}),
		WithQuery(map[string][]string{"days": {"7"}}), WithHeader("X-Trace", "t1"))
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "Bearer default", gotAuth)
	assert.Equal(t, "t1", gotTrace)
	assert.Equal(t, "application/json", gotType)

	res = gw.Do(context.Background(), http.MethodGet, "/x/", WithQuery(map[string][]string{"days": {"7"}}),
		WithHeader("Authorization", "Bearer caller"))
	require.True(t, res.OK())
	assert.Equal(t, "Bearer caller", gotAuth, "caller headers win")
}

func TestGateway_RefreshesOn401(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	creds := &fakeCreds{header: "Bearer stale"}
	creds.onRefresh = func() { creds.header = "Bearer fresh" }
	gw := newTestGateway(srv.URL, creds)

	var out map[string]string
	require.NoError(t, gw.Do(context.Background(), http.MethodGet, "/x/").Decode(&out))
	assert.Equal(t, "yes", out["ok"])
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, creds.refreshes)
}

func TestGateway_AuthRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	creds := &fakeCreds{header: "Bearer stale"}
	res := newTestGateway(srv.URL, creds).Do(context.Background(), http.MethodGet, "/x/")

	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "Authentication failed after 3 retries", res.Message)
	assert.True(t, res.AuthError)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, creds.refreshes)
}

func TestGateway_NoAuthDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := newTestGateway(srv.URL, &fakeCreds{header: "Bearer x"}).Do(context.Background(), http.MethodPost, "/login/", NoAuth())
	assert.True(t, res.AuthError)
	assert.Equal(t, "Unauthorized", res.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGateway_MissingCredential(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	res := newTestGateway(srv.URL, &fakeCreds{err: errors.New("No API token available")}).Do(context.Background(), http.MethodGet, "/x/")
	assert.Equal(t, "No API token available", res.Message)
	assert.True(t, res.AuthError)
	assert.Zero(t, calls.Load(), "no anonymous call is made")
}

func TestGateway_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newTestGateway(url, nil).Do(context.Background(), http.MethodGet, "/x/")
	assert.Equal(t, http.StatusInternalServerError, res.Status)
	assert.NotEmpty(t, res.Message)
	assert.Error(t, res.Err())
}
