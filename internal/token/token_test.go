package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer("", time.Hour, time.Hour)
	assert.Error(t, err)
}

func TestIssuer_IssueAndParse(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	pair, err := iss.Issue(42)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	uid, err := iss.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)

	_, err = iss.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalid, "refresh token must not authenticate requests")
}

func TestIssuer_Refresh(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	pair, err := iss.Issue(7)
	require.NoError(t, err)

	uid, next, err := iss.Refresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(7), uid)

	got, err := iss.ParseAccess(next.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	_, _, err = iss.Refresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIssuer_Expired(t *testing.T) {
	iss, err := NewIssuer("secret", time.Minute, time.Minute)
	require.NoError(t, err)
	start := time.Now()
	iss.now = func() time.Time { return start }
	pair, err := iss.Issue(1)
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestIssuer_WrongSecret(t *testing.T) {
	a, _ := NewIssuer("one", time.Hour, time.Hour)
	b, _ := NewIssuer("two", time.Hour, time.Hour)
	pair, err := a.Issue(1)
	require.NoError(t, err)

	_, err = b.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = b.ParseAccess("garbage")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestHolder_LazyInit(t *testing.T) {
	calls := 0
	h := NewHolder(func() string { calls++; return "svc" }, nil)
	assert.Equal(t, 0, calls, "constructor must not read configuration")

	hdr, err := h.Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token svc", hdr.Get("Authorization"))
	assert.Equal(t, 1, calls)

	_, err = h.Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "valid credential is not re-read")
}

func TestHolder_NoToken(t *testing.T) {
	h := NewHolder(func() string { return "" }, nil)

	hdr, err := h.Headers(context.Background())
	assert.Nil(t, hdr)
	assert.True(t, errors.Is(err, ErrNoToken))
	assert.Equal(t, "No API token available", err.Error())
	assert.ErrorIs(t, h.Refresh(context.Background()), ErrNoToken)
}

func TestHolder_ExpiredReloads(t *testing.T) {
	values := []string{"first", "second"}
	h := NewHolder(func() string {
		v := values[0]
		if len(values) > 1 {
			values = values[1:]
		}
		return v
	}, nil)
	start := time.Now()
	h.now = func() time.Time { return start }

	hdr, err := h.Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token first", hdr.Get("Authorization"))

	hdr, err = h.Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token first", hdr.Get("Authorization"), "unexpired credential is kept")

	h.now = func() time.Time { return start.Add(DefaultServiceTTL + time.Second) }
	hdr, err = h.Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token second", hdr.Get("Authorization"))
}

func TestHolder_Headers(t *testing.T) {
	h := NewHolder(func() string { return "abc" }, nil)
	hdr, err := h.Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Token abc", hdr.Get("Authorization"))
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
}
