package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	o := defaults()
	o.Config = filepath.Join(t.TempDir(), "missing.json")

	require.NoError(t, load(o, env(nil)))
	assert.Equal(t, DefaultAddress, o.Address)
	assert.Equal(t, DefaultAccessTTL, time.Duration(o.AccessTTL))
	assert.Equal(t, DefaultRefreshTTL, time.Duration(o.RefreshTTL))
	assert.Empty(t, o.DatabaseDSN)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"address": "0.0.0.0:9000",
		"database_dsn": "postgres://file",
		"access_ttl": "1h",
		"cors_origins": ["http://a"]
	}`), 0o600))

	o := defaults()
	require.NoError(t, load(o, env(map[string]string{
		"CONFIG":          path,
		"DATABASE_DSN":    "postgres://env",
		"JWT_SECRET":      "s",
		"CORS_ORIGIN":     "http://b, http://c",
		"AUTH_BURST":      "3",
		"REFRESH_TTL":     "48h",
		"AUTH_RATE_LIMIT": "0.5",
	})))

	assert.Equal(t, "0.0.0.0:9000", o.Address)
	assert.Equal(t, "postgres://env", o.DatabaseDSN, "env overrides the file")
	assert.Equal(t, "s", o.JWTSecret)
	assert.Equal(t, time.Hour, time.Duration(o.AccessTTL))
	assert.Equal(t, 48*time.Hour, time.Duration(o.RefreshTTL))
	assert.Equal(t, []string{"http://b", "http://c"}, o.CORSOrigins)
	assert.Equal(t, 3, o.AuthBurst)
	assert.InDelta(t, 0.5, o.AuthRateLimit, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o600))

	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "broken file", env: map[string]string{"CONFIG": bad}},
		{name: "bad burst", env: map[string]string{"AUTH_BURST": "many"}},
		{name: "bad rate", env: map[string]string{"AUTH_RATE_LIMIT": "-1"}},
		{name: "bad ttl", env: map[string]string{"ACCESS_TTL": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaults()
			o.Config = ""
			assert.Error(t, load(o, env(tt.env)))
		})
	}
}
