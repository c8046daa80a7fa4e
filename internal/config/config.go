// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional JSON file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultAddress       = "localhost:8080"
	DefaultAccessTTL     = 24 * time.Hour
	DefaultRefreshTTL    = 7 * 24 * time.Hour
	DefaultLogLevel      = "Info"
	DefaultAuthRateLimit = 5
	DefaultAuthBurst     = 10
)

// Duration is a time.Duration read from strings such as "24h".
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", b)
	}
	*d = Duration(n)
	return nil
}

// Options holds the configuration values for the server.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// DatabaseDSN holds the database connection string. Empty selects the
	// in-memory store.
	DatabaseDSN string `json:"database_dsn"`

	// JWTSecret signs session tokens. Required.
	JWTSecret string `json:"jwt_secret"`

	AccessTTL  Duration `json:"access_ttl"`
	RefreshTTL Duration `json:"refresh_ttl"`

	// ServiceToken is the internal service credential. Empty disables the
	// service routes.
	ServiceToken string `json:"service_token"`

	// CareTemplates optionally overrides the built-in care templates.
	CareTemplates string `json:"care_templates"`

	LogLevel string `json:"log_level"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `json:"cors_origins"`

	// AuthRateLimit is requests per second per client on the credential
	// endpoints; AuthBurst is the burst size.
	AuthRateLimit float64 `json:"auth_rate_limit"`
	AuthBurst     int     `json:"auth_burst"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = defaults()

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", DefaultAddress, "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", DefaultLogLevel, "log level")
}

func defaults() *Options {
	return &Options{
		Address:       DefaultAddress,
		AccessTTL:     Duration(DefaultAccessTTL),
		RefreshTTL:    Duration(DefaultRefreshTTL),
		LogLevel:      DefaultLogLevel,
		AuthRateLimit: DefaultAuthRateLimit,
		AuthBurst:     DefaultAuthBurst,
	}
}

// Parse loads a .env file if present, parses the command-line flags, reads
// the JSON config file and finally applies environment overrides.
func Parse() (*Options, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	flag.Parse()

	if err := load(options, os.Getenv); err != nil {
		return nil, err
	}
	return options, nil
}

func load(o *Options, getenv func(string) string) error {
	if configPath := getenv("CONFIG"); configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	return applyEnv(o, getenv)
}

func applyEnv(o *Options, getenv func(string) string) error {
	str := map[string]*string{
		"SERVER_ADDRESS": &o.Address,
		"DATABASE_DSN":   &o.DatabaseDSN,
		"JWT_SECRET":     &o.JWTSecret,
		"API_TOKEN":      &o.ServiceToken,
		"CARE_TEMPLATES": &o.CareTemplates,
		"LOG_LEVEL":      &o.LogLevel,
		"TLS_CERT":       &o.TLSCert,
		"TLS_KEY":        &o.TLSKey,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("CORS_ORIGIN"); v != "" {
		o.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				o.CORSOrigins = append(o.CORSOrigins, origin)
			}
		}
	}

	if v := getenv("AUTH_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid AUTH_RATE_LIMIT %q", v)
		}
		o.AuthRateLimit = f
	}
	if v := getenv("AUTH_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid AUTH_BURST %q", v)
		}
		o.AuthBurst = n
	}

	for key, dst := range map[string]*Duration{"ACCESS_TTL": &o.AccessTTL, "REFRESH_TTL": &o.RefreshTTL} {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return fmt.Errorf("invalid %s %q", key, v)
			}
			*dst = Duration(d)
		}
	}
	return nil
}
