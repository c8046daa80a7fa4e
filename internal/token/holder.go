package token

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoToken is reported when no service credential is configured.
var ErrNoToken = errors.New("No API token available")

// DefaultServiceTTL is how long a loaded service credential is trusted
// before it is re-read.
const DefaultServiceTTL = 24 * time.Hour

// Holder lazily loads the service credential from configuration. Nothing
// is read until the first call, so construction never fails.
type Holder struct {
	lookup func() string
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger

	mu          sync.Mutex
	initialized bool
	token       string
	expiresAt   time.Time
}

// NewHolder reads the credential through lookup. A nil lookup reads the
// API_TOKEN environment variable.
func NewHolder(lookup func() string, log *zap.Logger) *Holder {
	if lookup == nil {
		lookup = func() string { return os.Getenv("API_TOKEN") }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Holder{lookup: lookup, ttl: DefaultServiceTTL, now: time.Now, log: log}
}

// Headers returns the default headers of a service call: the
// "Token <credential>" Authorization header and a JSON content type. An
// expired credential is reloaded first; a missing one is reported as
// ErrNoToken.
func (h *Holder) Headers(_ context.Context) (http.Header, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ensureLocked()
	if !h.validLocked() {
		h.refreshLocked()
	}
	if h.token == "" {
		return nil, ErrNoToken
	}

	hdr := make(http.Header)
	hdr.Set("Authorization", "Token "+h.token)
	hdr.Set("Content-Type", "application/json")
	return hdr, nil
}

// Refresh re-reads the credential. It only fails when none is configured.
func (h *Holder) Refresh(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.initialized = true
	h.refreshLocked()
	if h.token == "" {
		return ErrNoToken
	}
	return nil
}

func (h *Holder) ensureLocked() {
	if h.initialized {
		return
	}
	h.initialized = true
	h.refreshLocked()
}

func (h *Holder) validLocked() bool {
	return h.token != "" && h.now().Before(h.expiresAt)
}

func (h *Holder) refreshLocked() {
	tok := h.lookup()
	if tok == "" {
		h.token = ""
		h.expiresAt = time.Time{}
		h.log.Warn("API_TOKEN not set; service calls will fail")
		return
	}
	h.token = tok
	h.expiresAt = h.now().Add(h.ttl)
}
