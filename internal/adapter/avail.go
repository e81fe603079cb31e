package adapter

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// availabilityTTL is how long a probe result is cached.
// Probing before every invocation would double request volume against the
// tool backends for no signal gain.
const availabilityTTL = time.Minute

// availProbe caches the result of an HTTP availability probe.
type availProbe struct {
	mu        sync.Mutex
	client    *http.Client
	url       string
	lastCheck time.Time
	lastOK    bool
}

// newAvailProbe creates a probe against the given URL.
func newAvailProbe(client *http.Client, url string) *availProbe {
	return &availProbe{client: client, url: url}
}

// available reports whether the backend answered the last probe.
// Results are cached for availabilityTTL.
func (p *availProbe) available(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if time.Since(p.lastCheck) < availabilityTTL {
		return p.lastOK
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, p.url, nil)
	if err != nil {
		p.lastCheck = time.Now()
		p.lastOK = false
		return false
	}

	resp, err := p.client.Do(req)
	p.lastCheck = time.Now()
	if err != nil {
		p.lastOK = false
		return false
	}
	defer resp.Body.Close()

	p.lastOK = resp.StatusCode < http.StatusInternalServerError
	return p.lastOK
}
