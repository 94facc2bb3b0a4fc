// Package browser abstracts "give me a controllable page" behind a Provider
// interface with two implementations: a locally launched Chromium instance
// and a managed remote instance reached over CDP. The Manager prefers the
// configured provider and falls back exactly once to the local one when the
// remote substrate cannot be acquired.
package browser

import (
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
)

// PageOptions configures a single page acquisition.
type PageOptions struct {
	// Provider names the substrate to acquire from ("remote" or "local").
	// Empty uses the manager's configured preference.
	Provider string

	// Headless controls whether a local browser runs without a window.
	Headless bool

	// UserAgent overrides the default user agent when non-empty.
	UserAgent string

	// SolveChallenges hints a managed substrate to enable its automatic
	// challenge solving for this session.
	SolveChallenges bool
}

// Lease is a scoped page acquisition. Close releases every substrate
// resource behind the page and must run on every exit path.
type Lease struct {
	Page      playwright.Page
	closeOnce sync.Once
	closeFn   func()
}

// Close tears down the lease. Safe to call multiple times.
func (l *Lease) Close() {
	l.closeOnce.Do(func() {
		if l.closeFn != nil {
			l.closeFn()
		}
	})
}

// Provider acquires controllable pages from one browser substrate.
type Provider interface {
	Name() string
	Acquire(opts PageOptions) (*Lease, error)
}

// Stats counts page acquisitions for observability. The counters never
// gate behavior.
type Stats struct {
	Attempted int64
	Succeeded int64
	Failed    int64
	Fallbacks int64
}

// Manager wraps a preferred and a fallback provider behind one scoped
// acquisition call.
type Manager struct {
	mu        sync.Mutex
	pw        *playwright.Playwright
	preferred Provider
	fallback  Provider
	log       *logging.Logger
	stats     Stats
}

// NewManager starts the Playwright driver once and wires providers from the
// configured preference. When the remote substrate is preferred, the local
// one is installed as the single fallback level.
func NewManager(provider, wsEndpoint, userAgent string, navigationTimeoutMillis float64, log *logging.Logger) (*Manager, error) {
	if err := playwright.Install(&playwright.RunOptions{Verbose: false}); err != nil {
		return nil, fmt.Errorf("failed to install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	local := &LocalProvider{pw: pw, userAgent: userAgent, timeoutMillis: navigationTimeoutMillis}

	m := &Manager{pw: pw, log: log}
	if provider == "remote" && wsEndpoint != "" {
		m.preferred = &RemoteProvider{pw: pw, endpoint: wsEndpoint, userAgent: userAgent, timeoutMillis: navigationTimeoutMillis}
		m.fallback = local
	} else {
		if provider == "remote" {
			log.Warnf("remote browser preferred but no ws endpoint configured, using local")
		}
		m.preferred = local
	}
	return m, nil
}

// NewManagerWithProviders builds a Manager around caller-supplied providers.
func NewManagerWithProviders(preferred, fallback Provider, log *logging.Logger) *Manager {
	return &Manager{preferred: preferred, fallback: fallback, log: log}
}

// WithPage acquires a page, runs fn against it, and guarantees teardown on
// every exit path. If acquiring the preferred substrate fails, it retries
// exactly once with the fallback provider; a failure of the body itself is
// never retried. A request naming a substrate in opts.Provider pins that
// substrate and disables the fallback step.
func (m *Manager) WithPage(opts PageOptions, fn func(playwright.Page) error) error {
	m.count(func(s *Stats) { s.Attempted++ })
	preferred, fallback := m.pick(opts.Provider)

	lease, err := preferred.Acquire(opts)
	if err != nil {
		if fallback == nil {
			m.count(func(s *Stats) { s.Failed++ })
			return fmt.Errorf("failed to acquire %s browser: %w", preferred.Name(), err)
		}
		m.log.Warnf("%s browser unavailable (%v), falling back to %s", preferred.Name(), err, fallback.Name())
		m.count(func(s *Stats) { s.Fallbacks++ })

		lease, err = fallback.Acquire(opts)
		if err != nil {
			m.count(func(s *Stats) { s.Failed++ })
			return fmt.Errorf("failed to acquire %s browser after fallback: %w", fallback.Name(), err)
		}
	}
	defer lease.Close()

	if err := fn(lease.Page); err != nil {
		m.count(func(s *Stats) { s.Failed++ })
		return err
	}
	m.count(func(s *Stats) { s.Succeeded++ })
	return nil
}

// pick resolves the acquisition order for one request. Asking for the
// substrate the manager already prefers keeps the normal fallback step;
// asking for the fallback substrate pins it, since falling back from an
// explicitly requested provider would hand the caller the one it asked to
// avoid. Unknown names keep the configured preference.
func (m *Manager) pick(requested string) (Provider, Provider) {
	switch {
	case requested == "" || requested == m.preferred.Name():
		return m.preferred, m.fallback
	case m.fallback != nil && requested == m.fallback.Name():
		return m.fallback, nil
	default:
		m.log.Warnf("unknown browser provider %q requested, using %s", requested, m.preferred.Name())
		return m.preferred, m.fallback
	}
}

// Stats returns a snapshot of the acquisition counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Manager) count(fn func(*Stats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.stats)
}

// Shutdown stops the Playwright driver.
func (m *Manager) Shutdown() error {
	if m.pw == nil {
		return nil
	}
	if err := m.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
