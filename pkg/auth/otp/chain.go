package otp

import (
	"sort"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// manualHandler waits for a human to complete the passcode step
// out-of-band. Universal fallback.
type manualHandler struct {
	interval time.Duration
	timeout  int
	log      *logging.Logger
}

func newManualHandler(opts Options, log *logging.Logger) *manualHandler {
	return &manualHandler{interval: opts.Interval, timeout: opts.ManualTimeout, log: log}
}

func (h *manualHandler) Name() string  { return "manual" }
func (h *manualHandler) Priority() int { return 10 }

func (h *manualHandler) CanHandle(page playwright.Page) bool {
	return Present(page)
}

func (h *manualHandler) Handle(page playwright.Page, req *types.LoginRequest) bool {
	h.log.Infof("waiting up to %d ticks for manual passcode completion", h.timeout)

	completed := probe.Poll(h.interval, h.timeout, func() bool {
		return !Present(page)
	})
	if !completed {
		h.log.Warnf("manual passcode completion timed out")
	}
	return completed
}

// Chain runs handlers in descending priority order until one completes the
// passcode step or all are exhausted.
type Chain struct {
	handlers []Handler
	log      *logging.Logger
}

// NewChain builds a chain from a preference list of handler names. Unknown
// names are skipped with a warning; ordering is by priority, not
// preference position.
func NewChain(preferences []string, opts Options, log *logging.Logger) *Chain {
	opts = opts.withDefaults()

	var handlers []Handler
	for _, name := range preferences {
		switch name {
		case "totp":
			handlers = append(handlers, newCodeHandler(opts, log))
		case "manual":
			handlers = append(handlers, newManualHandler(opts, log))
		default:
			log.Warnf("unknown otp handler %q, skipping", name)
		}
	}
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority() > handlers[j].Priority()
	})
	return &Chain{handlers: handlers, log: log}
}

// NewChainWithHandlers builds a chain around caller-supplied handlers,
// applying the same priority ordering.
func NewChainWithHandlers(handlers []Handler, log *logging.Logger) *Chain {
	sorted := append([]Handler(nil), handlers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Chain{handlers: sorted, log: log}
}

// Handlers returns the chain's handlers in execution order.
func (c *Chain) Handlers() []Handler {
	return append([]Handler(nil), c.handlers...)
}

// Complete satisfies any passcode prompt on the page. No visible prompt is
// an immediate success without invoking a handler; otherwise capable
// handlers run in priority order and a failed handler falls through to the
// next one.
func (c *Chain) Complete(page playwright.Page, req *types.LoginRequest) bool {
	if !Present(page) {
		return true
	}
	c.log.Infof("passcode prompt detected, running %d handler(s)", len(c.handlers))

	for _, handler := range c.handlers {
		if !handler.CanHandle(page) {
			continue
		}
		c.log.Infof("trying otp handler %s (priority %d)", handler.Name(), handler.Priority())
		if handler.Handle(page, req) {
			c.log.Infof("otp handler %s completed the passcode step", handler.Name())
			return true
		}
		c.log.Warnf("otp handler %s gave up, trying next", handler.Name())
	}
	return false
}
