package otp

import (
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/pquerna/otp/totp"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
	"github.com/trungleviet-agilityio/playwright-training/pkg/types"
)

// codeHandler enters a passcode deterministically: a literal code from the
// request wins, otherwise the current 6-digit code is derived from the
// request's shared secret with the standard 30-second time step.
type codeHandler struct {
	interval    time.Duration
	settleTicks int
	log         *logging.Logger

	// now is swappable for deterministic derivation in tests.
	now func() time.Time
}

func newCodeHandler(opts Options, log *logging.Logger) *codeHandler {
	return &codeHandler{
		interval:    opts.Interval,
		settleTicks: opts.SettleTicks,
		log:         log,
		now:         time.Now,
	}
}

func (h *codeHandler) Name() string  { return "totp" }
func (h *codeHandler) Priority() int { return 100 }

func (h *codeHandler) CanHandle(page playwright.Page) bool {
	return Present(page)
}

// Handle fills the derived code, submits, and verifies the prompt clears.
// Without a literal code or a secret there is nothing to derive, and the
// chain falls through to the manual handler.
func (h *codeHandler) Handle(page playwright.Page, req *types.LoginRequest) bool {
	code := req.OTPCode
	if code == "" && req.TOTPSecret != "" {
		derived, err := totp.GenerateCode(req.TOTPSecret, h.now())
		if err != nil {
			h.log.Errorf("failed to derive one-time code: %v", err)
			return false
		}
		code = derived
	}
	if code == "" {
		h.log.Debugf("no one-time code or secret in request")
		return false
	}

	element, found := probe.First(page, inputSelectors)
	if !found {
		h.log.Warnf("passcode prompt detected but no input field found")
		return false
	}
	if err := element.Fill(code); err != nil {
		h.log.Errorf("failed to fill one-time code: %v", err)
		return false
	}
	if !submitCode(page) {
		h.log.Warnf("could not submit one-time code")
		return false
	}

	// The provider verifies the code server-side; give the page a few
	// ticks to settle before concluding.
	cleared := probe.Poll(h.interval, h.settleTicks, func() bool {
		return !Present(page)
	})
	if !cleared {
		h.log.Warnf("passcode prompt still present after submission")
	}
	return cleared
}
