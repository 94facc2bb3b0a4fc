package captcha

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
)

// manualSolver waits for a human to clear the challenge out-of-band. It is
// the universal fallback: it works against any challenge, as long as
// someone is watching the browser.
type manualSolver struct {
	interval time.Duration
	timeout  int
	log      *logging.Logger
}

func newManualSolver(opts Options, log *logging.Logger) *manualSolver {
	return &manualSolver{interval: opts.Interval, timeout: opts.ManualTimeout, log: log}
}

func (s *manualSolver) Name() string  { return "manual" }
func (s *manualSolver) Priority() int { return 10 }

func (s *manualSolver) CanHandle(page playwright.Page) bool {
	return Present(page)
}

func (s *manualSolver) Solve(page playwright.Page) Verdict {
	s.log.Infof("waiting up to %d ticks for manual challenge completion", s.timeout)

	cleared := probe.Poll(s.interval, s.timeout, func() bool {
		return !Present(page)
	})
	if !cleared {
		s.log.Warnf("manual challenge solving timed out")
		return Unsolved
	}
	return Solved
}

// noopSolver skips challenge solving entirely. Intended for trusted
// low-risk flows where the caller knows the challenge never gates login.
type noopSolver struct {
	log *logging.Logger
}

func (s *noopSolver) Name() string  { return "noop" }
func (s *noopSolver) Priority() int { return 0 }

func (s *noopSolver) CanHandle(page playwright.Page) bool { return true }

func (s *noopSolver) Solve(page playwright.Page) Verdict {
	s.log.Infof("noop solver skipping challenge")
	return Solved
}
