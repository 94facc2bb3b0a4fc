package captcha

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/auth/probe"
	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
)

// eventListenerScript hooks the console to record the managed substrate's
// solving lifecycle events into a window-scoped flag object the poll loop
// can read back.
const eventListenerScript = `() => {
	if (window.__authChallengeEvents) {
		return;
	}
	window.__authChallengeEvents = { solving: false, solved: false, failed: false };
	const original = console.log;
	console.log = function(...args) {
		const message = args.join(' ').toLowerCase();
		if (message.includes('solving-started')) {
			window.__authChallengeEvents.solving = true;
		} else if (message.includes('solving-finished')) {
			window.__authChallengeEvents.solved = true;
		} else if (message.includes('solving-failed')) {
			window.__authChallengeEvents.failed = true;
		}
		return original.apply(console, args);
	};
}`

// eventStateScript reads the recorded lifecycle flags.
const eventStateScript = `() => window.__authChallengeEvents || {}`

// remoteSolver leans on the managed browser substrate's automatic solving.
// It never interacts with the challenge itself; it watches for the
// challenge to disappear while the remote service works on it.
type remoteSolver struct {
	interval time.Duration
	timeout  int
	log      *logging.Logger
}

func newRemoteSolver(opts Options, log *logging.Logger) *remoteSolver {
	return &remoteSolver{interval: opts.Interval, timeout: opts.RemoteTimeout, log: log}
}

func (s *remoteSolver) Name() string  { return "remote" }
func (s *remoteSolver) Priority() int { return 100 }

func (s *remoteSolver) CanHandle(page playwright.Page) bool {
	return Present(page)
}

// Solve watches the page until the challenge clears or the budget runs out.
// Disappearance of the challenge is the primary success signal; the managed
// service's solving-finished event is a secondary confirmation, and a
// solving-failed event aborts the whole chain since no other solver can do
// better against a challenge the service already gave up on.
func (s *remoteSolver) Solve(page playwright.Page) Verdict {
	if _, err := page.Evaluate(eventListenerScript); err != nil {
		s.log.Debugf("could not install challenge event listener: %v", err)
	}

	verdict := Unsolved
	cleared := probe.Poll(s.interval, s.timeout, func() bool {
		if !Present(page) {
			verdict = Solved
			return true
		}
		switch s.eventState(page) {
		case "solved":
			verdict = Solved
			return true
		case "failed":
			verdict = Aborted
			return true
		}
		return false
	})
	if !cleared {
		s.log.Warnf("remote challenge solving timed out after %d ticks", s.timeout)
	}
	return verdict
}

// eventState reduces the lifecycle flags to one of "solved", "failed", or
// "". Evaluation errors read as no signal.
func (s *remoteSolver) eventState(page playwright.Page) string {
	result, err := page.Evaluate(eventStateScript)
	if err != nil {
		return ""
	}
	events, ok := result.(map[string]interface{})
	if !ok {
		return ""
	}
	if solved, _ := events["solved"].(bool); solved {
		return "solved"
	}
	if failed, _ := events["failed"].(bool); failed {
		return "failed"
	}
	return ""
}
