package captcha

import (
	"sort"

	"github.com/playwright-community/playwright-go"

	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
)

// Chain runs solvers in descending priority order until one clears the
// challenge, one aborts, or all are exhausted.
type Chain struct {
	solvers []Solver
	log     *logging.Logger
}

// NewChain builds a chain from a preference list of solver names. Unknown
// names are skipped with a warning. The chain is sorted stably by priority,
// highest first, regardless of preference order.
func NewChain(preferences []string, opts Options, log *logging.Logger) *Chain {
	opts = opts.withDefaults()

	var solvers []Solver
	for _, name := range preferences {
		switch name {
		case "remote":
			solvers = append(solvers, newRemoteSolver(opts, log))
		case "manual":
			solvers = append(solvers, newManualSolver(opts, log))
		case "noop":
			solvers = append(solvers, &noopSolver{log: log})
		default:
			log.Warnf("unknown captcha solver %q, skipping", name)
		}
	}
	sort.SliceStable(solvers, func(i, j int) bool {
		return solvers[i].Priority() > solvers[j].Priority()
	})
	return &Chain{solvers: solvers, log: log}
}

// NewChainWithSolvers builds a chain around caller-supplied solvers,
// applying the same priority ordering.
func NewChainWithSolvers(solvers []Solver, log *logging.Logger) *Chain {
	sorted := append([]Solver(nil), solvers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Chain{solvers: sorted, log: log}
}

// Solvers returns the chain's solvers in execution order.
func (c *Chain) Solvers() []Solver {
	return append([]Solver(nil), c.solvers...)
}

// Clear detects and clears any challenge on the page. No visible challenge
// is an immediate success without invoking a solver. Otherwise solvers run
// in priority order: the first one to report Solved wins, an Aborted verdict
// stops the chain early, and exhaustion is a failure.
func (c *Chain) Clear(page playwright.Page) bool {
	if !Present(page) {
		return true
	}
	c.log.Infof("challenge detected, running %d solver(s)", len(c.solvers))

	for _, solver := range c.solvers {
		if !solver.CanHandle(page) {
			continue
		}
		c.log.Infof("trying captcha solver %s (priority %d)", solver.Name(), solver.Priority())
		switch solver.Solve(page) {
		case Solved:
			c.log.Infof("captcha solver %s cleared the challenge", solver.Name())
			return true
		case Aborted:
			c.log.Warnf("captcha solver %s reported the challenge unsolvable", solver.Name())
			return false
		}
		c.log.Warnf("captcha solver %s gave up, trying next", solver.Name())
	}
	return false
}
