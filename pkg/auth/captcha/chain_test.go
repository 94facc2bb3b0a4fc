package captcha

import (
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trungleviet-agilityio/playwright-training/pkg/logging"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, _ := logging.NewLogger("captcha-test")
	t.Cleanup(func() { log.Close() })
	return log
}

// stubPage simulates challenge presence through page content. presentFn is
// called once per Content read with a 1-based call counter, so tests can
// script "challenge clears on tick N" deterministically.
type stubPage struct {
	playwright.Page

	mu        sync.Mutex
	calls     int
	presentFn func(call int) bool
	evalFn    func(expression string) (interface{}, error)
}

func (p *stubPage) QuerySelector(selector string, options ...playwright.PageQuerySelectorOptions) (playwright.ElementHandle, error) {
	return nil, nil
}

func (p *stubPage) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.presentFn != nil && p.presentFn(p.calls) {
		return "<div>I'm not a robot</div>", nil
	}
	return "<div>welcome back</div>", nil
}

func (p *stubPage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	if p.evalFn != nil {
		return p.evalFn(expression)
	}
	return nil, nil
}

func (p *stubPage) contentReads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// fakeSolver scripts chain behavior.
type fakeSolver struct {
	name     string
	priority int
	capable  bool
	verdict  Verdict
	solved   int
}

func (s *fakeSolver) Name() string                        { return s.name }
func (s *fakeSolver) Priority() int                       { return s.priority }
func (s *fakeSolver) CanHandle(page playwright.Page) bool { return s.capable }

func (s *fakeSolver) Solve(page playwright.Page) Verdict {
	s.solved++
	return s.verdict
}

func challengedPage() *stubPage {
	return &stubPage{presentFn: func(int) bool { return true }}
}

func clearPage() *stubPage {
	return &stubPage{presentFn: func(int) bool { return false }}
}

func TestNewChainOrdersByPriority(t *testing.T) {
	chain := NewChain([]string{"noop", "manual", "remote"}, Options{}, testLogger(t))

	solvers := chain.Solvers()
	require.Len(t, solvers, 3)
	assert.Equal(t, "remote", solvers[0].Name())
	assert.Equal(t, "manual", solvers[1].Name())
	assert.Equal(t, "noop", solvers[2].Name())
}

func TestNewChainSkipsUnknownSolvers(t *testing.T) {
	chain := NewChain([]string{"manual", "telepathy"}, Options{}, testLogger(t))
	require.Len(t, chain.Solvers(), 1)
	assert.Equal(t, "manual", chain.Solvers()[0].Name())
}

func TestChainSortIsStable(t *testing.T) {
	a := &fakeSolver{name: "a", priority: 50}
	b := &fakeSolver{name: "b", priority: 50}
	c := &fakeSolver{name: "c", priority: 90}
	chain := NewChainWithSolvers([]Solver{a, b, c}, testLogger(t))

	solvers := chain.Solvers()
	assert.Equal(t, "c", solvers[0].Name())
	assert.Equal(t, "a", solvers[1].Name(), "equal priorities keep insertion order")
	assert.Equal(t, "b", solvers[2].Name())
}

func TestClearNoChallengeInvokesNoSolver(t *testing.T) {
	solver := &fakeSolver{name: "a", priority: 100, capable: true, verdict: Solved}
	chain := NewChainWithSolvers([]Solver{solver}, testLogger(t))

	assert.True(t, chain.Clear(clearPage()))
	assert.Zero(t, solver.solved, "no solver runs when nothing is on the page")
}

func TestClearFirstCapableSolverWins(t *testing.T) {
	high := &fakeSolver{name: "high", priority: 100, capable: false}
	mid := &fakeSolver{name: "mid", priority: 50, capable: true, verdict: Solved}
	low := &fakeSolver{name: "low", priority: 10, capable: true, verdict: Solved}
	chain := NewChainWithSolvers([]Solver{low, mid, high}, testLogger(t))

	assert.True(t, chain.Clear(challengedPage()))
	assert.Zero(t, high.solved, "incapable solver is skipped")
	assert.Equal(t, 1, mid.solved)
	assert.Zero(t, low.solved, "lower-priority solver never runs after a win")
}

func TestClearUnsolvedFallsThrough(t *testing.T) {
	first := &fakeSolver{name: "first", priority: 100, capable: true, verdict: Unsolved}
	second := &fakeSolver{name: "second", priority: 10, capable: true, verdict: Solved}
	chain := NewChainWithSolvers([]Solver{first, second}, testLogger(t))

	assert.True(t, chain.Clear(challengedPage()))
	assert.Equal(t, 1, first.solved)
	assert.Equal(t, 1, second.solved)
}

func TestClearAbortStopsChainEarly(t *testing.T) {
	first := &fakeSolver{name: "first", priority: 100, capable: true, verdict: Aborted}
	second := &fakeSolver{name: "second", priority: 10, capable: true, verdict: Solved}
	chain := NewChainWithSolvers([]Solver{first, second}, testLogger(t))

	assert.False(t, chain.Clear(challengedPage()))
	assert.Zero(t, second.solved, "an aborted challenge is not retried by weaker solvers")
}

func TestClearExhaustionFails(t *testing.T) {
	only := &fakeSolver{name: "only", priority: 10, capable: true, verdict: Unsolved}
	chain := NewChainWithSolvers([]Solver{only}, testLogger(t))

	assert.False(t, chain.Clear(challengedPage()))
}

func TestManualSolverAbsenceIsSuccess(t *testing.T) {
	// The challenge clears on the third presence check.
	page := &stubPage{presentFn: func(call int) bool { return call < 3 }}
	solver := newManualSolver(Options{Interval: time.Millisecond, ManualTimeout: 50}, testLogger(t))

	assert.Equal(t, Solved, solver.Solve(page))
	assert.Equal(t, 3, page.contentReads(), "success reported on the tick the challenge disappeared")
}

func TestManualSolverTimeoutRunsExactBudget(t *testing.T) {
	page := challengedPage()
	solver := newManualSolver(Options{Interval: time.Millisecond, ManualTimeout: 7}, testLogger(t))

	assert.Equal(t, Unsolved, solver.Solve(page))
	assert.Equal(t, 7, page.contentReads(), "poll loop runs exactly the configured ceiling")
}

func TestRemoteSolverAbsenceIsPrimarySignal(t *testing.T) {
	page := &stubPage{presentFn: func(call int) bool { return call < 2 }}
	solver := newRemoteSolver(Options{Interval: time.Millisecond, RemoteTimeout: 50}, testLogger(t))

	assert.Equal(t, Solved, solver.Solve(page))
}

func TestRemoteSolverSolvedEventConfirms(t *testing.T) {
	page := challengedPage()
	page.evalFn = func(expression string) (interface{}, error) {
		return map[string]interface{}{"solved": true}, nil
	}
	solver := newRemoteSolver(Options{Interval: time.Millisecond, RemoteTimeout: 50}, testLogger(t))

	assert.Equal(t, Solved, solver.Solve(page))
}

func TestRemoteSolverFailedEventAborts(t *testing.T) {
	page := challengedPage()
	page.evalFn = func(expression string) (interface{}, error) {
		return map[string]interface{}{"failed": true}, nil
	}
	solver := newRemoteSolver(Options{Interval: time.Millisecond, RemoteTimeout: 50}, testLogger(t))

	assert.Equal(t, Aborted, solver.Solve(page))
}

func TestRemoteSolverTimeoutRunsExactBudget(t *testing.T) {
	page := challengedPage()
	solver := newRemoteSolver(Options{Interval: time.Millisecond, RemoteTimeout: 5}, testLogger(t))

	assert.Equal(t, Unsolved, solver.Solve(page))
	assert.Equal(t, 5, page.contentReads())
}

func TestNoopSolverAlwaysSolves(t *testing.T) {
	solver := &noopSolver{log: testLogger(t)}
	assert.True(t, solver.CanHandle(challengedPage()))
	assert.Equal(t, Solved, solver.Solve(challengedPage()))
}
