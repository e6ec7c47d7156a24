package streamprio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/h2prio/streamprio"
)

// run drives sched for up to budget visits, recording the name bound
// to each visited node via names. deactivate, if non-nil, is called
// for every visited node and controls whether it stays active.
func run(sched *streamprio.Scheduler, budget int, names map[*streamprio.Node]string, deactivate func(*streamprio.Node) bool) string {
	var got []string
	left := budget
	sched.Run(func(n *streamprio.Node) streamprio.Feedback {
		got = append(got, names[n])
		left--
		stillActive := true
		if deactivate != nil {
			stillActive = !deactivate(n)
		}
		return streamprio.Feedback{StillActive: stillActive, Bail: left <= 0}
	})
	return strings.Join(got, ",")
}

// deactivateOnce returns a deactivate callback that marks target (and
// only target) inactive the first time it is visited, matching the
// "X deactivated on first visit" scenarios.
func deactivateOnce(target *streamprio.Node) func(*streamprio.Node) bool {
	done := false
	return func(n *streamprio.Node) bool {
		if n == target && !done {
			done = true
			return true
		}
		return false
	}
}

// deactivateAnyOnce deactivates every node in targets the first time
// each is individually visited, matching "deactivate X,Y,Z each on
// first visit" scenarios.
func deactivateAnyOnce(targets ...*streamprio.Node) func(*streamprio.Node) bool {
	seen := make(map[*streamprio.Node]bool, len(targets))
	want := make(map[*streamprio.Node]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}
	return func(n *streamprio.Node) bool {
		if want[n] && !seen[n] {
			seen[n] = true
			return true
		}
		return false
	}
}

func TestRoundRobinEqualWeights(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b, c streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B", &c: "C"}
	sched.Open(sched, &a, 12, false)
	sched.Open(sched, &b, 12, false)
	sched.Open(sched, &c, 12, false)
	sched.SetActive(&a)
	sched.SetActive(&b)
	sched.SetActive(&c)

	require.Equal(t, "A,B,C,A,B,C,A", run(sched, 7, names, nil))
}

func TestSingleActiveLeafRepeats(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b, c streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B", &c: "C"}
	sched.Open(sched, &a, 12, false)
	sched.Open(sched, &b, 12, false)
	sched.Open(sched, &c, 12, false)
	sched.SetActive(&a)

	require.Equal(t, "A,A,A,A", run(sched, 4, names, nil))

	require.Equal(t, "A", run(sched, 4, names, deactivateOnce(&a)))
}

func TestPriorityStarvesLighterSibling(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b, c streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B", &c: "C"}
	sched.Open(sched, &a, 32, false)
	sched.Open(sched, &b, 32, false)
	sched.Open(sched, &c, 12, false)
	sched.SetActive(&a)
	sched.SetActive(&b)
	sched.SetActive(&c)

	require.Equal(t, "A,B,A,B,A", run(sched, 5, names, nil))
	require.Equal(t, "B,A,B,B,B", run(sched, 5, names, deactivateOnce(&a)))
	require.Equal(t, "B,C,C,C,C", run(sched, 5, names, deactivateOnce(&b)))
}

func TestDependencyPromotionOnClose(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b, c, d streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B", &c: "C", &d: "D"}
	sched.Open(sched, &a, 32, false)
	sched.Open(sched, &b, 32, false)
	sched.Open(sched, &c, 12, false)
	sched.Open(&a, &d, 24, false)
	sched.SetActive(&a)
	sched.SetActive(&b)
	sched.SetActive(&c)
	sched.SetActive(&d)

	require.Equal(t, "A,B,A,B,A", run(sched, 5, names, nil))
	require.Equal(t, "B,A,B,D,B,D,B", run(sched, 7, names, deactivateOnce(&a)))
	require.Equal(t, "D,B,D,D,D", run(sched, 5, names, deactivateOnce(&b)))

	sched.Close(&a) // D promotes to root
	sched.SetActive(&b)

	require.Equal(t, "B,D,C", run(sched, 5, names, deactivateAnyOnce(&b, &c, &d)))
}

func TestExclusiveInsertionReordersResumption(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b, c streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B", &c: "C"}
	sched.Open(sched, &a, 32, false)
	sched.Open(sched, &b, 32, false)
	sched.SetActive(&a)
	sched.SetActive(&b)

	require.Equal(t, "A,B,A,B,A", run(sched, 5, names, nil))

	sched.Open(sched, &c, 12, true) // exclusive: A,B become C's children
	require.Equal(t, "A,B,A,B,A", run(sched, 5, names, nil))

	sched.SetActive(&c)
	require.Equal(t, "C,C,C,C,C", run(sched, 5, names, nil))

	require.Equal(t, "C,B,A,B,A", run(sched, 5, names, deactivateOnce(&c)))
}

// firefoxTree builds the dependency shape a Firefox-era HTTP/2 client
// is known to send: three top-level groups of very unequal weight,
// with a nested group and leaves hanging off two of them.
func firefoxTree(sched *streamprio.Scheduler) (g1, g2, g3, g4, g5, r1, r2, r3 *streamprio.Node) {
	g1, g2, g3 = &streamprio.Node{}, &streamprio.Node{}, &streamprio.Node{}
	g4, g5 = &streamprio.Node{}, &streamprio.Node{}
	r1, r2, r3 = &streamprio.Node{}, &streamprio.Node{}, &streamprio.Node{}

	sched.Open(sched, g1, 201, false)
	sched.Open(sched, g2, 101, false)
	sched.Open(sched, g3, 1, false)
	sched.Open(g3, g4, 1, false)
	sched.Open(g1, g5, 1, false)
	sched.Open(g5, r1, 22, false)
	sched.Open(g1, r2, 22, false)
	sched.Open(g1, r3, 22, false)
	return
}

func TestFirefoxShapedTree(t *testing.T) {
	sched := streamprio.NewScheduler()
	g1, g2, g3, g4, g5, r1, r2, r3 := firefoxTree(sched)
	_, _, _ = g2, g3, g4
	names := map[*streamprio.Node]string{r1: "r1", r2: "r2", r3: "r3"}
	_ = g1
	_ = g5

	sched.SetActive(r1)
	require.Equal(t, "r1,r1,r1,r1,r1", run(sched, 5, names, nil))

	sched.SetActive(r2)
	sched.SetActive(r3)
	require.Equal(t, "r2,r3,r2,r3,r2", run(sched, 5, names, nil))

	require.Equal(t, "r3,r2,r1,r1,r1", run(sched, 5, names, deactivateAnyOnce(r2, r3)))

	sched.Close(r2)
	sched.Close(r3)
	require.Equal(t, "r1,r1,r1,r1,r1", run(sched, 5, names, nil))
}

func TestContractViolations(t *testing.T) {
	t.Run("double open", func(t *testing.T) {
		sched := streamprio.NewScheduler()
		var n streamprio.Node
		sched.Open(sched, &n, 16, false)
		require.PanicsWithValue(t, &streamprio.ContractViolation{
			Code:    streamprio.ViolationDoubleOpen,
			Message: "node is already open",
		}, func() { sched.Open(sched, &n, 16, false) })
	})

	t.Run("close not open", func(t *testing.T) {
		sched := streamprio.NewScheduler()
		var n streamprio.Node
		require.Panics(t, func() { sched.Close(&n) })
	})

	t.Run("weight out of range", func(t *testing.T) {
		sched := streamprio.NewScheduler()
		var n streamprio.Node
		require.Panics(t, func() { sched.Open(sched, &n, 0, false) })
		require.Panics(t, func() { sched.Open(sched, &n, 257, false) })
	})

	t.Run("dispose not empty", func(t *testing.T) {
		sched := streamprio.NewScheduler()
		var n streamprio.Node
		sched.Open(sched, &n, 16, false)
		require.Panics(t, func() { sched.Dispose() })
	})

	t.Run("reentrant mutation from visitor", func(t *testing.T) {
		sched := streamprio.NewScheduler()
		var a, b streamprio.Node
		sched.Open(sched, &a, 16, false)
		sched.SetActive(&a)
		require.Panics(t, func() {
			sched.Run(func(n *streamprio.Node) streamprio.Feedback {
				sched.Open(sched, &b, 16, false)
				return streamprio.Feedback{}
			})
		})
	})
}

func TestReprioritizeMovesWeightBucket(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B"}
	sched.Open(sched, &a, 32, false)
	sched.Open(sched, &b, 12, false)
	sched.SetActive(&a)
	sched.SetActive(&b)

	// A dominates while at weight 32.
	require.Equal(t, "A,A", run(sched, 2, names, nil))

	sched.Reprioritize(&a, 1)
	require.Equal(t, 1, a.Weight())

	// Now B (weight 12) dominates.
	got := run(sched, 3, names, nil)
	require.Contains(t, got, "B")
}

func TestClearActiveStopsServiceWithoutClosing(t *testing.T) {
	sched := streamprio.NewScheduler()
	var a, b streamprio.Node
	names := map[*streamprio.Node]string{&a: "A", &b: "B"}
	sched.Open(sched, &a, 16, false)
	sched.Open(sched, &b, 16, false)
	sched.SetActive(&a)
	sched.SetActive(&b)

	require.Equal(t, "A,B,A,B", run(sched, 4, names, nil))

	sched.ClearActive(&a)
	require.False(t, a.Active())

	// A is no longer serviced, but remains open: a second SetActive
	// brings it straight back into rotation without reopening it.
	require.Equal(t, "B,B,B,B", run(sched, 4, names, nil))

	sched.SetActive(&a)
	require.Equal(t, "A,B,A,B", run(sched, 4, names, nil))
}

func TestDisposeEmptySchedulerSucceeds(t *testing.T) {
	sched := streamprio.NewScheduler()
	require.NotPanics(t, func() { sched.Dispose() })
}
