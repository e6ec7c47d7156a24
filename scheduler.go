package streamprio

// Scheduler is the connection-level root of a weighted stream
// dependency tree. It is not safe for concurrent use: every method
// must be called from the single goroutine driving one HTTP/2
// connection. Create one with NewScheduler.
type Scheduler struct {
	root      slotQueue
	seq       sequence
	log       Logger
	inVisitor bool
}

var _ Parent = (*Scheduler)(nil)

func (s *Scheduler) childQueue() *slotQueue { return &s.root }
func (s *Scheduler) owner() *Scheduler      { return s }

// NewScheduler constructs an empty scheduler. It never fails: there
// is no I/O, no file, and no network resource to acquire at this
// layer.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{}
	ro := resolveOptions(opts)
	s.log = ro.logger
	return s
}

func (s *Scheduler) guardMutate(op string) {
	if s.inVisitor {
		violate(ViolationReentrant, "%s called from inside a Run visitor callback", op)
	}
}

func (s *Scheduler) checkWeight(weight int) {
	if weight < MinWeight || weight > MaxWeight {
		violate(ViolationWeightRange, "weight %d outside [%d,%d]", weight, MinWeight, MaxWeight)
	}
}

// Open inserts n as a new child of parent, at the given weight, and
// marks it open. parent is either this Scheduler (for a
// root-level stream) or a Node already open in this Scheduler.
//
// If exclusive is true, every node currently parented under parent is
// reparented to become a child of n instead, each keeping its own
// weight — the exclusive-dependency behaviour of RFC 7540 §5.3.1 —
// preserving their original relative open order (see
// slotQueue.drainInOrder).
func (s *Scheduler) Open(parent Parent, n *Node, weight int, exclusive bool) {
	s.guardMutate("Open")
	s.checkWeight(weight)
	if n.isOpen() {
		violate(ViolationDoubleOpen, "node is already open")
	}
	if parent.owner() != s {
		violate(ViolationForeignParent, "parent belongs to a different scheduler")
	}
	if pn, ok := parent.(*Node); ok && !pn.isOpen() {
		violate(ViolationNotOpen, "parent node is not open")
	}

	pq := parent.childQueue()

	var displaced []*Node
	if exclusive {
		displaced = pq.drainInOrder()
	}

	n.sched = s
	n.seq = s.seq.next()
	n.parent = parent
	pq.insert(n, weight)

	for _, c := range displaced {
		c.parent = n
		n.children.insert(c, c.weight)
	}

	s.logOp(LevelTrace, "open", n, "weight", weight, "exclusive", exclusive)
}

// Close removes n from the tree. Any children n has are promoted to
// n's own parent (the grandparent from their perspective), each
// keeping its own weight and active state — mirroring RFC 7540
// §5.3.1's rule for what happens to a dependent stream's children
// when that stream closes, rather than requiring the caller to
// reparent them first.
func (s *Scheduler) Close(n *Node) {
	s.guardMutate("Close")
	s.requireOpen(n)

	promoted := n.children.drainInOrder()
	grandparentQueue := n.parent.childQueue()

	n.home.owningQueue.remove(n)

	for _, c := range promoted {
		c.parent = n.parent
		grandparentQueue.insert(c, c.weight)
	}

	n.sched = nil
	n.parent = nil
	n.active = false
	n.weight = 0

	s.logOp(LevelTrace, "close", n)
}

func (s *Scheduler) requireOpen(n *Node) {
	if !n.isOpen() || n.sched != s {
		violate(ViolationNotOpen, "node is not open in this scheduler")
	}
}

// Reprioritize changes n's weight, moving it to the tail of the
// (possibly new) bucket for that weight within its current parent
// queue. n's own children are untouched — reprioritizing a node never
// reparents anything.
func (s *Scheduler) Reprioritize(n *Node, weight int) {
	s.guardMutate("Reprioritize")
	s.checkWeight(weight)
	s.requireOpen(n)

	q := n.home.owningQueue
	q.remove(n)
	q.insert(n, weight)

	s.logOp(LevelTrace, "reprioritize", n, "weight", weight)
}

// SetActive marks n as having data ready to send. It is idempotent:
// calling it on an already-active node is not a contract violation.
func (s *Scheduler) SetActive(n *Node) {
	s.guardMutate("SetActive")
	s.requireOpen(n)
	n.active = true

	s.logOp(LevelTrace, "set_active", n)
}

// ClearActive marks n as having no data ready to send, without
// closing it. A node with open children is still eligible for
// traversal even while cleared.
func (s *Scheduler) ClearActive(n *Node) {
	s.guardMutate("ClearActive")
	s.requireOpen(n)
	n.active = false
}

// Dispose releases the scheduler. It panics if any node is still
// open: an HTTP/2 connection is expected to close every stream before
// tearing down, and a non-empty Dispose almost always indicates a
// leak at the caller, not a condition to quietly tolerate.
func (s *Scheduler) Dispose() {
	s.guardMutate("Dispose")
	if s.root.size != 0 {
		violate(ViolationDisposeNotEmpty, "scheduler disposed with %d node(s) still open", s.root.size)
	}
}
