package streamprio

// Weight bounds, per RFC 7540 §5.3.2: a stream's weight is an integer
// between 1 and 256, inclusive.
const (
	MinWeight = 1
	MaxWeight = 256
)

// Parent is anything a Node can be opened against: the Scheduler
// root, or another open Node. It is implemented by *Scheduler and
// *Node; callers never implement it themselves.
type Parent interface {
	childQueue() *slotQueue
	owner() *Scheduler
}

// Node is one element of the weighted dependency tree: a stream's
// handle into the scheduler. A Node is zero-value until passed to
// Scheduler.Open, and is caller-allocated — typically as a field
// embedded in the stream object it represents — so opening a node
// never allocates on this package's side.
//
// A Node plays two roles at once, exactly as RFC 7540's dependency
// tree does: it is a leaf that may itself be eligible for service
// (active), and it is the root of a child slot queue that may
// contain eligible descendants, independent of whether the node
// itself is active.
type Node struct {
	sched *Scheduler

	// parent is who n was opened against; Close reparents n's own
	// children here (promoting them to their grandparent) before
	// removing n itself.
	parent Parent

	// bucket links: which weight bucket this node's ring currently
	// lives in, and its neighbours in that ring.
	home     *bucket
	ringNext *Node
	ringPrev *Node

	// children is this node's own slot queue: streams that were
	// opened with this node as their parent.
	children slotQueue

	weight int
	active bool

	// seq records Open order, used to resolve exclusive-insertion
	// reparenting deterministically when several children share a
	// weight (see Scheduler.Open).
	seq uint64
}

var _ Parent = (*Node)(nil)

func (n *Node) childQueue() *slotQueue { return &n.children }
func (n *Node) owner() *Scheduler      { return n.sched }

// Weight returns the node's current weight, valid only while the
// node is open.
func (n *Node) Weight() int { return n.weight }

// Active reports whether the node is currently marked as having data
// ready to send.
func (n *Node) Active() bool { return n.active }

// isOpen reports whether n has been opened and not yet closed.
func (n *Node) isOpen() bool { return n.sched != nil }

// eligible reports whether n is worth visiting: either it is active
// itself, or it has at least one child. Having children does not
// mean some descendant is active; bucket.serve finds that out by
// recursing, and skips n if its subtree turns up nothing.
func (n *Node) eligible() bool {
	return n.active || n.children.nonEmpty()
}
