package streamprio

import "sort"

// bucket is one weight-class ring within a slotQueue: every node
// opened with the same weight, under the same parent, lives in the
// same bucket. cursor points at the node that is "up next" — the
// least recently served member of the ring — so servicing always
// advances fairly through same-weight siblings.
type bucket struct {
	weight int
	cursor *Node

	// owningQueue lets a Node find its way back to the slotQueue
	// holding it (for Close and Reprioritize) without every Node
	// needing a direct pointer to that queue.
	owningQueue *slotQueue
}

// insertTail adds n to the ring immediately before cursor, i.e. as
// the member that will be served last among current occupants.
func (b *bucket) insertTail(n *Node) {
	if b.cursor == nil {
		b.cursor = n
		n.ringNext = n
		n.ringPrev = n
		return
	}
	tail := b.cursor.ringPrev
	tail.ringNext = n
	n.ringPrev = tail
	n.ringNext = b.cursor
	b.cursor.ringPrev = n
}

// unlink removes n from the ring it belongs to, fixing up cursor if
// n was it. Reports whether the ring is now empty.
func (b *bucket) unlink(n *Node) (empty bool) {
	if n.ringNext == n {
		b.cursor = nil
		n.ringNext, n.ringPrev = nil, nil
		return true
	}
	n.ringPrev.ringNext = n.ringNext
	n.ringNext.ringPrev = n.ringPrev
	if b.cursor == n {
		b.cursor = n.ringNext
	}
	n.ringNext, n.ringPrev = nil, nil
	return false
}

// rotate advances the cursor past n, the node just serviced, so the
// next pick in this bucket starts at n's successor. It never moves
// any other node; "moving n to the tail" and "advancing the cursor
// past n" are the same operation on a ring.
func (b *bucket) rotate(n *Node) {
	b.cursor = n.ringNext
}

// serve scans this bucket's ring, starting at the cursor, for the
// first member that is eligible (per Node.eligible), and services it:
// invoking visit directly if it is an active leaf, or recursing into
// its child queue otherwise. Nodes skipped because they are not
// eligible, or because recursing into them turned up nothing despite
// looking eligible (their subtree has gone dry), are never rotated —
// only an actually-serviced node moves the cursor.
func (b *bucket) serve(visit VisitorFunc) (visited bool, bail bool) {
	if b.cursor == nil {
		return false, false
	}
	start := b.cursor
	n := start
	for {
		if n.eligible() {
			if n.active {
				fb := visit(n)
				b.rotate(n)
				if !fb.StillActive {
					n.active = false
				}
				return true, fb.Bail
			}
			if v, bail := n.children.runOnce(visit); v {
				b.rotate(n)
				return true, bail
			}
			// subtree looked non-empty but had nothing currently
			// eligible; keep scanning the ring without rotating.
		}
		n = n.ringNext
		if n == start {
			return false, false
		}
	}
}

// slotQueue is the weight-bucketed ring collection belonging to
// either the Scheduler root or a single Node's children. Selection
// uses a persistent credit counter: every pick serves the heaviest
// bucket at or above the current threshold that has an eligible
// member, leaving the credit unchanged, and only decrements that
// threshold when every such bucket is dry,
// resetting to the heaviest weight present once it reaches zero. This
// is the deficit-round-robin behaviour RFC 7540 describes informally.
type slotQueue struct {
	buckets map[int]*bucket
	weights descendingSet[int]
	credit  int
	size    int
}

func (q *slotQueue) nonEmpty() bool { return q.size > 0 }

func (q *slotQueue) bucketFor(weight int, create bool) *bucket {
	b := q.buckets[weight]
	if b == nil && create {
		if q.buckets == nil {
			q.buckets = make(map[int]*bucket)
		}
		b = &bucket{weight: weight, owningQueue: q}
		q.buckets[weight] = b
		q.weights.Insert(weight)
	}
	return b
}

// insert places n into the bucket for weight, creating the bucket if
// necessary.
func (q *slotQueue) insert(n *Node, weight int) {
	b := q.bucketFor(weight, true)
	b.insertTail(n)
	n.home = b
	n.weight = weight
	q.size++
}

// remove detaches n from the queue it lives in, dropping its bucket
// if that was the last occupant.
func (q *slotQueue) remove(n *Node) {
	b := n.home
	if b.unlink(n) {
		delete(q.buckets, b.weight)
		q.weights.Remove(b.weight)
	}
	n.home = nil
	q.size--
}

// drainInOrder removes every node currently in the queue and returns
// them in service order: heaviest bucket first, and within a bucket
// in original open order. This is the order exclusive insertion
// (Scheduler.Open) uses to reparent a node's existing children under
// a new exclusive child.
//
// New members are linked in just before the cursor, wherever service
// has left it, so ring order is not open order in general. Each
// bucket's members are therefore sorted by Node.seq (stamped at Open).
func (q *slotQueue) drainInOrder() []*Node {
	var out []*Node
	for i := 0; i < q.weights.Len(); i++ {
		w := q.weights.At(i)
		b := q.buckets[w]
		if b == nil || b.cursor == nil {
			continue
		}
		start := len(out)
		n := b.cursor
		for {
			out = append(out, n)
			n = n.ringNext
			if n == b.cursor {
				break
			}
		}
		members := out[start:]
		sort.Slice(members, func(i, j int) bool { return members[i].seq < members[j].seq })
	}
	for _, n := range out {
		q.remove(n)
	}
	return out
}

// runOnce performs a single pick-and-service attempt against this
// queue, returning whether a leaf was visited anywhere in its
// subtrees, and whether the visitor asked to stop.
func (q *slotQueue) runOnce(visit VisitorFunc) (visited bool, bail bool) {
	if q.size == 0 {
		return false, false
	}
	for attempt := 0; attempt <= MaxWeight; attempt++ {
		if q.credit == 0 {
			if q.weights.Len() == 0 {
				return false, false
			}
			q.credit = q.weights.At(0)
		}
		for i := 0; i < q.weights.Len(); i++ {
			w := q.weights.At(i)
			if w < q.credit {
				break
			}
			b := q.buckets[w]
			if b == nil {
				continue
			}
			if v, bail := b.serve(visit); v {
				return true, bail
			}
		}
		q.credit--
	}
	return false, false
}
