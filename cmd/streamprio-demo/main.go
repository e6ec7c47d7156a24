// Command streamprio-demo plays the role of an HTTP/2 connection loop
// driving a streamprio.Scheduler: it opens a small dependency tree,
// marks streams active and closes them along a scripted sequence of
// steps standing in for PRIORITY/HEADERS events, and calls Run once per
// "write opportunity" to print the service order chosen.
//
// Run with: go run ./cmd/streamprio-demo
package main

import (
	"fmt"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/h2prio/streamprio"
)

// stream is what an HTTP/2 implementation would embed a Node inside:
// the scheduler never allocates node storage itself.
type stream struct {
	id   int
	node streamprio.Node
}

func main() {
	// A real connection loop wires the scheduler's trace points into
	// whatever structured-logging backend the rest of the process
	// already uses; stumpy is logiface's own JSON backend.
	backend := stumpy.L.New(
		stumpy.L.WithStumpy(),
		logiface.WithLevel[*stumpy.Event](logiface.LevelTrace),
	)
	log := streamprio.NewLogifaceLogger(backend)
	sched := streamprio.NewScheduler(streamprio.WithLogger(log))

	streams := map[int]*stream{
		1: {id: 1},
		3: {id: 3},
		5: {id: 5},
		7: {id: 7},
	}

	// Stream 1 and 3 are independent, equal-weight root streams.
	// Stream 5 depends on stream 1 (a typical "this response needs
	// that one's bytes first" relationship). Stream 7 arrives later
	// as an exclusive dependent of the root, taking over everything
	// that was there before it.
	sched.Open(sched, &streams[1].node, 16, false)
	sched.Open(sched, &streams[3].node, 16, false)
	sched.Open(&streams[1].node, &streams[5].node, 16, false)

	fmt.Println("-- headers arrive for 1 and 3, both have data ready --")
	sched.SetActive(&streams[1].node)
	sched.SetActive(&streams[3].node)
	writeTurn(sched, streams, 4)

	fmt.Println("-- stream 5 now has data ready too --")
	sched.SetActive(&streams[5].node)
	writeTurn(sched, streams, 4)

	fmt.Println("-- stream 7 opens exclusively at the root --")
	sched.Open(sched, &streams[7].node, 16, true)
	sched.SetActive(&streams[7].node)
	writeTurn(sched, streams, 4)

	fmt.Println("-- stream 7 finishes and closes --")
	sched.Close(&streams[7].node)
	writeTurn(sched, streams, 4)

	for _, id := range []int{5, 1, 3} {
		sched.Close(&streams[id].node)
	}
	sched.Dispose()
}

// writeTurn simulates budget write opportunities: each call to Run
// visits at most one node per call here, since the visitor always
// bails after a single write to model a connection that interleaves
// scheduling decisions with other per-turn I/O work.
func writeTurn(sched *streamprio.Scheduler, streams map[int]*stream, turns int) {
	for i := 0; i < turns; i++ {
		sched.Run(func(n *streamprio.Node) streamprio.Feedback {
			for id, s := range streams {
				if &s.node == n {
					fmt.Printf("serviced stream %d\n", id)
					break
				}
			}
			return streamprio.Feedback{StillActive: true, Bail: true}
		})
	}
}
