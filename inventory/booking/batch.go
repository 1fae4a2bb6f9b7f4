package booking

import "sync"

// batch holds the current value of every request of one Process call.
//
// Workers publish each status change through it. Once sealed, writes from workers that outlived
// the shutdown grace period are dropped, so the BatchResult never changes after Process returned.
type batch struct {
	mu       sync.Mutex
	requests []Request
	sealed   bool
}

func newBatch(requests []Request) *batch {
	return &batch{requests: append([]Request(nil), requests...)}
}

func (b *batch) get(i int) Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.requests[i]
}

func (b *batch) publish(i int, request Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return
	}

	b.requests[i] = request
}

// seal stops further writes and returns a copy of the requests.
func (b *batch) seal() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sealed = true

	return append([]Request(nil), b.requests...)
}
