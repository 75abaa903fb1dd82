package frontier

import (
	"container/list"
	"sort"
	"sync"
	"time"

	"sitewalker/internal/models"
)

// Frontier is the shared crawl work queue: a FIFO of frontier entries plus
// the set of every URL ever enqueued. The visited check and the push are a
// single operation under one mutex, so no two workers can enqueue the same
// URL even when they discover it at the same time.
//
// The frontier also tracks outstanding work: every accepted entry counts as
// outstanding until the worker that dequeued it calls Done. When the count
// drops to zero there is nothing queued and nothing in flight, so the
// frontier closes itself and every blocked Dequeue returns. Workers keep a
// dequeue timeout as a backstop, but the normal shutdown path is this
// rendezvous rather than the timeout.
type Frontier struct {
	mu          sync.Mutex
	cond        *sync.Cond
	queue       *list.List
	visited     map[string]struct{}
	outstanding int
	closed      bool
}

// New returns an empty open frontier.
func New() *Frontier {
	f := &Frontier{
		queue:   list.New(),
		visited: make(map[string]struct{}),
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// TryEnqueue atomically checks whether url was ever enqueued and, if not,
// records it and pushes an entry at the given depth. Reports whether the
// push happened. A false return means a duplicate or a closed frontier.
func (f *Frontier) TryEnqueue(url string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if _, seen := f.visited[url]; seen {
		return false
	}
	f.visited[url] = struct{}{}
	f.queue.PushBack(models.FrontierEntry{URL: url, Depth: depth})
	f.outstanding++
	f.cond.Signal()
	return true
}

// Dequeue pops the oldest entry, blocking up to timeout for one to arrive.
// The second return value is false when the frontier closed or the timeout
// expired; both are normal outcomes, not errors.
func (f *Frontier) Dequeue(timeout time.Duration) (models.FrontierEntry, bool) {
	deadline := time.Now().Add(timeout)

	f.mu.Lock()
	defer f.mu.Unlock()

	for f.queue.Len() == 0 {
		if f.closed {
			return models.FrontierEntry{}, false
		}
		remaining := time.Until(deadline)
		if remaining < time.Millisecond {
			return models.FrontierEntry{}, false
		}
		wakeup := time.AfterFunc(remaining, func() {
			f.mu.Lock()
			f.cond.Broadcast()
			f.mu.Unlock()
		})
		f.cond.Wait()
		wakeup.Stop()
	}

	elem := f.queue.Front()
	f.queue.Remove(elem)
	return elem.Value.(models.FrontierEntry), true
}

// Done marks one previously dequeued entry as fully processed, including
// any child enqueues the worker performed. Must be called exactly once per
// successful Dequeue. When the last outstanding entry finishes the frontier
// closes and wakes every waiting worker.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.outstanding--
	if f.outstanding <= 0 && !f.closed {
		f.closed = true
		f.cond.Broadcast()
	}
}

// Close shuts the frontier down: no further enqueues are accepted and all
// blocked Dequeue calls return. Safe to call more than once.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		f.cond.Broadcast()
	}
}

// Len returns the number of queued, not yet dequeued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Visited returns a sorted snapshot of every URL ever enqueued.
func (f *Frontier) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	urls := make([]string, 0, len(f.visited))
	for u := range f.visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}
