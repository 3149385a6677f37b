package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// ChangeType is the kind of change seen for a package file.
type ChangeType int

const (
	ChangeCreate ChangeType = iota
	ChangeModify
	ChangeDelete
)

func (t ChangeType) String() string {
	switch t {
	case ChangeCreate:
		return "added"
	case ChangeModify:
		return "changed"
	case ChangeDelete:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is the net change to one package file within a batch.
type Change struct {
	Path string
	Type ChangeType
}

// Coalescer folds bursts of filesystem events into batches. Every Add restarts the quiet
// window; when it expires the net change per path is emitted as one batch sorted by path.
type Coalescer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]ChangeType
	timer   *time.Timer
	batches chan []Change
	stopCh  chan struct{}
	stopped bool
	sending sync.WaitGroup
}

// NewCoalescer creates a Coalescer that emits a batch after window without new events.
func NewCoalescer(window time.Duration) *Coalescer {
	return &Coalescer{
		window:  window,
		pending: make(map[string]ChangeType),
		batches: make(chan []Change, 16),
		stopCh:  make(chan struct{}),
	}
}

// Add records a change and restarts the quiet window.
func (c *Coalescer) Add(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}

	if old, ok := c.pending[ch.Path]; ok {
		// A file created and removed inside one window never existed as far as a
		// scan is concerned.
		if old == ChangeCreate && ch.Type == ChangeDelete {
			delete(c.pending, ch.Path)
		} else {
			c.pending[ch.Path] = merge(old, ch.Type)
		}
	} else {
		c.pending[ch.Path] = ch.Type
	}

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, c.flush)
}

// Batches returns the channel of emitted batches. It is closed by Stop.
func (c *Coalescer) Batches() <-chan []Change {
	return c.batches
}

// Stop discards pending changes and closes the batch channel.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
	clear(c.pending)
	c.mu.Unlock()

	close(c.stopCh)
	c.sending.Wait()
	close(c.batches)
}

// PendingCount returns the number of paths waiting for the window to expire.
func (c *Coalescer) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Coalescer) flush() {
	c.mu.Lock()
	if c.stopped || len(c.pending) == 0 {
		c.mu.Unlock()
		return
	}

	batch := make([]Change, 0, len(c.pending))
	for path, t := range c.pending {
		batch = append(batch, Change{Path: path, Type: t})
	}
	clear(c.pending)
	c.sending.Add(1)
	c.mu.Unlock()
	defer c.sending.Done()

	slices.SortFunc(batch, func(a, b Change) int { return strings.Compare(a.Path, b.Path) })

	select {
	case c.batches <- batch:
	case <-c.stopCh:
	}
}

// merge returns the net effect of a change of type next following one of type old.
func merge(old, next ChangeType) ChangeType {
	switch {
	case old == ChangeCreate && next == ChangeModify:
		return ChangeCreate
	case old == ChangeDelete && next == ChangeCreate:
		// Replaced in place.
		return ChangeModify
	default:
		return next
	}
}
