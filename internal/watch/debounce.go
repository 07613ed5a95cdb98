package watch

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Debouncer collapses bursts of events for the same logical target into one
// request, emitted once the target has been quiet for a full window. The
// window slides: every new event pushes the deadline out again.
//
// Deadlines live in a per-key map swept by a ticker rather than one timer per
// event, so a noisy producer costs a map write, not a goroutine.
type Debouncer struct {
	clk    clock.Clock
	window time.Duration

	mu       sync.Mutex
	deadline map[Request]time.Time

	out       chan Request
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewDebouncer creates a running Debouncer with the given quiet window.
func NewDebouncer(clk clock.Clock, window time.Duration) *Debouncer {
	if window <= 0 {
		window = 250 * time.Millisecond
	}
	d := &Debouncer{
		clk:      clk,
		window:   window,
		deadline: make(map[Request]time.Time),
		out:      make(chan Request, 64),
		done:     make(chan struct{}),
	}
	// Create the ticker before the sweeper goroutine starts so it is
	// registered with the clock by the time NewDebouncer returns.
	interval := window / 4
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := clk.Ticker(interval)
	d.wg.Add(1)
	go d.sweep(ticker)
	return d
}

// Note records one raw event for a target, sliding its quiet deadline.
func (d *Debouncer) Note(r Request) {
	d.mu.Lock()
	d.deadline[r] = d.clk.Now().Add(d.window)
	d.mu.Unlock()
}

// Requests returns the channel of debounced refresh requests.
func (d *Debouncer) Requests() <-chan Request {
	return d.out
}

// Close stops the sweeper and closes the request channel. Pending targets
// that have not gone quiet are dropped.
func (d *Debouncer) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}

func (d *Debouncer) sweep(ticker *clock.Ticker) {
	defer d.wg.Done()
	defer close(d.out)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case now := <-ticker.C:
			for _, r := range d.expire(now) {
				select {
				case d.out <- r:
				case <-d.done:
					return
				}
			}
		}
	}
}

func (d *Debouncer) expire(now time.Time) []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	var due []Request
	for r, deadline := range d.deadline {
		if !deadline.After(now) {
			due = append(due, r)
			delete(d.deadline, r)
		}
	}
	return due
}
