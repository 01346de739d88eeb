// Package loader decodes models and textures off the main goroutine and
// hands the results back to it through a Dispatcher.
package loader

import "sync"

// Dispatcher queues functions posted from any goroutine and runs them on
// the goroutine that calls Drain. Post never blocks.
type Dispatcher struct {
	mu    sync.Mutex
	queue []func()
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
}

// Drain runs everything queued so far and returns how many ran. Functions
// posted while draining wait for the next call.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Pending reports the number of queued functions.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
