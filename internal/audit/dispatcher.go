package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher asynchronously forwards audit events to a sink. A nil
// *Dispatcher is valid and drops everything, so disabled auditing costs a
// single nil check at the call site.
type Dispatcher struct {
	dropIfFull bool
	sink       Sink
	events     chan Event
	quit       chan struct{}
	wg         sync.WaitGroup
	dropped    atomic.Uint64
	closed     atomic.Bool
	closeOnce  sync.Once
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		dropIfFull: cfg.DropIfFull,
		sink:       sink,
		events:     make(chan Event, cfg.BufferSize),
		quit:       make(chan struct{}),
	}

	d.wg.Add(1)
	go d.forward()

	return d
}

func (d *Dispatcher) forward() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// drain flushes whatever is buffered at shutdown without blocking on the
// channel once it empties.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues an event. With DropIfFull the call never blocks and counts
// the overflow; otherwise it waits until the buffer accepts the event, the
// caller's context ends, or the dispatcher shuts down.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.dropIfFull {
		select {
		case d.events <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// Close stops the forwarding goroutine after draining buffered events.
// Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded under DropIfFull pressure.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
