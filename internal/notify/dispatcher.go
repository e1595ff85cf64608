// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package notify

import (
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/go-conn-sync/internal/logger"
	"github.com/MKhiriev/go-conn-sync/models"
)

// DefaultQueueSize is the event buffer of [NewDispatcher] when size <= 0.
const DefaultQueueSize = 256

type event func(Sink)

// Dispatcher is a fire-and-forget [Sink]. Events are queued and delivered to
// the wrapped sink from a single goroutine, in publish order. When the queue
// is full, progress events are dropped; conflicts, errors and completions
// wait for room.
type Dispatcher struct {
	sink   Sink
	queue  chan event
	done   chan struct{}
	logger *logger.Logger

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewDispatcher starts delivering events to sink.
func NewDispatcher(sink Sink, size int, log *logger.Logger) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if sink == nil {
		sink = Nop
	}
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		sink:   sink,
		queue:  make(chan event, size),
		done:   make(chan struct{}),
		logger: log,
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Str("func", "Dispatcher.deliver").Msg("notification sink panicked")
		}
	}()
	ev(d.sink)
}

func (d *Dispatcher) publish(ev event, droppable bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	if droppable {
		select {
		case d.queue <- ev:
		default:
			d.dropped.Add(1)
		}
		return
	}
	d.queue <- ev
}

func (d *Dispatcher) OnProgress(percent int) {
	percent = ClampPercent(percent)
	d.publish(func(s Sink) { s.OnProgress(percent) }, true)
}

func (d *Dispatcher) OnConflict(conflict models.Conflict) {
	d.publish(func(s Sink) { s.OnConflict(conflict) }, false)
}

func (d *Dispatcher) OnError(kind models.ErrorKind, message string) {
	d.publish(func(s Sink) { s.OnError(kind, message) }, false)
}

func (d *Dispatcher) OnComplete(summary models.Summary) {
	d.publish(func(s Sink) { s.OnComplete(summary) }, false)
}

// Dropped returns the number of progress events dropped on a full queue.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting events and waits until queued ones are delivered.
// It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
