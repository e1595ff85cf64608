// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package notify delivers sync engine events to the presentation layer.
//
// The engine publishes to a [Sink]. Sinks must not block the engine, so
// anything slow is wrapped in a [Dispatcher], which queues events and
// delivers them from its own goroutine.
package notify

import "github.com/MKhiriev/go-conn-sync/models"

// Sink receives sync engine events.
type Sink interface {
	// OnProgress reports cycle progress in percent, 0 to 100.
	OnProgress(percent int)
	// OnConflict reports a newly detected conflict.
	OnConflict(conflict models.Conflict)
	// OnError reports a classified failure.
	OnError(kind models.ErrorKind, message string)
	// OnComplete reports the outcome of a finished cycle.
	OnComplete(summary models.Summary)
}

// Funcs adapts plain functions to [Sink]. Nil fields are skipped.
type Funcs struct {
	Progress func(percent int)
	Conflict func(conflict models.Conflict)
	Error    func(kind models.ErrorKind, message string)
	Complete func(summary models.Summary)
}

func (f Funcs) OnProgress(percent int) {
	if f.Progress != nil {
		f.Progress(percent)
	}
}

func (f Funcs) OnConflict(conflict models.Conflict) {
	if f.Conflict != nil {
		f.Conflict(conflict)
	}
}

func (f Funcs) OnError(kind models.ErrorKind, message string) {
	if f.Error != nil {
		f.Error(kind, message)
	}
}

func (f Funcs) OnComplete(summary models.Summary) {
	if f.Complete != nil {
		f.Complete(summary)
	}
}

// Nop is a [Sink] that discards everything.
var Nop Sink = Funcs{}

// Multi fans every event out to all sinks in order.
type Multi []Sink

func (m Multi) OnProgress(percent int) {
	for _, s := range m {
		s.OnProgress(percent)
	}
}

func (m Multi) OnConflict(conflict models.Conflict) {
	for _, s := range m {
		s.OnConflict(conflict)
	}
}

func (m Multi) OnError(kind models.ErrorKind, message string) {
	for _, s := range m {
		s.OnError(kind, message)
	}
}

func (m Multi) OnComplete(summary models.Summary) {
	for _, s := range m {
		s.OnComplete(summary)
	}
}

// ClampPercent bounds p to [0, 100].
func ClampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
