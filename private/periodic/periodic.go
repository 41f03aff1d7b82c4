// Copyright 2026 The MeshDAT Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package periodic runs a task in fixed intervals. Runs never overlap: the
// loop executes the task to completion before it looks at the ticker again.
package periodic

import (
	"context"
	"time"

	"github.com/meshproto/meshdat/pkg/log"
	"github.com/meshproto/meshdat/pkg/metrics"
)

// Ticker decouples the runner from time.Ticker to improve testability.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type defaultTicker struct {
	*time.Ticker
}

func (t *defaultTicker) Chan() <-chan time.Time {
	return t.C
}

// NewTicker returns a Ticker backed by time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return &defaultTicker{Ticker: time.NewTicker(d)}
}

// Task is a piece of work that is executed periodically.
type Task interface {
	// Name returns the tasks name, used in logs and metrics.
	Name() string
	// Run executes the task once. It should return within the context's
	// deadline.
	Run(context.Context)
}

// Metrics contains the optional metrics of a runner. All fields may be nil.
type Metrics struct {
	// Events counts occurrences of the given event type. Event types are
	// "run", "trigger", "stop" and "kill".
	Events func(eventType string) metrics.Counter
	// Runtime is set to the duration of the last run in seconds.
	Runtime metrics.Gauge
}

func (m *Metrics) event(eventType string) {
	if m == nil || m.Events == nil {
		return
	}
	metrics.CounterInc(m.Events(eventType))
}

func (m *Metrics) runtime(d time.Duration) {
	if m == nil {
		return
	}
	metrics.GaugeSet(m.Runtime, d.Seconds())
}

// Runner periodically executes a task.
type Runner struct {
	task         Task
	ticker       Ticker
	timeout      time.Duration
	metrics      *Metrics
	stop         chan struct{}
	loopFinished chan struct{}
	trigger      chan struct{}
	ctx          context.Context
	cancelF      context.CancelFunc
}

// Start runs the task periodically with the given period. The timeout bounds
// the context of each individual run; it may exceed the period.
func Start(task Task, period, timeout time.Duration) *Runner {
	return StartOnTicker(task, NewTicker(period), timeout, nil)
}

// StartWithMetrics is like Start and additionally reports runner events.
func StartWithMetrics(task Task, m *Metrics, period, timeout time.Duration) *Runner {
	return StartOnTicker(task, NewTicker(period), timeout, m)
}

// StartOnTicker runs the task on every tick of the given ticker. It is the
// most general constructor and mainly useful for tests that control time.
func StartOnTicker(task Task, ticker Ticker, timeout time.Duration, m *Metrics) *Runner {
	ctx, cancelF := context.WithCancel(context.Background())
	logger := log.New("periodic_task", task.Name())
	r := &Runner{
		task:         task,
		ticker:       ticker,
		timeout:      timeout,
		metrics:      m,
		stop:         make(chan struct{}),
		loopFinished: make(chan struct{}),
		trigger:      make(chan struct{}),
		ctx:          log.CtxWith(ctx, logger),
		cancelF:      cancelF,
	}
	go func() {
		defer log.HandlePanic()
		r.runLoop()
	}()
	return r
}

// Stop stops the periodic execution of the runner. If the task is currently
// running, Stop blocks until it is done. After Stop returns the task is
// guaranteed to not execute anymore.
func (r *Runner) Stop() {
	r.ticker.Stop()
	close(r.stop)
	<-r.loopFinished
	r.metrics.event("stop")
}

// Kill is like Stop, but it additionally cancels the context of a currently
// running task.
func (r *Runner) Kill() {
	r.ticker.Stop()
	close(r.stop)
	r.cancelF()
	<-r.loopFinished
	r.metrics.event("kill")
}

// TriggerRun triggers the task to run now. The normal periodicity is not
// affected. The call blocks until the run was started, or the runner was
// stopped, in which case the run is not executed.
func (r *Runner) TriggerRun() {
	select {
	case <-r.stop:
	case r.trigger <- struct{}{}:
		r.metrics.event("trigger")
	}
}

func (r *Runner) runLoop() {
	defer close(r.loopFinished)
	defer r.cancelF()
	for {
		select {
		case <-r.stop:
			return
		case <-r.ticker.Chan():
			r.onTick()
		case <-r.trigger:
			r.onTick()
		}
	}
}

func (r *Runner) onTick() {
	// The stop case is evaluated on its own so that a kill racing with a
	// tick always wins.
	select {
	case <-r.stop:
		return
	default:
		ctx, cancelF := context.WithTimeout(r.ctx, r.timeout)
		defer cancelF()
		start := time.Now()
		r.task.Run(ctx)
		r.metrics.runtime(time.Since(start))
		r.metrics.event("run")
	}
}
