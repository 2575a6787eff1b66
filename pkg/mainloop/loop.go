// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mainloop provides the single "main" execution context that every
// result in catlens is delivered on.
package mainloop

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Executor runs functions on a designated execution context.
type Executor interface {
	Dispatch(fn func())
}

// ErrStopped is returned by Invoke once the loop has stopped running.
var ErrStopped = errors.New("main loop stopped")

// 🔁 Loop is an unbounded FIFO serial executor. Functions posted with Dispatch
// run one at a time, in order, on the goroutine that called Run.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// 🏭 New creates a loop that is not yet running.
func New() *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Dispatch queues fn. It never blocks and is safe from any goroutine.
// Functions queued after the loop stopped are dropped.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.stopped:
		return
	default:
	}

	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes queued functions until ctx is done. Functions still queued at
// that point are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.stopped) })

	zerolog.Ctx(ctx).Debug().Msg("main loop started")

	for {
		select {
		case <-ctx.Done():
			zerolog.Ctx(ctx).Debug().Msg("main loop stopped")
			return ctx.Err()
		case <-l.wake:
		}

		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
			if ctx.Err() != nil {
				break
			}
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil, false
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn, true
}

// Invoke runs fn on the loop and waits for it to return. It must not be called
// from the loop itself.
func (l *Loop) Invoke(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Dispatch(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return errors.Errorf("waiting for main loop: %w", ctx.Err())
	}
}

// Stopped is closed once Run has returned.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}
