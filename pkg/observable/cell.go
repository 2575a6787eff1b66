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

// Package observable implements single-value reactive cells with synchronous,
// replay-on-subscribe notification.
package observable

import (
	"sync"
	"sync/atomic"
)

// 🗑️ Disposable releases a subscription.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a plain function to Disposable.
type DisposeFunc func()

func (f DisposeFunc) Dispose() { f() }

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// 📦 Cell holds exactly one current value and notifies subscribers whenever it
// is overwritten.
//
// A subscriber may dispose itself or any other subscriber while being
// notified. A Set issued from inside a subscriber supersedes the dispatch in
// progress: subscribers not yet reached by the outer Set only see the newer
// value.
type Cell[T any] struct {
	mu         sync.Mutex
	value      T
	generation uint64
	subs       []*subscriber[T]
}

// 🏭 NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set overwrites the value and invokes every registered subscriber, in
// registration order, before returning.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	c.generation++
	gen := c.generation
	subs := make([]*subscriber[T], len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, s := range subs {
		if c.superseded(gen) {
			return
		}
		if s.active.Load() {
			s.fn(v)
		}
	}
}

func (c *Cell[T]) superseded(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation != gen
}

// Subscribe registers fn and immediately invokes it once with the current
// value. The returned handle unregisters fn; disposing twice is harmless.
func (c *Cell[T]) Subscribe(fn func(T)) Disposable {
	s := &subscriber[T]{fn: fn}
	s.active.Store(true)

	c.mu.Lock()
	c.subs = append(c.subs, s)
	current := c.value
	c.mu.Unlock()

	fn(current)

	return DisposeFunc(func() { c.remove(s) })
}

func (c *Cell[T]) remove(s *subscriber[T]) {
	if !s.active.Swap(false) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// copy-on-write: a dispatch in progress keeps iterating its own snapshot
	next := make([]*subscriber[T], 0, len(c.subs))
	for _, other := range c.subs {
		if other != s {
			next = append(next, other)
		}
	}
	c.subs = next
}

// Subscribers reports how many subscribers are registered.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// SetDistinct sets v only when it differs from the current value.
func SetDistinct[T comparable](c *Cell[T], v T) {
	if c.Get() == v {
		return
	}
	c.Set(v)
}
