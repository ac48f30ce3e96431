/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package inflight

import (
	"sync"
	"time"
)

// Tracker is a set of in-flight tasks keyed by id. Whoever runs a task marks its entry
// complete, and the owner of the tracker collects completed entries in batches after a
// signal on Ready(). Ids must be unique among the entries currently tracked.
type Tracker[K comparable, T any] struct {
	lock    sync.Mutex
	entries map[K]*Entry[K, T]
	ready   []*Entry[K, T]
	signal  chan struct{}
}

type Entry[K comparable, T any] struct {
	tracker   *Tracker[K, T]
	id        K
	value     T
	started   time.Time
	completed bool
}

func NewTracker[K comparable, T any]() *Tracker[K, T] {
	return &Tracker[K, T]{
		entries: make(map[K]*Entry[K, T]),
		signal:  make(chan struct{}, 1),
	}
}

func (t *Tracker[K, T]) Add(id K, value T) *Entry[K, T] {
	e := &Entry[K, T]{
		tracker: t,
		id:      id,
		value:   value,
		started: time.Now(),
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.entries[id] = e
	return e
}

// Ready is signalled at least once after any entry completes. A signal can be stale by
// the time it is received, in which case CollectReady returns nothing.
func (t *Tracker[K, T]) Ready() <-chan struct{} {
	return t.signal
}

// CollectReady removes and returns every entry that has completed, in completion order
func (t *Tracker[K, T]) CollectReady() []*Entry[K, T] {
	t.lock.Lock()
	defer t.lock.Unlock()
	ready := t.ready
	t.ready = nil
	for _, e := range ready {
		delete(t.entries, e.id)
	}
	return ready
}

// InFlightCount includes entries that have completed but not yet been collected
func (t *Tracker[K, T]) InFlightCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.entries)
}

func (t *Tracker[K, T]) complete(e *Entry[K, T]) {
	t.lock.Lock()
	if e.completed || t.entries[e.id] != e {
		t.lock.Unlock()
		return
	}
	e.completed = true
	t.ready = append(t.ready, e)
	t.lock.Unlock()

	// Only one signal needs to be outstanding, so do not block
	select {
	case t.signal <- struct{}{}:
	default:
	}
}

func (e *Entry[K, T]) ID() K {
	return e.id
}

func (e *Entry[K, T]) Value() T {
	return e.value
}

func (e *Entry[K, T]) Age() time.Duration {
	return time.Since(e.started)
}

// Complete can be called from any goroutine, and only the first call has any effect
func (e *Entry[K, T]) Complete() {
	e.tracker.complete(e)
}
