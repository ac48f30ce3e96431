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

package cache

import (
	"sync/atomic"

	cacheimpl "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
)

// Cache is a bounded LRU, safe for concurrent use
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, val V)
	Capacity() int
	Clear()
}

type lruCache[K comparable, V any] struct {
	impl     atomic.Pointer[cacheimpl.Cache[K, V]]
	capacity int
}

func NewCache[K comparable, V any](conf *config.CacheConfig, defs *config.CacheConfig) Cache[K, V] {
	c := &lruCache[K, V]{
		capacity: confutil.IntMin(conf.Capacity, 1, *defs.Capacity),
	}
	c.Clear()
	return c
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	return c.impl.Load().Get(key)
}

func (c *lruCache[K, V]) Set(key K, val V) {
	c.impl.Load().Set(key, val)
}

// Clear swaps in an empty cache, as the underlying implementation has no clear
func (c *lruCache[K, V]) Clear() {
	c.impl.Store(cacheimpl.New[K, V](cacheimpl.AsLRU[K, V](
		lru.WithCapacity(c.capacity),
	)))
}

func (c *lruCache[K, V]) Capacity() int {
	return c.capacity
}
