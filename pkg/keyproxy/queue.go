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

package keyproxy

import (
	"context"
	"sync"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// requestQueue is a bounded FIFO that rejects rather than blocks when full. Pushes hold
// the read lock so the channel is never closed under a concurrent send.
type requestQueue struct {
	lock   sync.RWMutex
	items  chan *Request
	closed bool
}

func newRequestQueue(capacity int) *requestQueue {
	return &requestQueue{
		items: make(chan *Request, capacity),
	}
}

func (q *requestQueue) push(ctx context.Context, req *Request) error {
	q.lock.RLock()
	defer q.lock.RUnlock()
	if q.closed {
		return i18n.NewError(ctx, msgs.MsgProxyClosed, req.Operation.Method())
	}
	select {
	case q.items <- req:
		return nil
	default:
		return i18n.NewError(ctx, msgs.MsgProxyQueueFull, cap(q.items), req.Operation.Method())
	}
}

func (q *requestQueue) close() {
	q.lock.Lock()
	defer q.lock.Unlock()
	if !q.closed {
		q.closed = true
		close(q.items)
	}
}
