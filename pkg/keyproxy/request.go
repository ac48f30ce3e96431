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
	"sync/atomic"
	"time"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Request pairs an operation with the sending half of its response channel. It is owned
// by the queue once pushed, and then by the receiver.
type Request struct {
	ID        uuid.UUID
	Operation Operation
	sender    *oneShot
}

// oneShot carries at most one response. Whichever of send or drop happens first wins,
// and a send after the receiving side has gone is a no-op.
type oneShot struct {
	ch           chan Response
	sent         atomic.Bool
	receiverGone atomic.Bool
}

func newOneShot() *oneShot {
	return &oneShot{ch: make(chan Response, 1)}
}

// send reports whether the response was handed to a receiver that was still listening
func (o *oneShot) send(resp Response) bool {
	if !o.sent.CompareAndSwap(false, true) {
		return false
	}
	if o.receiverGone.Load() {
		close(o.ch)
		return false
	}
	o.ch <- resp // buffered, never blocks
	return true
}

func (o *oneShot) drop() {
	if o.sent.CompareAndSwap(false, true) {
		close(o.ch)
	}
}

// ResponseHandle is the receiving half returned by every proxy call. If the request could
// not be queued, Err is set and Wait returns it.
type ResponseHandle struct {
	id       uuid.UUID
	method   Method
	created  time.Time
	shot     *oneShot
	err      error
	waiting  atomic.Bool
	received atomic.Bool
}

func newRequest(op Operation) (*Request, *ResponseHandle) {
	req := &Request{
		ID:        uuid.New(),
		Operation: op,
		sender:    newOneShot(),
	}
	return req, &ResponseHandle{
		id:      req.ID,
		method:  op.Method(),
		created: time.Now(),
		shot:    req.sender,
	}
}

func (h *ResponseHandle) ID() uuid.UUID {
	return h.id
}

func (h *ResponseHandle) Method() Method {
	return h.method
}

func (h *ResponseHandle) Err() error {
	return h.err
}

// Wait blocks until the response arrives, the response channel is disconnected, or ctx
// is done. A response is only ever returned once. A handle has one waiter at a time, and
// a concurrent second Wait returns disconnected immediately.
func (h *ResponseHandle) Wait(ctx context.Context) (Response, error) {
	if h.err != nil {
		return nil, h.err
	}
	if !h.waiting.CompareAndSwap(false, true) {
		return nil, i18n.NewError(ctx, msgs.MsgResponseDisconnected, h.id)
	}
	defer h.waiting.Store(false)
	if h.received.Load() || h.shot.receiverGone.Load() {
		return nil, i18n.NewError(ctx, msgs.MsgResponseDisconnected, h.id)
	}
	select {
	case resp, ok := <-h.shot.ch:
		if !ok {
			return nil, i18n.NewError(ctx, msgs.MsgResponseDisconnected, h.id)
		}
		h.received.Store(true)
		return resp, nil
	case <-ctx.Done():
		return nil, i18n.NewError(ctx, msgs.MsgResponseWaitCancelled, h.id, time.Since(h.created))
	}
}

// Drop abandons the response. The operation still runs to completion if it was queued.
func (h *ResponseHandle) Drop() {
	h.shot.receiverGone.Store(true)
}
