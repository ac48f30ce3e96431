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
	"fmt"
	"sync"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/metrics"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/inflight"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Receiver is the single owner of store access. Each turn it delivers the responses of
// any in-flight operations that have finished, then dispatches at most one new request.
// Operations run on their own goroutines under a store lease, so a slow signature does
// not hold up intake or other reads.
//
// Poll and Run must be driven from one goroutine at a time.
type Receiver struct {
	ctx      context.Context
	queue    *requestQueue
	store    *sharedStore
	inflight *inflight.Tracker[uint64, *pendingOperation]
	metrics  metrics.KeystoreProxyMetrics
	nextID   uint64
	drained  bool
	done     chan struct{}
	doneOnce sync.Once
}

type pendingOperation struct {
	request  *Request
	response Response
}

// Done is closed once the proxy is closed, the queue is empty, and every accepted
// request has been answered
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

// Poll runs one scheduling turn without blocking, and reports whether it made progress
func (r *Receiver) Poll() bool {
	progressed := false
	for _, entry := range r.inflight.CollectReady() {
		r.deliver(entry)
		progressed = true
	}
	if !r.drained {
		select {
		case req, ok := <-r.queue.items:
			if ok {
				r.accept(req)
				progressed = true
			} else {
				r.drained = true
			}
		default:
		}
	}
	r.checkFinished()
	return progressed
}

// Run drives the receiver until it is done. Cancelling ctx closes the queue to further
// requests, and Run then returns once everything already accepted has been answered.
func (r *Receiver) Run(ctx context.Context) {
	log.L(r.ctx).Infof("Keystore receiver started")
	defer log.L(r.ctx).Infof("Keystore receiver stopped")

	cancelled := ctx.Done()
	for !r.isDone() {
		if r.Poll() {
			continue
		}
		if r.isDone() {
			return
		}
		var items <-chan *Request
		if !r.drained {
			items = r.queue.items
		}
		select {
		case req, ok := <-items:
			if ok {
				r.accept(req)
			} else {
				r.drained = true
			}
		case <-r.inflight.Ready():
		case <-cancelled:
			log.L(r.ctx).Infof("Receiver context cancelled, draining %d in-flight operations", r.inflight.InFlightCount())
			r.queue.close()
			cancelled = nil
		}
	}
}

func (r *Receiver) accept(req *Request) {
	id := r.nextID
	r.nextID++
	entry := r.inflight.Add(id, &pendingOperation{request: req})
	r.metrics.SetInflight(r.inflight.InFlightCount())

	ctx := log.WithLogField(r.ctx, "op", fmt.Sprintf("%s/%d", req.Operation.Method(), id))
	log.L(ctx).Debugf("Dispatching request %s", req.ID)
	// store work is never cancelled, even when the receiver is told to stop
	go r.execute(context.WithoutCancel(ctx), entry)
}

func (r *Receiver) execute(ctx context.Context, entry *inflight.Entry[uint64, *pendingOperation]) {
	op := entry.Value()
	defer entry.Complete()
	defer func() {
		if panicked := recover(); panicked != nil {
			err := i18n.NewError(ctx, msgs.MsgStoreOperationPanicked, op.request.Operation.Method(), panicked)
			log.L(ctx).Warnf("Store panic: %s", err)
			op.response = failedResponse(op.request.Operation, err)
		}
	}()
	op.response = r.store.run(ctx, op.request.Operation)
}

func (r *Receiver) deliver(entry *inflight.Entry[uint64, *pendingOperation]) {
	op := entry.Value()
	method := string(op.request.Operation.Method())
	r.metrics.ObserveOperation(method, entry.Age())
	r.metrics.SetInflight(r.inflight.InFlightCount())

	if op.response == nil {
		log.L(r.ctx).Errorf("Request %s disconnected: %s", op.request.ID, i18n.NewError(r.ctx, msgs.MsgUnknownOperation, op.request.Operation))
		op.request.sender.drop()
		return
	}
	if op.request.sender.send(op.response) {
		log.L(r.ctx).Debugf("Delivered %s response for request %s after %s", method, op.request.ID, entry.Age())
	} else {
		r.metrics.IncResponseDiscarded(method)
		log.L(r.ctx).Debugf("Discarded %s response for request %s as the caller stopped waiting", method, op.request.ID)
	}
}

func (r *Receiver) checkFinished() {
	if r.drained && r.inflight.InFlightCount() == 0 {
		r.doneOnce.Do(func() { close(r.done) })
	}
}

func (r *Receiver) isDone() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
