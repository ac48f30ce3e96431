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
	"errors"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/metrics"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/inflight"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
)

// Proxy is the client side of the keystore. Its methods never touch the store, and never
// block: they queue a request for the Receiver and return a handle to the response.
// A Proxy is safe for concurrent use.
type Proxy struct {
	queue   *requestQueue
	metrics metrics.KeystoreProxyMetrics
}

// New returns the two halves of a keystore proxy over store. Metrics are registered on
// registry, or on a private registry if it is nil. A registry can only host one proxy.
func New(ctx context.Context, conf *config.ProxyConfig, store keystore.Store, registry *prometheus.Registry) (*Proxy, *Receiver, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	capacity := confutil.IntMin(conf.QueueCapacity, 1, *config.ProxyDefaults.QueueCapacity)
	queue := newRequestQueue(capacity)
	m, err := metrics.InitMetrics(ctx, registry)
	if err != nil {
		return nil, nil, err
	}

	p := &Proxy{
		queue:   queue,
		metrics: m,
	}
	r := &Receiver{
		ctx:      log.WithLogField(ctx, "role", "keystore-receiver"),
		queue:    queue,
		store:    &sharedStore{store: store},
		inflight: inflight.NewTracker[uint64, *pendingOperation](),
		metrics:  m,
		done:     make(chan struct{}),
	}
	log.L(ctx).Debugf("Keystore proxy created with queue capacity %d", capacity)
	return p, r, nil
}

// Submit queues any operation. A full queue or closed proxy is reported on the handle.
func (p *Proxy) Submit(ctx context.Context, op Operation) *ResponseHandle {
	req, h := newRequest(op)
	method := string(op.Method())
	p.metrics.IncRequest(method)
	if err := p.queue.push(ctx, req); err != nil {
		if IsQueueFull(err) {
			p.metrics.IncQueueFull(method)
			log.L(ctx).Warnf("Rejected %s request %s: %s", method, req.ID, err)
		}
		h.err = err
	}
	return h
}

func (p *Proxy) SignWith(ctx context.Context, keyType keystore.KeyTypeID, key keystore.CryptoTypePublicPair, msg []byte) *ResponseHandle {
	return p.Submit(ctx, SignWith{KeyType: keyType, Key: key, Message: msg})
}

func (p *Proxy) HasKeys(ctx context.Context, keys []keystore.PublicKeyRef) *ResponseHandle {
	return p.Submit(ctx, HasKeys{Keys: keys})
}

func (p *Proxy) InsertUnknown(ctx context.Context, keyType keystore.KeyTypeID, secretURI string, public []byte) *ResponseHandle {
	return p.Submit(ctx, InsertUnknown{KeyType: keyType, SecretURI: secretURI, PublicKey: public})
}

// Close stops intake. Requests already queued are still dispatched and answered, and
// the Receiver finishes once they have all completed.
func (p *Proxy) Close() {
	p.queue.close()
}

// Sign is SignWith followed by Wait, returning the store's signing error if there is one
func (p *Proxy) Sign(ctx context.Context, keyType keystore.KeyTypeID, key keystore.CryptoTypePublicPair, msg []byte) ([]byte, error) {
	result, err := waitFor[SignWithResult](ctx, p.SignWith(ctx, keyType, key, msg))
	if err != nil {
		return nil, err
	}
	return result.Signature, result.Err
}

func (p *Proxy) CheckKeys(ctx context.Context, keys []keystore.PublicKeyRef) (bool, error) {
	result, err := waitFor[HasKeysResult](ctx, p.HasKeys(ctx, keys))
	return result.HasKeys, err
}

func (p *Proxy) Insert(ctx context.Context, keyType keystore.KeyTypeID, secretURI string, public []byte) error {
	result, err := waitFor[InsertResult](ctx, p.InsertUnknown(ctx, keyType, secretURI, public))
	if err != nil {
		return err
	}
	return result.Err
}

func waitFor[R Response](ctx context.Context, h *ResponseHandle) (result R, err error) {
	resp, err := h.Wait(ctx)
	if err != nil {
		h.Drop()
		return result, err
	}
	result, ok := resp.(R)
	if !ok {
		return result, i18n.NewError(ctx, msgs.MsgUnexpectedResponseType, resp, h.method)
	}
	return result, nil
}

func IsQueueFull(err error) bool {
	return hasMessageKey(err, msgs.MsgProxyQueueFull)
}

func IsProxyClosed(err error) bool {
	return hasMessageKey(err, msgs.MsgProxyClosed)
}

func IsDisconnected(err error) bool {
	return hasMessageKey(err, msgs.MsgResponseDisconnected)
}

func hasMessageKey(err error, key i18n.ErrorMessageKey) bool {
	var ffe i18n.FFError
	return errors.As(err, &ffe) && ffe.MessageKey() == key
}
