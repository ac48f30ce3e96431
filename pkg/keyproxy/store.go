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

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
)

// sharedStore grants a lease on the store for the duration of each operation. Sign and
// HasKeys share a read lease, InsertUnknown takes the exclusive write lease.
type sharedStore struct {
	lock  sync.RWMutex
	store keystore.Store
}

// run returns nil for an operation type it does not know
func (s *sharedStore) run(ctx context.Context, op Operation) Response {
	switch op := op.(type) {
	case SignWith:
		s.lock.RLock()
		defer s.lock.RUnlock()
		sig, err := s.store.Sign(ctx, op.KeyType, op.Key, op.Message)
		return SignWithResult{Signature: sig, Err: err}
	case HasKeys:
		s.lock.RLock()
		defer s.lock.RUnlock()
		return HasKeysResult{HasKeys: s.store.HasKeys(ctx, op.Keys)}
	case InsertUnknown:
		s.lock.Lock()
		defer s.lock.Unlock()
		return InsertResult{Err: s.store.InsertUnknown(ctx, op.KeyType, op.SecretURI, op.PublicKey)}
	default:
		return nil
	}
}
