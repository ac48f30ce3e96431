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

package keystore

import (
	"context"
)

// Store is the cryptographic key store the keystore proxy dispatches onto.
//
// Sign and HasKeys are read-class, and InsertUnknown is write-class. Callers that share a
// Store across goroutines must hold a shared lease for reads and an exclusive lease for
// writes (see keyproxy). Implementations therefore do not need their own locking.
//
// Failures from Sign and InsertUnknown are ordinary results, and are returned to the
// original caller untouched.
type Store interface {
	// Sign returns the signature over msg of the key of keyType identified by key
	Sign(ctx context.Context, keyType KeyTypeID, key CryptoTypePublicPair, msg []byte) ([]byte, error)
	// HasKeys returns true only if every listed key is held
	HasKeys(ctx context.Context, keys []PublicKeyRef) bool
	// InsertUnknown stores the secret URI suri as the key of keyType with the given public key
	InsertUnknown(ctx context.Context, keyType KeyTypeID, suri string, public []byte) error
}

// Closeable stores are closed when the owning process shuts down
type Closeable interface {
	Close()
}
