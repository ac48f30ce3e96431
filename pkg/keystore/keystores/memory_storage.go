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

package keystores

import (
	"context"
	"encoding/hex"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
)

// memoryStorage performs no locking of its own, as the keystore proxy holds a read or
// write lease on the store for every operation
type memoryStorage struct {
	secrets map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		secrets: make(map[string]string),
	}
}

func memoryKey(keyType keystore.KeyTypeID, public []byte) string {
	return keyType.String() + ":" + hex.EncodeToString(public)
}

func (ms *memoryStorage) loadSecret(_ context.Context, keyType keystore.KeyTypeID, public []byte) (string, bool, error) {
	secretURI, found := ms.secrets[memoryKey(keyType, public)]
	return secretURI, found, nil
}

func (ms *memoryStorage) storeSecret(_ context.Context, keyType keystore.KeyTypeID, public []byte, secretURI string) error {
	ms.secrets[memoryKey(keyType, public)] = secretURI
	return nil
}

func (ms *memoryStorage) close() {}
