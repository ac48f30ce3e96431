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

package signers

import (
	"context"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
)

// Signer implements one crypto type over a 32 byte secret seed
type Signer interface {
	CryptoType() keystore.CryptoTypeID
	PublicKey(ctx context.Context, secret []byte) ([]byte, error)
	Sign(ctx context.Context, secret, msg []byte) ([]byte, error)
}

var registry = map[keystore.CryptoTypeID]Signer{
	keystore.CryptoTypeECDSA:   &ecdsaSigner{},
	keystore.CryptoTypeEd25519: &ed25519Signer{},
}

// All is in a stable order, so key insertion matches crypto types deterministically
var All = []Signer{
	registry[keystore.CryptoTypeECDSA],
	registry[keystore.CryptoTypeEd25519],
}

func ForCryptoType(cryptoType keystore.CryptoTypeID) (Signer, bool) {
	s, ok := registry[cryptoType]
	return s, ok
}
