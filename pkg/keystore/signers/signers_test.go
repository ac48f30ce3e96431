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
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("\x42", 32))

func TestForCryptoType(t *testing.T) {
	s, ok := ForCryptoType(keystore.CryptoTypeECDSA)
	assert.True(t, ok)
	assert.Equal(t, keystore.CryptoTypeECDSA, s.CryptoType())

	s, ok = ForCryptoType(keystore.CryptoTypeEd25519)
	assert.True(t, ok)
	assert.Equal(t, keystore.CryptoTypeEd25519, s.CryptoType())

	_, ok = ForCryptoType(keystore.CryptoTypeID{'s', 'r', '2', '5'})
	assert.False(t, ok)

	assert.Len(t, All, 2)
}

func TestECDSASignDeterministic(t *testing.T) {
	ctx := context.Background()
	s, _ := ForCryptoType(keystore.CryptoTypeECDSA)

	pub, err := s.PublicKey(ctx, testSecret)
	require.NoError(t, err)
	assert.Len(t, pub, 33)

	sig1, err := s.Sign(ctx, testSecret, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig1, 65)
	sig2, err := s.Sign(ctx, testSecret, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)

	kp, err := secp256k1.NewSecp256k1KeyPair(testSecret)
	require.NoError(t, err)
	addr, err := EthAddress(ctx, testSecret)
	require.NoError(t, err)
	assert.Equal(t, kp.Address.String(), addr)
}

func TestECDSABadSecret(t *testing.T) {
	ctx := context.Background()
	s, _ := ForCryptoType(keystore.CryptoTypeECDSA)

	_, err := s.PublicKey(ctx, make([]byte, 32))
	assert.Regexp(t, "KP010204", err)

	_, err = s.Sign(ctx, make([]byte, 32), []byte("hello"))
	assert.Regexp(t, "KP010204", err)

	_, err = EthAddress(ctx, make([]byte, 32))
	assert.Regexp(t, "KP010204", err)
}

func TestEd25519SignVerify(t *testing.T) {
	ctx := context.Background()
	s, _ := ForCryptoType(keystore.CryptoTypeEd25519)

	pub, err := s.PublicKey(ctx, testSecret)
	require.NoError(t, err)
	assert.Len(t, pub, ed25519.PublicKeySize)

	sig, err := s.Sign(ctx, testSecret, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, []byte("hello"), sig))

	_, err = s.PublicKey(ctx, []byte{0x01})
	assert.Regexp(t, "KP010204", err)
	_, err = s.Sign(ctx, []byte{0x01}, []byte("hello"))
	assert.Regexp(t, "KP010204", err)
}
