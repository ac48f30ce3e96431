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

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

type ed25519Signer struct{}

func (s *ed25519Signer) CryptoType() keystore.CryptoTypeID {
	return keystore.CryptoTypeEd25519
}

func (s *ed25519Signer) privateKey(ctx context.Context, secret []byte) (ed25519.PrivateKey, error) {
	if len(secret) != ed25519.SeedSize {
		return nil, i18n.NewError(ctx, msgs.MsgSigningFailed, s.CryptoType())
	}
	return ed25519.NewKeyFromSeed(secret), nil
}

func (s *ed25519Signer) PublicKey(ctx context.Context, secret []byte) ([]byte, error) {
	pk, err := s.privateKey(ctx, secret)
	if err != nil {
		return nil, err
	}
	return pk.Public().(ed25519.PublicKey), nil
}

func (s *ed25519Signer) Sign(ctx context.Context, secret, msg []byte) ([]byte, error) {
	pk, err := s.privateKey(ctx, secret)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(pk, msg), nil
}
