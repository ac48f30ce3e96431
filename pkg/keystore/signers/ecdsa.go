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

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
)

type ecdsaSigner struct{}

func (s *ecdsaSigner) CryptoType() keystore.CryptoTypeID {
	return keystore.CryptoTypeECDSA
}

func (s *ecdsaSigner) keyPair(ctx context.Context, secret []byte) (*secp256k1.KeyPair, error) {
	if len(secret) != 32 || allZero(secret) {
		return nil, i18n.NewError(ctx, msgs.MsgSigningFailed, s.CryptoType())
	}
	kp, err := secp256k1.NewSecp256k1KeyPair(secret)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSigningFailed, s.CryptoType())
	}
	return kp, nil
}

// PublicKey is the 33 byte compressed form
func (s *ecdsaSigner) PublicKey(ctx context.Context, secret []byte) ([]byte, error) {
	kp, err := s.keyPair(ctx, secret)
	if err != nil {
		return nil, err
	}
	return kp.PublicKey.SerializeCompressed(), nil
}

// Sign hashes msg with keccak256 and returns the 65 byte R,S,V signature
func (s *ecdsaSigner) Sign(ctx context.Context, secret, msg []byte) ([]byte, error) {
	kp, err := s.keyPair(ctx, secret)
	if err != nil {
		return nil, err
	}
	sig, err := kp.Sign(msg)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSigningFailed, s.CryptoType())
	}
	return sig.CompactRSV(), nil
}

// EthAddress is informational output for secp256k1 keys
func EthAddress(ctx context.Context, secret []byte) (string, error) {
	kp, err := (&ecdsaSigner{}).keyPair(ctx, secret)
	if err != nil {
		return "", err
	}
	return kp.Address.String(), nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
