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
	"encoding/hex"
	"strings"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// KeyTypeID identifies what a key is used for (for example "aura", "babe", "gran"),
// independently of the cryptography behind it.
type KeyTypeID [4]byte

// CryptoTypeID identifies the signature scheme of a key.
type CryptoTypeID [4]byte

var (
	CryptoTypeECDSA   = CryptoTypeID{'e', 'c', 'd', 's'} // secp256k1
	CryptoTypeEd25519 = CryptoTypeID{'e', 'd', '2', '5'}
)

func ParseKeyTypeID(ctx context.Context, s string) (id KeyTypeID, err error) {
	if len(s) != len(id) {
		return id, i18n.NewError(ctx, msgs.MsgKeyTypeIDInvalid, s)
	}
	copy(id[:], s)
	return id, nil
}

func MustKeyTypeID(s string) KeyTypeID {
	id, err := ParseKeyTypeID(context.Background(), s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id KeyTypeID) String() string {
	return string(id[:])
}

func ParseCryptoTypeID(ctx context.Context, s string) (id CryptoTypeID, err error) {
	if len(s) != len(id) {
		return id, i18n.NewError(ctx, msgs.MsgCryptoTypeIDInvalid, s)
	}
	copy(id[:], s)
	return id, nil
}

func (id CryptoTypeID) String() string {
	return string(id[:])
}

// CryptoTypePublicPair is a public key qualified by the scheme it belongs to
type CryptoTypePublicPair struct {
	CryptoType CryptoTypeID
	PublicKey  []byte
}

func (p CryptoTypePublicPair) String() string {
	return p.CryptoType.String() + ":" + hex.EncodeToString(p.PublicKey)
}

// PublicKeyRef is an entry in a key presence query
type PublicKeyRef struct {
	PublicKey []byte
	KeyType   KeyTypeID
}

func (r PublicKeyRef) String() string {
	return r.KeyType.String() + ":" + hex.EncodeToString(r.PublicKey)
}

// ParsePublicKeyRef parses the "<keyType>:<hexPublicKey>" form used on the command line
func ParsePublicKeyRef(ctx context.Context, s string) (ref PublicKeyRef, err error) {
	keyType, pubHex, ok := strings.Cut(s, ":")
	if !ok {
		return ref, i18n.NewError(ctx, msgs.MsgPublicKeyRefInvalid, s)
	}
	if ref.KeyType, err = ParseKeyTypeID(ctx, keyType); err != nil {
		return ref, err
	}
	if ref.PublicKey, err = DecodeHex(ctx, pubHex); err != nil {
		return ref, err
	}
	return ref, nil
}

func DecodeHex(ctx context.Context, s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidHex, s)
	}
	return b, nil
}
