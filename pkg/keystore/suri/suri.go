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

package suri

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"
)

// SecretURI is the parsed form of:
//
//	[phrase|0x<hex seed>][//hard|/soft]*[///password]
//
// An empty phrase means the development phrase, so "//Alice" is a complete URI.
type SecretURI struct {
	Phrase    string
	Junctions []Junction
	Password  string
}

type Junction struct {
	Name string
	Hard bool
}

func (j Junction) String() string {
	if j.Hard {
		return "//" + j.Name
	}
	return "/" + j.Name
}

func Parse(ctx context.Context, s string) (*SecretURI, error) {
	u := &SecretURI{}
	if idx := strings.Index(s, "///"); idx >= 0 {
		u.Password = s[idx+3:]
		s = s[:idx]
	}
	phraseEnd := strings.Index(s, "/")
	if phraseEnd < 0 {
		u.Phrase = strings.TrimSpace(s)
		return u, nil
	}
	u.Phrase = strings.TrimSpace(s[:phraseEnd])
	rest := s[phraseEnd:]
	for rest != "" {
		var j Junction
		if strings.HasPrefix(rest, "//") {
			j.Hard = true
			rest = rest[2:]
		} else {
			rest = rest[1:]
		}
		j.Name, rest, _ = strings.Cut(rest, "/")
		if j.Name == "" {
			return nil, i18n.NewError(ctx, msgs.MsgSecretURIInvalidJunction, j.String())
		}
		if rest != "" {
			rest = "/" + rest
		}
		u.Junctions = append(u.Junctions, j)
	}
	return u, nil
}

// Derive returns the 32 byte secret seed the URI describes. devPhrase is used when the URI
// carries no phrase of its own.
func (u *SecretURI) Derive(ctx context.Context, devPhrase string) ([]byte, error) {
	phrase := u.Phrase
	if phrase == "" {
		phrase = devPhrase
	}
	if phrase == "" {
		return nil, i18n.NewError(ctx, msgs.MsgSecretURIEmpty)
	}

	var seed []byte
	if strings.HasPrefix(phrase, "0x") {
		b, err := hex.DecodeString(phrase[2:])
		if err != nil || (len(b) != 32 && len(b) != 64) {
			return nil, i18n.NewError(ctx, msgs.MsgSecretURIInvalidPhrase)
		}
		// A bare 32 byte seed is the secret itself, so existing keys can be imported
		if len(b) == 32 && len(u.Junctions) == 0 {
			return b, nil
		}
		seed = b
	} else {
		var err error
		if seed, err = bip39.NewSeedWithErrorChecking(phrase, u.Password); err != nil {
			return nil, i18n.NewError(ctx, msgs.MsgSecretURIInvalidPhrase)
		}
	}

	pos, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSecretURIInvalidPhrase)
	}
	for _, j := range u.Junctions {
		index, err := j.index(ctx)
		if err == nil {
			pos, err = pos.Derive(index)
		}
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgSecretURIDerivationFail, j.String())
		}
	}
	ecPrivKey, err := pos.ECPrivKey()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSecretURIInvalidPhrase)
	}
	pkBytes := ecPrivKey.Key.Bytes()
	return pkBytes[:], nil
}

// Numeric junctions are used as BIP-32 indices directly, and names are hashed into the
// non-hardened range before the hardened flag is applied.
func (j Junction) index(ctx context.Context) (uint32, error) {
	var index uint32
	if n, err := strconv.ParseUint(j.Name, 10, 64); err == nil {
		if n >= hdkeychain.HardenedKeyStart {
			return 0, i18n.NewError(ctx, msgs.MsgSecretURIInvalidJunction, j.String())
		}
		index = uint32(n)
	} else {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(j.Name))
		index = binary.BigEndian.Uint32(h.Sum(nil)[0:4]) & 0x7fffffff
	}
	if j.Hard {
		index += hdkeychain.HardenedKeyStart
	}
	return index, nil
}

// DeriveSecret is Parse followed by Derive
func DeriveSecret(ctx context.Context, s, devPhrase string) ([]byte, error) {
	u, err := Parse(ctx, s)
	if err != nil {
		return nil, err
	}
	return u.Derive(ctx, devPhrase)
}
