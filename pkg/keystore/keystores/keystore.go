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
	"bytes"
	"context"
	"encoding/hex"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/signers"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/suri"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// secretStorage is where the secret URI of each key is kept. The keystore holds the
// secret URI rather than derived key material, so the same entry can serve any crypto
// type whose public key it derives.
type secretStorage interface {
	loadSecret(ctx context.Context, keyType keystore.KeyTypeID, public []byte) (secretURI string, found bool, err error)
	storeSecret(ctx context.Context, keyType keystore.KeyTypeID, public []byte, secretURI string) error
	close()
}

type store struct {
	storageType string
	devPhrase   string
	storage     secretStorage
}

// NewKeyStore builds the store named by the configured type
func NewKeyStore(ctx context.Context, conf *config.KeyStoreConfig) (keystore.Store, error) {
	storageType := confutil.StringNotEmpty(conf.Type, *config.KeyStoreDefaults.Type)
	switch storageType {
	case config.KeyStoreTypeMemory:
		return NewMemoryStore(ctx, conf), nil
	case config.KeyStoreTypeFilesystem:
		return NewFilesystemStore(ctx, conf)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgKeystoreTypeUnsupported, storageType)
	}
}

func NewMemoryStore(ctx context.Context, conf *config.KeyStoreConfig) keystore.Store {
	return newStore(ctx, config.KeyStoreTypeMemory, conf, newMemoryStorage())
}

func NewFilesystemStore(ctx context.Context, conf *config.KeyStoreConfig) (keystore.Store, error) {
	storage, err := newFilesystemStorage(ctx, &conf.FileSystem)
	if err != nil {
		return nil, err
	}
	return newStore(ctx, config.KeyStoreTypeFilesystem, conf, storage), nil
}

func newStore(ctx context.Context, storageType string, conf *config.KeyStoreConfig, storage secretStorage) *store {
	log.L(ctx).Infof("Initialized %s key store", storageType)
	return &store{
		storageType: storageType,
		devPhrase:   confutil.StringOrEmpty(conf.DevPhrase, *config.KeyStoreDefaults.DevPhrase),
		storage:     storage,
	}
}

func (s *store) Sign(ctx context.Context, keyType keystore.KeyTypeID, key keystore.CryptoTypePublicPair, msg []byte) ([]byte, error) {
	signer, ok := signers.ForCryptoType(key.CryptoType)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgSigningKeyNotSupported, key.CryptoType)
	}
	secretURI, found, err := s.storage.loadSecret(ctx, keyType, key.PublicKey)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSigningUnavailable, s.storageType)
	}
	if !found {
		return nil, i18n.NewError(ctx, msgs.MsgSigningPairNotFound, keyType, hex.EncodeToString(key.PublicKey))
	}
	secret, err := suri.DeriveSecret(ctx, secretURI, s.devPhrase)
	var public []byte
	if err == nil {
		public, err = signer.PublicKey(ctx, secret)
	}
	if err != nil || !bytes.Equal(public, key.PublicKey) {
		return nil, i18n.NewError(ctx, msgs.MsgSigningValidationError, keyType, hex.EncodeToString(key.PublicKey), key.CryptoType)
	}
	return signer.Sign(ctx, secret, msg)
}

func (s *store) HasKeys(ctx context.Context, keys []keystore.PublicKeyRef) bool {
	for _, k := range keys {
		_, found, err := s.storage.loadSecret(ctx, k.KeyType, k.PublicKey)
		if err != nil {
			log.L(ctx).Warnf("Failed to check for key %s: %s", k, err)
			return false
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *store) InsertUnknown(ctx context.Context, keyType keystore.KeyTypeID, secretURI string, public []byte) error {
	secret, err := suri.DeriveSecret(ctx, secretURI, s.devPhrase)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgInsertInvalidSecretURI, keyType)
	}
	for _, signer := range signers.All {
		derived, err := signer.PublicKey(ctx, secret)
		if err != nil || !bytes.Equal(derived, public) {
			continue
		}
		if err := s.storage.storeSecret(ctx, keyType, public, secretURI); err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgInsertStorageFailed, keyType)
		}
		log.L(ctx).Debugf("Inserted %s key of type %s: %s", signer.CryptoType(), keyType, hex.EncodeToString(public))
		return nil
	}
	return i18n.NewError(ctx, msgs.MsgInsertPublicKeyMismatch, keyType, hex.EncodeToString(public))
}

func (s *store) Close() {
	s.storage.close()
}

// PublicKeyFor derives the public key a secret URI has for a crypto type, which is
// what callers need to supply alongside the secret URI on insert
func PublicKeyFor(ctx context.Context, cryptoType keystore.CryptoTypeID, secretURI, devPhrase string) ([]byte, error) {
	signer, ok := signers.ForCryptoType(cryptoType)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgSigningKeyNotSupported, cryptoType)
	}
	secret, err := suri.DeriveSecret(ctx, secretURI, devPhrase)
	if err != nil {
		return nil, err
	}
	return signer.PublicKey(ctx, secret)
}
