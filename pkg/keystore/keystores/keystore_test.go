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
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeyType = keystore.MustKeyTypeID("acco")

func newTestMemoryStore(t *testing.T) (context.Context, *store) {
	ctx := context.Background()
	ks, err := NewKeyStore(ctx, &config.KeyStoreConfig{})
	require.NoError(t, err)
	return ctx, ks.(*store)
}

func insertTestKey(t *testing.T, ctx context.Context, ks keystore.Store, cryptoType keystore.CryptoTypeID, secretURI string) keystore.CryptoTypePublicPair {
	public, err := PublicKeyFor(ctx, cryptoType, secretURI, config.DevPhrase)
	require.NoError(t, err)
	err = ks.InsertUnknown(ctx, testKeyType, secretURI, public)
	require.NoError(t, err)
	return keystore.CryptoTypePublicPair{CryptoType: cryptoType, PublicKey: public}
}

func TestMemoryStoreInsertSignECDSA(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")
	assert.Len(t, pair.PublicKey, 33)

	assert.True(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{{PublicKey: pair.PublicKey, KeyType: testKeyType}}))

	sig1, err := ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	require.NoError(t, err)
	assert.Len(t, sig1, 65)

	sig2, err := ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)
}

func TestMemoryStoreInsertSignEd25519(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeEd25519, "//Bob")
	assert.Len(t, pair.PublicKey, 32)

	sig, err := ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pair.PublicKey, []byte("hello"), sig))
}

func TestMemoryStoreKeyTypesAreSeparate(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")

	otherType := keystore.MustKeyTypeID("babe")
	assert.False(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{{PublicKey: pair.PublicKey, KeyType: otherType}}))
	_, err := ks.Sign(ctx, otherType, pair, []byte("hello"))
	assert.Regexp(t, "KP010201", err)
}

func TestMemoryStoreHasKeys(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	alice := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")
	bob := insertTestKey(t, ctx, ks, keystore.CryptoTypeEd25519, "//Bob")

	assert.True(t, ks.HasKeys(ctx, nil))
	assert.True(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{
		{PublicKey: alice.PublicKey, KeyType: testKeyType},
		{PublicKey: bob.PublicKey, KeyType: testKeyType},
	}))
	assert.False(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{
		{PublicKey: alice.PublicKey, KeyType: testKeyType},
		{PublicKey: []byte{0x01, 0x02}, KeyType: testKeyType},
	}))
}

func TestSignErrors(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")

	_, err := ks.Sign(ctx, testKeyType, keystore.CryptoTypePublicPair{
		CryptoType: keystore.CryptoTypeID{'s', 'r', '2', '5'},
		PublicKey:  pair.PublicKey,
	}, []byte("hello"))
	assert.Regexp(t, "KP010200", err)

	_, err = ks.Sign(ctx, testKeyType, keystore.CryptoTypePublicPair{
		CryptoType: keystore.CryptoTypeECDSA,
		PublicKey:  []byte{0x02, 0x03},
	}, []byte("hello"))
	assert.Regexp(t, "KP010201", err)

	// stored under the right public key, but for the other crypto type
	_, err = ks.Sign(ctx, testKeyType, keystore.CryptoTypePublicPair{
		CryptoType: keystore.CryptoTypeEd25519,
		PublicKey:  pair.PublicKey,
	}, []byte("hello"))
	assert.Regexp(t, "KP010202", err)
}

func TestSignStoredSecretNoLongerMatches(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")
	err := ks.storage.storeSecret(ctx, testKeyType, pair.PublicKey, "//Charlie")
	require.NoError(t, err)
	_, err = ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	assert.Regexp(t, "KP010202", err)

	err = ks.storage.storeSecret(ctx, testKeyType, pair.PublicKey, "not a phrase")
	require.NoError(t, err)
	_, err = ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	assert.Regexp(t, "KP010202", err)
}

func TestInsertErrors(t *testing.T) {
	ctx, ks := newTestMemoryStore(t)

	err := ks.InsertUnknown(ctx, testKeyType, "not a phrase", []byte{0x01})
	assert.Regexp(t, "KP010300", err)

	// an empty phrase is the dev phrase, so this parses but derives some other key
	err = ks.InsertUnknown(ctx, testKeyType, "", []byte{0x01})
	assert.Regexp(t, "KP010301", err)

	alice, err := PublicKeyFor(ctx, keystore.CryptoTypeECDSA, "//Alice", config.DevPhrase)
	require.NoError(t, err)
	err = ks.InsertUnknown(ctx, testKeyType, "//Bob", alice)
	assert.Regexp(t, "KP010301", err)
	assert.False(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{{PublicKey: alice, KeyType: testKeyType}}))
}

func TestPublicKeyForUnsupported(t *testing.T) {
	_, err := PublicKeyFor(context.Background(), keystore.CryptoTypeID{'s', 'r', '2', '5'}, "//Alice", config.DevPhrase)
	assert.Regexp(t, "KP010200", err)

	_, err = PublicKeyFor(context.Background(), keystore.CryptoTypeECDSA, "//", config.DevPhrase)
	assert.Error(t, err)
}

func TestCustomDevPhrase(t *testing.T) {
	ctx := context.Background()
	phrase := "0x" + strings.Repeat("11", 32)
	ks, err := NewKeyStore(ctx, &config.KeyStoreConfig{DevPhrase: confutil.P(phrase)})
	require.NoError(t, err)

	public, err := PublicKeyFor(ctx, keystore.CryptoTypeECDSA, "//Alice", phrase)
	require.NoError(t, err)
	require.NoError(t, ks.InsertUnknown(ctx, testKeyType, "//Alice", public))

	defaultAlice, err := PublicKeyFor(ctx, keystore.CryptoTypeECDSA, "//Alice", config.DevPhrase)
	require.NoError(t, err)
	assert.NotEqual(t, defaultAlice, public)
	assert.Regexp(t, "KP010301", ks.InsertUnknown(ctx, testKeyType, "//Alice", defaultAlice))
}

func TestNewKeyStoreBadType(t *testing.T) {
	_, err := NewKeyStore(context.Background(), &config.KeyStoreConfig{Type: confutil.P("vault")})
	assert.Regexp(t, "KP010500", err)
}

func newTestFilesystemStore(t *testing.T, dir string) (context.Context, *store) {
	ctx := context.Background()
	ks, err := NewKeyStore(ctx, &config.KeyStoreConfig{
		Type: confutil.P(config.KeyStoreTypeFilesystem),
		FileSystem: config.FileSystemKeyStoreConfig{
			Path: confutil.P(dir),
		},
	})
	require.NoError(t, err)
	return ctx, ks.(*store)
}

func TestFilesystemStoreInsertReload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")
	ctx, ks := newTestFilesystemStore(t, dir)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")
	prefix := filepath.Join(dir, hex.EncodeToString(testKeyType[:]), hex.EncodeToString(pair.PublicKey))
	_, err := os.Stat(prefix + ".key")
	require.NoError(t, err)
	_, err = os.Stat(prefix + ".pwd")
	require.NoError(t, err)

	sig1, err := ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	require.NoError(t, err)
	ks.Close()

	// a fresh store over the same directory reads the wallet file back
	ctx, ks = newTestFilesystemStore(t, dir)
	assert.True(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{{PublicKey: pair.PublicKey, KeyType: testKeyType}}))
	sig2, err := ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)

	assert.False(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{{PublicKey: []byte{0x01}, KeyType: testKeyType}}))
}

func TestFilesystemStoreBadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte{}, 0600))

	_, err := NewKeyStore(context.Background(), &config.KeyStoreConfig{
		Type: confutil.P(config.KeyStoreTypeFilesystem),
		FileSystem: config.FileSystemKeyStoreConfig{
			Path: confutil.P(file),
		},
	})
	assert.Regexp(t, "KP010501", err)
}

func TestFilesystemStoreUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, ks := newTestFilesystemStore(t, dir)
	fss := ks.storage.(*filesystemStorage)

	public := []byte{0x01, 0x02}
	typeDir, prefix := fss.pathPrefix(testKeyType, public)
	require.NoError(t, os.MkdirAll(prefix+".key", 0700))
	_, _, err := fss.loadSecret(ctx, testKeyType, public)
	assert.Regexp(t, "KP010503", err)
	assert.False(t, ks.HasKeys(ctx, []keystore.PublicKeyRef{{PublicKey: public, KeyType: testKeyType}}))

	_, err = ks.Sign(ctx, testKeyType, keystore.CryptoTypePublicPair{CryptoType: keystore.CryptoTypeECDSA, PublicKey: public}, []byte("hello"))
	assert.Regexp(t, "KP010203", err)

	other := []byte{0x03}
	_, otherPrefix := fss.pathPrefix(testKeyType, other)
	require.NoError(t, os.WriteFile(otherPrefix+".key", []byte("{}"), 0600))
	_, _, err = fss.loadSecret(ctx, testKeyType, other)
	assert.Regexp(t, "KP010504", err)

	require.NoError(t, os.WriteFile(otherPrefix+".pwd", []byte("pass"), 0600))
	_, _, err = fss.loadSecret(ctx, testKeyType, other)
	assert.Regexp(t, "KP010503", err)

	// key type directory blocked by a file
	require.NoError(t, os.RemoveAll(typeDir))
	require.NoError(t, os.WriteFile(typeDir, []byte{}, 0600))
	err = fss.storeSecret(ctx, testKeyType, public, "//Alice")
	assert.Regexp(t, "KP010502", err)
}

func TestFilesystemStoreFailedReinsertKeepsWallet(t *testing.T) {
	ctx, ks := newTestFilesystemStore(t, t.TempDir())
	fss := ks.storage.(*filesystemStorage)

	pair := insertTestKey(t, ctx, ks, keystore.CryptoTypeECDSA, "//Alice")
	_, prefix := fss.pathPrefix(testKeyType, pair.PublicKey)

	// the new password file cannot be written
	require.NoError(t, os.MkdirAll(prefix+".pwd.tmp", 0700))
	err := fss.storeSecret(ctx, testKeyType, pair.PublicKey, "//Alice")
	assert.Regexp(t, "KP010502", err)
	_, err = os.Stat(prefix + ".key.tmp")
	assert.True(t, os.IsNotExist(err))

	fss.close()
	secretURI, found, err := fss.loadSecret(ctx, testKeyType, pair.PublicKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "//Alice", secretURI)
	_, err = ks.Sign(ctx, testKeyType, pair, []byte("hello"))
	assert.NoError(t, err)
}
