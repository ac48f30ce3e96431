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
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/cache"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/keystorev3"
)

// filesystemStorage keeps one keystorev3 wallet file per key, with the secret URI as
// the encrypted payload and a random password alongside it:
//
//	<path>/<hex key type>/<hex public key>.key
//	<path>/<hex key type>/<hex public key>.pwd
type filesystemStorage struct {
	cache    cache.Cache[string, string]
	path     string
	fileMode os.FileMode
	dirMode  os.FileMode
}

func newFilesystemStorage(ctx context.Context, conf *config.FileSystemKeyStoreConfig) (*filesystemStorage, error) {
	defs := &config.KeyStoreDefaults.FileSystem
	fss := &filesystemStorage{
		cache:    cache.NewCache[string, string](&conf.Cache, &defs.Cache),
		fileMode: confutil.UnixFileMode(conf.FileMode, *defs.FileMode),
		dirMode:  confutil.UnixFileMode(conf.DirMode, *defs.DirMode),
	}

	configuredPath := confutil.StringNotEmpty(conf.Path, *defs.Path)
	var pathInfo fs.FileInfo
	path, err := filepath.Abs(configuredPath)
	if err == nil {
		err = os.MkdirAll(path, fss.dirMode)
	}
	if err == nil {
		pathInfo, err = os.Stat(path)
	}
	if err != nil || !pathInfo.IsDir() {
		return nil, i18n.WrapError(ctx, err, msgs.MsgKeystoreBadPath, configuredPath)
	}
	fss.path = path
	log.L(ctx).Debugf("Filesystem key store path: %s", path)
	return fss, nil
}

func (fss *filesystemStorage) pathPrefix(keyType keystore.KeyTypeID, public []byte) (dir, prefix string) {
	dir = filepath.Join(fss.path, hex.EncodeToString(keyType[:]))
	return dir, filepath.Join(dir, hex.EncodeToString(public))
}

func (fss *filesystemStorage) loadSecret(ctx context.Context, keyType keystore.KeyTypeID, public []byte) (string, bool, error) {
	_, prefix := fss.pathPrefix(keyType, public)
	if secretURI, ok := fss.cache.Get(prefix); ok {
		return secretURI, true, nil
	}

	keyFilePath := fmt.Sprintf("%s.key", prefix)
	if _, err := os.Stat(keyFilePath); err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, i18n.WrapError(ctx, err, msgs.MsgKeystoreFSError)
	}
	wf, err := fss.readWalletFile(ctx, keyFilePath, fmt.Sprintf("%s.pwd", prefix))
	if err != nil {
		return "", false, err
	}
	secretURI := string(wf.PrivateKey())
	fss.cache.Set(prefix, secretURI)
	return secretURI, true, nil
}

func (fss *filesystemStorage) readWalletFile(ctx context.Context, keyFilePath, passwordFilePath string) (keystorev3.WalletFile, error) {
	keyData, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgKeystoreBadKeyFile, keyFilePath)
	}
	passData, err := os.ReadFile(passwordFilePath)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgKeystoreBadPassFile, passwordFilePath)
	}
	wf, err := keystorev3.ReadWalletFile(keyData, passData)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgKeystoreBadKeyFile, keyFilePath)
	}
	return wf, nil
}

func (fss *filesystemStorage) storeSecret(ctx context.Context, keyType keystore.KeyTypeID, public []byte, secretURI string) error {
	dir, prefix := fss.pathPrefix(keyType, public)
	if err := os.MkdirAll(dir, fss.dirMode); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgKeystoreFSError)
	}

	password, err := randomPassword()
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgKeystoreFSError)
	}
	wf := keystorev3.NewWalletFileCustomBytesStandard(password, []byte(secretURI))
	// the payload is a secret URI, not a secp256k1 key, so the address would be meaningless
	wf.Metadata()["address"] = nil

	// a re-insert replaces an existing pair, so neither file is touched until both new
	// ones are fully written
	files := []struct {
		path string
		data []byte
	}{
		{fmt.Sprintf("%s.key", prefix), wf.JSON()},
		{fmt.Sprintf("%s.pwd", prefix), []byte(password)},
	}
	for i, f := range files {
		if err := os.WriteFile(f.path+".tmp", f.data, fss.fileMode); err != nil {
			for _, written := range files[:i] {
				_ = os.Remove(written.path + ".tmp")
			}
			return i18n.WrapError(ctx, err, msgs.MsgKeystoreFSError)
		}
	}
	for _, f := range files {
		if err := os.Rename(f.path+".tmp", f.path); err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgKeystoreFSError)
		}
	}
	fss.cache.Set(prefix, secretURI)
	return nil
}

func (fss *filesystemStorage) close() {
	fss.cache.Clear()
}

func randomPassword() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
