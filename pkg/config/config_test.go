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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAndParseYAMLFile(t *testing.T) {
	dir := t.TempDir()
	confFile := filepath.Join(dir, "keyproxy.yaml")
	err := os.WriteFile(confFile, []byte(`
log:
  level: debug
proxy:
  queueCapacity: 16
keyStore:
  type: filesystem
  filesystem:
    path: /tmp/keys
    cache:
      capacity: 5
metrics:
  enabled: true
`), 0600)
	require.NoError(t, err)

	var conf KeyProxyConfig
	err = ReadAndParseYAMLFile(context.Background(), confFile, &conf)
	require.NoError(t, err)
	assert.Equal(t, "debug", *conf.Log.Level)
	assert.Equal(t, 16, *conf.Proxy.QueueCapacity)
	assert.Equal(t, KeyStoreTypeFilesystem, *conf.KeyStore.Type)
	assert.Equal(t, "/tmp/keys", *conf.KeyStore.FileSystem.Path)
	assert.Equal(t, 5, *conf.KeyStore.FileSystem.Cache.Capacity)
	assert.True(t, *conf.Metrics.Enabled)
	assert.Nil(t, conf.Metrics.Address)
}

func TestReadAndParseYAMLFileMissing(t *testing.T) {
	var conf KeyProxyConfig
	err := ReadAndParseYAMLFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), &conf)
	assert.Regexp(t, "KP010600", err)
}

func TestReadAndParseYAMLFileBadContent(t *testing.T) {
	confFile := filepath.Join(t.TempDir(), "bad.yaml")
	err := os.WriteFile(confFile, []byte(`proxy: [ not an object`), 0600)
	require.NoError(t, err)

	var conf KeyProxyConfig
	err = ReadAndParseYAMLFile(context.Background(), confFile, &conf)
	assert.Regexp(t, "KP010602", err)
}
