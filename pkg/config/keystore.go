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

import "github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"

const (
	KeyStoreTypeMemory     = "memory"     // volatile, for tests and development
	KeyStoreTypeFilesystem = "filesystem" // keystorev3 wallet file per key
)

// DevPhrase is the well-known development mnemonic that "//Alice" style secret URIs are
// derived from when no phrase is supplied. Keys derived from it are public knowledge.
const DevPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

type KeyStoreConfig struct {
	Type       *string                  `json:"type"`
	DevPhrase  *string                  `json:"devPhrase"`
	FileSystem FileSystemKeyStoreConfig `json:"filesystem"`
}

type CacheConfig struct {
	Capacity *int `json:"capacity"`
}

type FileSystemKeyStoreConfig struct {
	Path     *string     `json:"path"`
	Cache    CacheConfig `json:"cache"`
	FileMode *string     `json:"fileMode"`
	DirMode  *string     `json:"dirMode"`
}

var KeyStoreDefaults = &KeyStoreConfig{
	Type:      confutil.P(KeyStoreTypeMemory),
	DevPhrase: confutil.P(DevPhrase),
	FileSystem: FileSystemKeyStoreConfig{
		Path:     confutil.P("keystore"),
		FileMode: confutil.P("0600"),
		DirMode:  confutil.P("0700"),
		Cache: CacheConfig{
			Capacity: confutil.P(100),
		},
	},
}
