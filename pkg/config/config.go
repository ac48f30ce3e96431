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

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/hyperledger/firefly-common/pkg/i18n"

	"sigs.k8s.io/yaml" // supports the json tags on our structs
)

type KeyProxyConfig struct {
	Log      LogConfig      `json:"log"`
	Proxy    ProxyConfig    `json:"proxy"`
	KeyStore KeyStoreConfig `json:"keyStore"`
	Metrics  MetricsConfig  `json:"metrics"`
}

type ProxyConfig struct {
	// number of requests that can be buffered awaiting dispatch by the receiver
	QueueCapacity *int `json:"queueCapacity"`
}

var ProxyDefaults = &ProxyConfig{
	QueueCapacity: confutil.P(128),
}

type MetricsConfig struct {
	Enabled         *bool   `json:"enabled"`
	Address         *string `json:"address"`
	ShutdownTimeout *string `json:"shutdownTimeout"`
}

var MetricsDefaults = &MetricsConfig{
	Enabled:         confutil.P(false),
	Address:         confutil.P("127.0.0.1:9100"),
	ShutdownTimeout: confutil.P("5s"),
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err.Error())
	}
	return nil
}
