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

package commands

import (
	"context"
	"strings"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/extensions"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keyproxy"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/keystores"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is the state shared by every command of one invocation. The proxy is only
// reachable through the extensions carried on ctx, the same way any other consumer
// would find it.
type app struct {
	v        *viper.Viper
	conf     config.KeyProxyConfig
	ctx      context.Context
	cancel   context.CancelFunc
	store    keystore.Store
	receiver *keyproxy.Receiver
	registry *prometheus.Registry
}

func Execute() error {
	root, a := newRootCmd()
	defer a.stop()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:          "keyproxy",
		Short:        "Sign with, query and populate a key store through the keystore proxy",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("log-level", "", "log level (overrides config)")
	flags.String("keystore-type", "", "key store type: memory or filesystem (overrides config)")
	flags.String("keystore-path", "", "filesystem key store directory (overrides config)")
	for _, name := range []string{"config", "log-level", "keystore-type", "keystore-path"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	a.v.SetEnvPrefix("KEYPROXY")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		publicCmd(a),
		insertCmd(a),
		signCmd(a),
		hasKeysCmd(a),
		benchCmd(a),
	)
	return root, a
}

func (a *app) loadConfig(ctx context.Context) error {
	if configFile := a.v.GetString("config"); configFile != "" {
		if err := config.ReadAndParseYAMLFile(ctx, configFile, &a.conf); err != nil {
			return err
		}
	}
	if level := a.v.GetString("log-level"); level != "" {
		a.conf.Log.Level = confutil.P(level)
	}
	if ksType := a.v.GetString("keystore-type"); ksType != "" {
		a.conf.KeyStore.Type = confutil.P(ksType)
	}
	if ksPath := a.v.GetString("keystore-path"); ksPath != "" {
		a.conf.KeyStore.FileSystem.Path = confutil.P(ksPath)
	}
	return nil
}

func (a *app) start(ctx context.Context) (err error) {
	if err := a.loadConfig(ctx); err != nil {
		return err
	}
	log.InitConfig(&a.conf.Log)

	a.store, err = keystores.NewKeyStore(ctx, &a.conf.KeyStore)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	proxy, receiver, err := keyproxy.New(ctx, &a.conf.Proxy, a.store, a.registry)
	if err != nil {
		return err
	}
	exts := extensions.New()
	if err := keyproxy.RegisterExtension(ctx, exts, proxy); err != nil {
		return err
	}
	a.receiver = receiver

	a.ctx, a.cancel = context.WithCancel(extensions.WithExtensions(ctx, exts))
	go receiver.Run(a.ctx)
	return nil
}

// stop answers anything still queued before the store is closed
func (a *app) stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.receiver.Done()
	if closeable, ok := a.store.(keystore.Closeable); ok {
		closeable.Close()
	}
	a.cancel = nil
}

func (a *app) proxy() (*keyproxy.Proxy, error) {
	return keyproxy.ProxyFromContext(a.ctx)
}

func (a *app) devPhrase() string {
	return confutil.StringOrEmpty(a.conf.KeyStore.DevPhrase, *config.KeyStoreDefaults.DevPhrase)
}
