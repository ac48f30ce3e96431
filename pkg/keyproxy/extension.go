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

package keyproxy

import (
	"context"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/extensions"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// KeystoreProxyExt is the extension through which code running in an execution context
// finds the keystore. It shares the proxy, it does not own it.
type KeystoreProxyExt struct {
	*Proxy
}

func RegisterExtension(ctx context.Context, exts *extensions.Extensions, proxy *Proxy) error {
	return extensions.Register(ctx, exts, &KeystoreProxyExt{Proxy: proxy})
}

func ProxyFromExtensions(ctx context.Context, exts *extensions.Extensions) (*Proxy, error) {
	ext, err := extensions.MustGet[*KeystoreProxyExt](ctx, exts)
	if err != nil {
		return nil, err
	}
	return ext.Proxy, nil
}

// ProxyFromContext finds the proxy registered in the extensions carried by ctx
func ProxyFromContext(ctx context.Context) (*Proxy, error) {
	exts, ok := extensions.FromContext(ctx)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgExtensionNotRegistered, "KeystoreProxyExt")
	}
	return ProxyFromExtensions(ctx, exts)
}
