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

package extensions

import (
	"context"
	"reflect"
	"sync"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Extensions holds at most one value per Go type. Values are registered once, and can
// then be retrieved any number of times by code that knows the type.
type Extensions struct {
	lock  sync.RWMutex
	slots map[reflect.Type]any
}

type ctxExtensionsKey struct{}

func New() *Extensions {
	return &Extensions{
		slots: make(map[reflect.Type]any),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func Register[T any](ctx context.Context, exts *Extensions, v T) error {
	t := typeOf[T]()
	exts.lock.Lock()
	defer exts.lock.Unlock()
	if _, exists := exts.slots[t]; exists {
		return i18n.NewError(ctx, msgs.MsgExtensionAlreadyRegistered, t)
	}
	exts.slots[t] = v
	return nil
}

func Get[T any](exts *Extensions) (v T, ok bool) {
	exts.lock.RLock()
	defer exts.lock.RUnlock()
	stored, ok := exts.slots[typeOf[T]()]
	if ok {
		v = stored.(T)
	}
	return v, ok
}

func MustGet[T any](ctx context.Context, exts *Extensions) (T, error) {
	v, ok := Get[T](exts)
	if !ok {
		return v, i18n.NewError(ctx, msgs.MsgExtensionNotRegistered, typeOf[T]())
	}
	return v, nil
}

func WithExtensions(ctx context.Context, exts *Extensions) context.Context {
	return context.WithValue(ctx, ctxExtensionsKey{}, exts)
}

func FromContext(ctx context.Context) (*Extensions, bool) {
	exts, ok := ctx.Value(ctxExtensionsKey{}).(*Extensions)
	return exts, ok
}
