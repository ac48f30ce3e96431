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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExt struct {
	name string
}

type otherExt string

func TestRegisterOnceRetrieveMany(t *testing.T) {
	ctx := context.Background()
	exts := New()

	_, ok := Get[*testExt](exts)
	assert.False(t, ok)
	_, err := MustGet[*testExt](ctx, exts)
	assert.Regexp(t, "KP010008", err)

	ext := &testExt{name: "first"}
	require.NoError(t, Register(ctx, exts, ext))

	err = Register(ctx, exts, &testExt{name: "second"})
	assert.Regexp(t, "KP010007", err)

	for i := 0; i < 3; i++ {
		got, err := MustGet[*testExt](ctx, exts)
		require.NoError(t, err)
		assert.Same(t, ext, got)
	}

	// slots are keyed by the exact type
	_, ok = Get[testExt](exts)
	assert.False(t, ok)
	require.NoError(t, Register(ctx, exts, otherExt("other")))
	other, ok := Get[otherExt](exts)
	assert.True(t, ok)
	assert.Equal(t, otherExt("other"), other)
}

func TestExtensionsOnContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	exts := New()
	ctx := WithExtensions(context.Background(), exts)
	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, exts, got)
}

func TestConcurrentRegisterSingleWinner(t *testing.T) {
	ctx := context.Background()
	exts := New()

	var wg sync.WaitGroup
	var lock sync.Mutex
	wins := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Register(ctx, exts, &testExt{}) == nil {
				lock.Lock()
				wins++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
