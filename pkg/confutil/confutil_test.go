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

package confutil

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntHelpers(t *testing.T) {
	assert.Equal(t, 1, IntMin(P(0), 1, 128))
	assert.Equal(t, 128, IntMin(nil, 1, 128))
	assert.Equal(t, 64, IntMin(P(64), 1, 128))
}

func TestStringHelpers(t *testing.T) {
	assert.Equal(t, "def", StringNotEmpty(nil, "def"))
	assert.Equal(t, "def", StringNotEmpty(P(""), "def"))
	assert.Equal(t, "val", StringNotEmpty(P("val"), "def"))
	assert.Equal(t, "", StringOrEmpty(P(""), "def"))
	assert.Equal(t, "def", StringOrEmpty(nil, "def"))
	assert.True(t, Bool(nil, true))
	assert.False(t, Bool(P(false), true))
}

func TestUnixFileMode(t *testing.T) {
	assert.Equal(t, fs.FileMode(0600), UnixFileMode(nil, "0600"))
	assert.Equal(t, fs.FileMode(0640), UnixFileMode(P("0640"), "0600"))
	assert.Equal(t, fs.FileMode(0600), UnixFileMode(P("wrong"), "0600"))
	assert.Equal(t, fs.FileMode(0600), UnixFileMode(P("7777"), "0600"))
}

func TestDurationMin(t *testing.T) {
	assert.Equal(t, 5*time.Second, DurationMin(nil, 0, "5s"))
	assert.Equal(t, time.Second, DurationMin(P("10ms"), time.Second, "5s"))
	assert.Equal(t, 5*time.Second, DurationMin(P("bad"), 0, "5s"))
	assert.Equal(t, time.Minute, DurationMin(P("1m"), 0, "5s"))
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, int64(100*1024*1024), ByteSize(nil, 0, "100Mb"))
	assert.Equal(t, int64(1024), ByteSize(P("1Kb"), 0, "100Mb"))
	assert.Equal(t, int64(2048), ByteSize(P("1Kb"), 2048, "100Mb"))
	assert.Equal(t, int64(100*1024*1024), ByteSize(P("lots"), 0, "100Mb"))
}
