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

// Package confutil resolves the optional pointer fields of the config structs. A nil
// pointer, and for some helpers an unparsable value, falls back to a default. The log
// package depends on this one, so nothing in here can log.
package confutil

import (
	"io/fs"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

func P[T any](v T) *T {
	return &v
}

func valueOr[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}

// atLeast clamps the configured value upwards. Defaults are trusted as-is.
func atLeast[T int | int64 | time.Duration](v T, min T) T {
	if v < min {
		return min
	}
	return v
}

func Bool(bVal *bool, def bool) bool { return valueOr(bVal, def) }

func IntMin(iVal *int, min int, def int) int {
	if iVal == nil {
		return def
	}
	return atLeast(*iVal, min)
}

func StringNotEmpty(sVal *string, def string) string {
	if s := valueOr(sVal, ""); s != "" {
		return s
	}
	return def
}

// StringOrEmpty keeps an explicitly configured ""
func StringOrEmpty(sVal *string, def string) string { return valueOr(sVal, def) }

// UnixFileMode takes octal permission bits, such as "0600"
func UnixFileMode(sVal *string, def string) fs.FileMode {
	if sVal != nil {
		if u, err := strconv.ParseUint(*sVal, 8, 32); err == nil && u <= 0777 {
			return fs.FileMode(u)
		}
	}
	u, _ := strconv.ParseUint(def, 8, 32)
	return fs.FileMode(u)
}

func DurationMin(sVal *string, min time.Duration, def string) time.Duration {
	if sVal != nil {
		if d, err := time.ParseDuration(*sVal); err == nil {
			return atLeast(d, min)
		}
	}
	d, _ := time.ParseDuration(def)
	return atLeast(d, min)
}

// ByteSize accepts human sizes like "100Mb", in binary units
func ByteSize(sVal *string, min int64, def string) int64 {
	if sVal != nil {
		if b, err := units.RAMInBytes(*sVal); err == nil {
			return atLeast(b, min)
		}
	}
	b, _ := units.RAMInBytes(def)
	return b
}
