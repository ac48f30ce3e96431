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

// LogConfig controls the process wide logrus setup. Every field is optional, with
// LogDefaults filling the gaps.
type LogConfig struct {
	Level  *string `json:"level"`  // error, warn, info, debug or trace
	Format *string `json:"format"` // simple, detailed (adds caller info) or json
	Output *string `json:"output"` // stderr, stdout or file

	ForceColor   *bool   `json:"forceColor"`
	DisableColor *bool   `json:"disableColor"`
	TimeFormat   *string `json:"timeFormat"`
	UTC          *bool   `json:"utc"`

	File LogFileConfig `json:"file"` // only read when output is file
	JSON LogJSONConfig `json:"json"` // only read when format is json
}

// LogFileConfig sets the rolling behavior for file output
type LogFileConfig struct {
	Filename   *string `json:"filename"`
	MaxSize    *string `json:"maxSize"` // byte size such as 100Mb, rounded up to whole megabytes
	MaxBackups *int    `json:"maxBackups"`
	MaxAge     *string `json:"maxAge"` // duration, rounded up to whole days
	Compress   *bool   `json:"compress"`
}

// LogJSONConfig renames the standard fields in json output
type LogJSONConfig struct {
	TimestampField *string `json:"timestampField"`
	LevelField     *string `json:"levelField"`
	MessageField   *string `json:"messageField"`
	FuncField      *string `json:"funcField"`
	FileField      *string `json:"fileField"`
}

var LogDefaults = &LogConfig{
	Level:        confutil.P("info"),
	Format:       confutil.P("simple"),
	Output:       confutil.P("stderr"),
	ForceColor:   confutil.P(false),
	DisableColor: confutil.P(false),
	TimeFormat:   confutil.P("2006-01-02T15:04:05.000Z07:00"),
	UTC:          confutil.P(false),
	File: LogFileConfig{
		Filename:   confutil.P("keyproxy.log"),
		MaxSize:    confutil.P("100Mb"),
		MaxBackups: confutil.P(2),
		MaxAge:     confutil.P("24h"),
		Compress:   confutil.P(true),
	},
	JSON: LogJSONConfig{
		TimestampField: confutil.P("@timestamp"),
		LevelField:     confutil.P("level"),
		MessageField:   confutil.P("message"),
		FuncField:      confutil.P("func"),
		FileField:      confutil.P("file"),
	},
}
