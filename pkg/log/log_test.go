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

package log

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogContext(t *testing.T) {
	ctx := WithLogField(context.Background(), "myfield", "myvalue")
	assert.Equal(t, "myvalue", L(ctx).Data["myfield"])
}

func TestLogContextNested(t *testing.T) {
	ctx := WithLogField(context.Background(), "outer", "a")
	ctx = WithLogField(ctx, "inner", "b")
	assert.Equal(t, "a", L(ctx).Data["outer"])
	assert.Equal(t, "b", L(ctx).Data["inner"])
	assert.Empty(t, L(context.Background()).Data)
}

func TestLogContextLimited(t *testing.T) {
	ctx := WithLogField(context.Background(), "myfield", "0123456789012345678901234567890123456789012345678901234567890123456789")
	assert.Equal(t, "0123456789012345678901234567890123456789012345678901234567890...", L(ctx).Data["myfield"])
}

func TestSetLevels(t *testing.T) {
	defer SetLevel("info")
	for _, tc := range []struct {
		in    string
		level logrus.Level
		out   string
	}{
		{"eRrOr", logrus.ErrorLevel, "error"},
		{"WARNING", logrus.WarnLevel, "warn"},
		{"DEBUG", logrus.DebugLevel, "debug"},
		{"trace", logrus.TraceLevel, "trace"},
		{"info", logrus.InfoLevel, "info"},
		{"something else", logrus.InfoLevel, "info"},
	} {
		SetLevel(tc.in)
		assert.Equal(t, tc.level, logrus.GetLevel(), tc.in)
		assert.Equal(t, tc.out, GetLevel(), tc.in)
	}
	SetLevel("warn")
	assert.False(t, IsDebugEnabled())
	SetLevel("trace")
	assert.True(t, IsDebugEnabled())
}

func TestFormats(t *testing.T) {
	defer func() { InitConfig(&config.LogConfig{}) }()
	for _, conf := range []*config.LogConfig{
		{DisableColor: confutil.P(true), UTC: confutil.P(true)},
		{Output: confutil.P("stdout")},
		{Format: confutil.P("detailed")},
		{Format: confutil.P("json"), JSON: config.LogJSONConfig{MessageField: confutil.P("msg")}},
		{Output: confutil.P("elsewhere"), Level: confutil.P("debug")},
	} {
		InitConfig(conf)
		L(context.Background()).Infof("format test")
	}
}

func TestFileOutput(t *testing.T) {
	defer func() { InitConfig(&config.LogConfig{}) }()
	logFile := path.Join(t.TempDir(), "keyproxy.log")
	InitConfig(&config.LogConfig{
		Output: confutil.P("file"),
		File: config.LogFileConfig{
			Filename: confutil.P(logFile),
		},
	})
	L(context.Background()).Infof("File logs")

	fileExists, err := os.Stat(logFile)
	require.NoError(t, err)
	assert.False(t, fileExists.IsDir())
}
