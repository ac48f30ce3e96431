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
	"io"
	"math"
	"os"
	"strings"
	"sync/atomic"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	rootLogger = logrus.NewEntry(logrus.StandardLogger())

	// L returns the logger carried by ctx, with any fields added by WithLogField
	L = loggerFromContext

	initialized atomic.Bool
)

// field values longer than this are truncated, so ids and URIs do not swamp a line
const maxFieldLen = 61

type ctxLogKey struct{}

var levels = map[string]logrus.Level{
	"error":   logrus.ErrorLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"info":    logrus.InfoLevel,
	"debug":   logrus.DebugLevel,
	"trace":   logrus.TraceLevel,
}

func InitConfig(conf *config.LogConfig) {
	initialized.Store(true)

	SetLevel(confutil.StringNotEmpty(conf.Level, *config.LogDefaults.Level))
	logrus.SetOutput(outputFor(conf))
	logrus.SetReportCaller(false)
	logrus.SetFormatter(formatterFor(conf))
}

func outputFor(conf *config.LogConfig) io.Writer {
	switch confutil.StringNotEmpty(conf.Output, *config.LogDefaults.Output) {
	case "file":
		return fileOutput(&conf.File)
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}

// fileOutput rolls by size and age. lumberjack counts in whole megabytes and days, so
// configured values are rounded up.
func fileOutput(conf *config.LogFileConfig) *lumberjack.Logger {
	defs := &config.LogDefaults.File
	filename := confutil.StringNotEmpty(conf.Filename, *defs.Filename)
	rootLogger.Infof("Logging to file %s", filename)
	maxSize := confutil.ByteSize(conf.MaxSize, 0, *defs.MaxSize)
	maxAge := confutil.DurationMin(conf.MaxAge, 0, *defs.MaxAge)
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    int(math.Ceil(float64(maxSize) / (1024 * 1024))),
		MaxAge:     int(math.Ceil(maxAge.Hours() / 24)),
		MaxBackups: confutil.IntMin(conf.MaxBackups, 0, *defs.MaxBackups),
		Compress:   confutil.Bool(conf.Compress, *defs.Compress),
	}
}

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return f.Formatter.Format(e)
}

func formatterFor(conf *config.LogConfig) logrus.Formatter {
	defs := config.LogDefaults
	timeFormat := confutil.StringNotEmpty(conf.TimeFormat, *defs.TimeFormat)
	noColor := confutil.Bool(conf.DisableColor, *defs.DisableColor)
	forceColor := confutil.Bool(conf.ForceColor, *defs.ForceColor)

	var formatter logrus.Formatter
	switch confutil.StringNotEmpty(conf.Format, *defs.Format) {
	case "json":
		formatter = jsonFormatter(&conf.JSON, timeFormat)
	case "detailed":
		// caller info is the detail
		logrus.SetReportCaller(true)
		formatter = &logrus.TextFormatter{
			DisableColors:   noColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			FullTimestamp:   true,
		}
	default:
		formatter = &prefixed.TextFormatter{
			DisableColors:   noColor,
			ForceColors:     forceColor,
			TimestampFormat: timeFormat,
			ForceFormatting: true,
			FullTimestamp:   true,
		}
	}
	if confutil.Bool(conf.UTC, *defs.UTC) {
		return utcFormatter{formatter}
	}
	return formatter
}

func jsonFormatter(conf *config.LogJSONConfig, timeFormat string) *logrus.JSONFormatter {
	defs := &config.LogDefaults.JSON
	field := func(v *string, def *string) string { return confutil.StringNotEmpty(v, *def) }
	return &logrus.JSONFormatter{
		TimestampFormat: timeFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  field(conf.TimestampField, defs.TimestampField),
			logrus.FieldKeyLevel: field(conf.LevelField, defs.LevelField),
			logrus.FieldKeyMsg:   field(conf.MessageField, defs.MessageField),
			logrus.FieldKeyFunc:  field(conf.FuncField, defs.FuncField),
			logrus.FieldKeyFile:  field(conf.FileField, defs.FileField),
		},
	}
}

// WithLogField returns a context whose logger carries key=value on every line. The first
// use initializes logging with defaults if InitConfig has not been called, which is what
// gives unit tests readable output.
func WithLogField(ctx context.Context, key, value string) context.Context {
	if !initialized.Load() {
		InitConfig(&config.LogConfig{})
	}
	if len(value) > maxFieldLen {
		value = value[:maxFieldLen] + "..."
	}
	return context.WithValue(ctx, ctxLogKey{}, loggerFromContext(ctx).WithField(key, value))
}

func loggerFromContext(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(ctxLogKey{}).(*logrus.Entry); ok {
		return logger
	}
	return rootLogger
}

func GetLevel() string {
	level := logrus.GetLevel()
	if level == logrus.WarnLevel {
		return "warn"
	}
	for name, l := range levels {
		if l == level && name != "warning" {
			return name
		}
	}
	return "info"
}

// SetLevel is case insensitive, and falls back to info for anything it does not recognize
func SetLevel(level string) {
	l, ok := levels[strings.ToLower(level)]
	if !ok {
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

func IsDebugEnabled() bool {
	return logrus.IsLevelEnabled(logrus.DebugLevel)
}
