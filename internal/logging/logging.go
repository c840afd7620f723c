// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the loggers used by the vcperf commands.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger named name that writes plain lines such as
//
//	warn vcstat: export failed {"dest": "gs://b/o"}
//
// to w. Debug messages are only written if verbose is set.
func New(w io.Writer, name string, verbose bool) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.LowercaseLevelEncoder,
		EncodeName:       func(n string, e zapcore.PrimitiveArrayEncoder) { e.AppendString(n + ":") },
		ConsoleSeparator: " ",
	})
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core).Named(name)
}
