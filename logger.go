// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/streamfile

package streamfile

// Logger receives adapter diagnostics.
//
// The method set is a subset of both *zap.SugaredLogger and *logrus.Logger,
// so either can be passed directly.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards all diagnostics.
var NopLogger Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// mustLogger returns l, or NopLogger when l is nil.
func mustLogger(l Logger) Logger {
	if l == nil {
		return NopLogger
	}

	return l
}

// loggerOf returns diagnostics logger carried by sf.
// Sources from other packages that do not carry one get NopLogger.
func loggerOf(sf Source) Logger {
	if c, ok := sf.(interface{ Logger() Logger }); ok {
		return mustLogger(c.Logger())
	}

	return NopLogger
}

// LoggerOf returns diagnostics logger carried by a stack, for parsers built on top of it.
func LoggerOf(sf Source) Logger {
	if sf == nil {
		return NopLogger
	}

	return loggerOf(sf)
}
