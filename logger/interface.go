/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package logger

import (
	"io"

	logfld "github.com/nabbar/reactor/logger/fields"
	loglvl "github.com/nabbar/reactor/logger/level"
)

// Logger is the logging interface consumed by the reactor core. It is kept
// deliberately small: level filtering, a default field set, and entry
// creation. Callers that need a plain io.Writer (e.g. to bridge a third
// party component) can use the Logger itself, which implements io.Writer.
type Logger interface {
	io.Writer

	// SetLevel sets the minimal level of message that is actually logged.
	SetLevel(lvl loglvl.Level)

	// GetLevel returns the minimal level of message that is actually logged.
	GetLevel() loglvl.Level

	// SetOutput changes the destination writer. Default is os.Stderr.
	SetOutput(w io.Writer)

	// SetFields replaces the default fields attached to every entry.
	SetFields(field logfld.Fields)

	// GetFields returns the default fields attached to every entry.
	GetFields() logfld.Fields

	// Debug logs a message at DebugLevel.
	Debug(message string, data interface{})

	// Info logs a message at InfoLevel.
	Info(message string, data interface{})

	// Warning logs a message at WarnLevel.
	Warning(message string, data interface{})

	// Error logs a message at ErrorLevel.
	Error(message string, data interface{})

	// Fatal logs a message at FatalLevel then terminates the process
	// (os.Exit(1)). Reserved for unrecoverable configuration errors
	// (listen/bind/socket creation failure) per the error taxonomy.
	Fatal(message string, data interface{})

	// Entry returns an Entry the caller can enrich (fields, errors) before
	// calling Log on it.
	Entry(lvl loglvl.Level, message string) Entry
}
