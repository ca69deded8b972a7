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
	"os"
	"path"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	libctx "github.com/nabbar/reactor/context"
	logfld "github.com/nabbar/reactor/logger/fields"
	loglvl "github.com/nabbar/reactor/logger/level"
)

const (
	keyLevel = iota
	keyWriter
)

var self = path.Base(reflect.TypeOf(lgr{}).PkgPath())

type lgr struct {
	m sync.RWMutex
	x libctx.Config[uint8]
	f logfld.Fields
	l *atomic.Value // *logrus.Logger
}

func defaultFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		ForceQuote:             true,
		QuoteEmptyFields:       true,
		FullTimestamp:          true,
		TimestampFormat:        time.RFC3339,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	}
}

func (o *lgr) logrusLogger() *logrus.Logger {
	if v, ok := o.l.Load().(*logrus.Logger); ok && v != nil {
		return v
	}
	r := logrus.New()
	r.SetFormatter(defaultFormatter())
	r.SetOutput(os.Stderr)
	o.l.Store(r)
	return r
}

func (o *lgr) getCaller() runtime.Frame {
	pc := make([]uintptr, 16)
	n := runtime.Callers(1, pc)

	if n > 0 {
		frames := runtime.CallersFrames(pc[:n])
		more := true

		for more {
			var frame runtime.Frame
			frame, more = frames.Next()

			if strings.Contains(frame.Function, self) {
				continue
			}

			return frame
		}
	}

	return runtime.Frame{Function: "unknown", File: "unknown", Line: 0}
}

// New returns a new Logger writing to stderr at InfoLevel.
func New() Logger {
	l := &lgr{
		m: sync.RWMutex{},
		x: libctx.New[uint8](nil),
		f: logfld.New(nil),
		l: new(atomic.Value),
	}

	l.SetLevel(loglvl.InfoLevel)

	return l
}

var _ io.Writer = (*lgr)(nil)

// Write implements io.Writer, allowing the logger to be used as the target
// of anything that expects a plain writer (e.g. a std log.Logger bridge).
// It always logs at InfoLevel and returns len(p), nil.
func (o *lgr) Write(p []byte) (n int, err error) {
	o.Entry(loglvl.InfoLevel, strings.TrimRight(string(p), "\n")).Log()
	return len(p), nil
}
