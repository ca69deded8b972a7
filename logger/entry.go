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

	"github.com/sirupsen/logrus"

	logfld "github.com/nabbar/reactor/logger/fields"
	loglvl "github.com/nabbar/reactor/logger/level"
)

// Entry is a single log record under construction. It is not safe for
// concurrent use; build it and call Log from one goroutine.
type Entry interface {
	// FieldAdd attaches an extra field to this entry only.
	FieldAdd(key string, val interface{}) Entry

	// ErrorAdd attaches a parent error, if non-nil, to this entry.
	ErrorAdd(err error) Entry

	// Log emits the entry through the owning logger.
	Log()
}

type entry struct {
	o   *lgr
	lvl loglvl.Level
	msg string
	fld logfld.Fields
	err error
}

func (o *lgr) Entry(lvl loglvl.Level, message string) Entry {
	return &entry{
		o:   o,
		lvl: lvl,
		msg: message,
		fld: o.GetFields().Clone(),
	}
}

func (e *entry) FieldAdd(key string, val interface{}) Entry {
	if e.fld == nil {
		e.fld = logfld.New(nil)
	}
	e.fld.Add(key, val)
	return e
}

func (e *entry) ErrorAdd(err error) Entry {
	if err != nil {
		e.err = err
	}
	return e
}

func (e *entry) Log() {
	if e.lvl.Uint8() > e.o.GetLevel().Uint8() {
		return
	}

	r := e.o.logrusLogger()

	fields := logrus.Fields{}
	if e.fld != nil {
		fields = e.fld.Logrus()
	}

	frame := e.o.getCaller()
	fields["file"] = frame.File
	fields["line"] = frame.Line
	fields["func"] = frame.Function

	if e.err != nil {
		fields["error"] = e.err.Error()
	}

	r.WithFields(fields).Log(e.lvl.Logrus(), e.msg)
}

func (o *lgr) SetLevel(lvl loglvl.Level) {
	o.m.Lock()
	defer o.m.Unlock()
	o.x.Store(keyLevel, lvl)
	o.logrusLogger().SetLevel(lvl.Logrus())
}

func (o *lgr) GetLevel() loglvl.Level {
	o.m.RLock()
	defer o.m.RUnlock()
	if v, ok := o.x.Load(keyLevel); ok {
		if l, k := v.(loglvl.Level); k {
			return l
		}
	}
	return loglvl.InfoLevel
}

func (o *lgr) SetOutput(w io.Writer) {
	o.m.Lock()
	defer o.m.Unlock()
	o.logrusLogger().SetOutput(w)
}

func (o *lgr) SetFields(field logfld.Fields) {
	o.m.Lock()
	defer o.m.Unlock()
	o.f = field
}

func (o *lgr) GetFields() logfld.Fields {
	o.m.RLock()
	defer o.m.RUnlock()
	if o.f == nil {
		return logfld.New(nil)
	}
	return o.f
}

func (o *lgr) Debug(message string, data interface{}) {
	o.logEntry(loglvl.DebugLevel, message, data)
}

func (o *lgr) Info(message string, data interface{}) {
	o.logEntry(loglvl.InfoLevel, message, data)
}

func (o *lgr) Warning(message string, data interface{}) {
	o.logEntry(loglvl.WarnLevel, message, data)
}

func (o *lgr) Error(message string, data interface{}) {
	o.logEntry(loglvl.ErrorLevel, message, data)
}

func (o *lgr) Fatal(message string, data interface{}) {
	o.logEntry(loglvl.FatalLevel, message, data)
	os.Exit(1)
}

func (o *lgr) logEntry(lvl loglvl.Level, message string, data interface{}) {
	e := o.Entry(lvl, message)
	if data != nil {
		if err, ok := data.(error); ok {
			e.ErrorAdd(err)
		} else {
			e.FieldAdd("data", data)
		}
	}
	e.Log()
}
