/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2024 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package reactor

import (
	"time"

	"github.com/nabbar/reactor/poller"
)

// Channel binds one file descriptor to up to four callbacks on a
// single EventLoop. Every mutation of its interest mask and every
// callback invocation happens on that loop's goroutine.
type Channel struct {
	loop     *EventLoop
	fd       int
	interest poller.Interest

	guard func() bool

	onRead  func(now time.Time)
	onWrite func(now time.Time)
	onClose func()
	onError func(err error)
}

// NewChannel creates a Channel for fd on loop. The channel starts with
// no interest and no callbacks; it is not registered with the loop's
// poller until a mutator (EnableReading/EnableWriting) is called.
func NewChannel(loop *EventLoop, fd int) *Channel {
	return &Channel{loop: loop, fd: fd}
}

func (c *Channel) Fd() int { return c.fd }

func (c *Channel) Loop() *EventLoop { return c.loop }

func (c *Channel) SetReadCallback(fn func(now time.Time))  { c.onRead = fn }
func (c *Channel) SetWriteCallback(fn func(now time.Time)) { c.onWrite = fn }
func (c *Channel) SetCloseCallback(fn func())              { c.onClose = fn }
func (c *Channel) SetErrorCallback(fn func(err error))     { c.onError = fn }

// Tie attaches a lifetime guard: handleEvent calls it first and skips
// every callback if it returns false, per spec §4.3. A nil guard (the
// default) means the channel is always considered alive.
func (c *Channel) Tie(guard func() bool) { c.guard = guard }

func (c *Channel) IsReading() bool { return c.interest&poller.Readable != 0 }
func (c *Channel) IsWriting() bool { return c.interest&poller.Writable != 0 }

func (c *Channel) EnableReading() {
	c.interest |= poller.Readable
	c.loop.updateChannel(c)
}

func (c *Channel) DisableReading() {
	c.interest &^= poller.Readable
	c.loop.updateChannel(c)
}

func (c *Channel) EnableWriting() {
	c.interest |= poller.Writable
	c.loop.updateChannel(c)
}

func (c *Channel) DisableWriting() {
	c.interest &^= poller.Writable
	c.loop.updateChannel(c)
}

func (c *Channel) DisableAll() {
	c.interest = poller.InterestNone
	c.loop.updateChannel(c)
}

// Remove unregisters the channel from its loop entirely. Callers must
// DisableAll before Remove, per the Channel lifecycle in spec §3.
func (c *Channel) Remove() {
	c.loop.removeChannel(c)
}

// handleEvent applies the lifetime guard, then dispatches callbacks in
// the fixed order required by spec §4.3.
func (c *Channel) handleEvent(ev poller.Event) {
	if c.guard != nil && !c.guard() {
		return
	}
	c.handleEventWithGuard(ev)
}

func (c *Channel) handleEventWithGuard(ev poller.Event) {
	now := time.Now()

	if ev.Hangup && !ev.Readable {
		if c.onClose != nil {
			c.onClose()
		}
		return
	}

	if ev.Error {
		if c.onError != nil {
			c.onError(errChannelFault(c.fd))
		}
	}

	if ev.Readable {
		if c.onRead != nil {
			c.onRead(now)
		}
	}

	if ev.Writable {
		if c.onWrite != nil {
			c.onWrite(now)
		}
	}
}
