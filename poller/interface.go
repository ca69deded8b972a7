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

// Package poller implements the readiness source the reactor core
// consumes: a level-triggered, per-fd readable/writable/hangup/error
// notifier with a dedicated wakeup descriptor for cross-thread posts.
package poller

import "time"

// Interest is the set of events a registered descriptor currently wants reported.
type Interest uint8

const (
	InterestNone Interest = 0
	Readable     Interest = 1 << iota
	Writable
)

// Event is the most-recently-observed readiness mask for one descriptor.
type Event struct {
	Readable bool
	Writable bool
	Hangup   bool
	Error    bool
}

// PolledEvent pairs a file descriptor with its observed readiness mask
// for one iteration of Poll.
type PolledEvent struct {
	Fd    int
	Event Event
}

// Poller is the readiness source an EventLoop programs against. A
// Poller instance must only ever be called from the single goroutine
// that owns it (the EventLoop's loop goroutine) — see spec §4.2.
type Poller interface {
	// Poll blocks up to timeout for at least one registered descriptor
	// to become ready, and returns every descriptor observed ready.
	// A non-positive timeout blocks indefinitely.
	Poll(timeout time.Duration) ([]PolledEvent, error)

	// Add registers fd with the given interest mask.
	Add(fd int, interest Interest) error

	// Modify changes the interest mask of an already-registered fd.
	Modify(fd int, interest Interest) error

	// Remove unregisters fd. It is not an error to remove an fd that
	// was already closed out from under the poller.
	Remove(fd int) error

	// Close releases the poller's own resources (epoll fd, wakeup fd).
	// It does not close any registered application fd.
	Close() error

	// WakeFD returns the descriptor used for cross-thread wakeup. It is
	// registered for Readable interest automatically by New and should
	// be drained by its owner's read callback, not removed.
	WakeFD() int

	// Wake causes the next (or in-flight) Poll call to return promptly,
	// by writing to WakeFD. Safe to call from any goroutine.
	Wake() error
}
