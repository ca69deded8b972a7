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
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/reactor/duration"
	"github.com/nabbar/reactor/logger"
	"github.com/nabbar/reactor/poller"
)

// TaskFunc is a unit of work posted to an EventLoop via RunInLoop/QueueInLoop.
type TaskFunc func()

// DefaultPollTimeout bounds how long one Poll call may block when
// nothing is otherwise scheduled; it is also the upper bound on how
// promptly Quit() takes effect when called from the loop's own thread.
const DefaultPollTimeout = duration.Duration(time.Second)

// EventLoop owns one readiness source and the set of channels
// registered against it, and runs the readiness -> dispatch ->
// pending-tasks cycle on exactly one goroutine for its entire life.
// Only RunInLoop and QueueInLoop may be called from any goroutine;
// every other method is loop-confined.
type EventLoop struct {
	src     poller.Poller
	log     logger.Logger
	timeout duration.Duration

	channels map[int]*Channel
	connTbl  map[int]*TcpConnection

	wakeChannel *Channel

	gid       atomic.Int64 // goroutine id of the running Run() goroutine, 0 until started
	quitFlag  atomic.Bool
	inPending atomic.Bool

	mu      sync.Mutex
	pending []TaskFunc
}

// NewEventLoop constructs an EventLoop bound to a fresh poller
// instance. It does not start running until Run is called.
func NewEventLoop(log logger.Logger) (*EventLoop, error) {
	if log == nil {
		log = logger.New()
	}

	src, err := poller.New()
	if err != nil {
		// Readiness-source initialization failure is a fatal configuration
		// error per spec §7: it indicates environment misconfiguration
		// (e.g. fd exhaustion) at startup, not a recoverable per-connection
		// condition, so it is logged at Fatal and aborts the process.
		log.Fatal("event loop: poller initialization failed", err)
		return nil, codeLoopPollerInit.Error(err)
	}

	l := &EventLoop{
		src:      src,
		log:      log,
		timeout:  DefaultPollTimeout,
		channels: make(map[int]*Channel),
		connTbl:  make(map[int]*TcpConnection),
	}

	l.wakeChannel = NewChannel(l, src.WakeFD())
	// Draining happens inside the poller itself once it observes the
	// wakeup fd ready; this callback exists so the wakeup fd is, per
	// spec §4.4, registered and dispatched as an ordinary channel.
	l.wakeChannel.SetReadCallback(func(time.Time) {})
	l.channels[src.WakeFD()] = l.wakeChannel

	return l, nil
}

// SetPollTimeout overrides the default poll timeout.
func (l *EventLoop) SetPollTimeout(d duration.Duration) { l.timeout = d }

// IsInLoopThread reports whether the calling goroutine is the one
// currently executing this loop's Run cycle.
func (l *EventLoop) IsInLoopThread() bool {
	return l.gid.Load() == currentGoroutineID()
}

func (l *EventLoop) assertInLoopThread() {
	if !l.IsInLoopThread() {
		l.log.Warning("event loop: operation invoked off the owning loop goroutine", nil)
	}
}

// RunInLoop executes task synchronously if called from the owning
// goroutine, otherwise it is queued for the loop to run.
func (l *EventLoop) RunInLoop(task TaskFunc) {
	if l.IsInLoopThread() {
		task()
		return
	}
	l.QueueInLoop(task)
}

// QueueInLoop appends task to the pending-task queue. The wakeup fd is
// armed whenever the caller is off-loop, or when the loop itself is
// currently draining the pending-task phase (so a task that
// re-schedules itself does not starve behind the next poll timeout).
func (l *EventLoop) QueueInLoop(task TaskFunc) {
	wake := false

	l.mu.Lock()
	l.pending = append(l.pending, task)
	if !l.IsInLoopThread() || l.inPending.Load() {
		wake = true
	}
	l.mu.Unlock()

	if wake {
		if err := l.src.Wake(); err != nil {
			l.log.Error("event loop: wakeup write failed", err)
		}
	}
}

func (l *EventLoop) drainPending() []TaskFunc {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return nil
	}

	tasks := l.pending
	l.pending = nil
	return tasks
}

// Run executes the readiness -> dispatch -> pending-tasks cycle until
// Quit is called. It locks the calling goroutine to its OS thread for
// the duration of the cycle, reproducing the one-thread-per-loop
// affinity the reactor's design assumes.
func (l *EventLoop) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.gid.Store(currentGoroutineID())

	for !l.quitFlag.Load() {
		events, err := l.src.Poll(l.timeout.Time())
		if err != nil {
			l.log.Error("event loop: poll failed", err)
			continue
		}

		for _, ev := range events {
			if ch, ok := l.channels[ev.Fd]; ok {
				ch.handleEvent(ev.Event)
			}
		}

		tasks := l.drainPending()
		l.inPending.Store(true)
		for _, task := range tasks {
			task()
		}
		l.inPending.Store(false)
	}
}

// Quit causes Run to return after its current iteration. If called
// from another goroutine it wakes a blocked Poll call immediately.
func (l *EventLoop) Quit() {
	l.quitFlag.Store(true)
	if !l.IsInLoopThread() {
		_ = l.src.Wake()
	}
}

func (l *EventLoop) updateChannel(c *Channel) {
	l.assertInLoopThread()

	if _, ok := l.channels[c.fd]; !ok {
		l.channels[c.fd] = c
		if err := l.src.Add(c.fd, c.interest); err != nil {
			l.log.Error("event loop: failed to register channel", err)
		}
		return
	}
	if err := l.src.Modify(c.fd, c.interest); err != nil {
		l.log.Error("event loop: failed to update channel", err)
	}
}

func (l *EventLoop) removeChannel(c *Channel) {
	l.assertInLoopThread()

	delete(l.channels, c.fd)
	if err := l.src.Remove(c.fd); err != nil {
		l.log.Error("event loop: failed to remove channel", err)
	}
}

// trackConnection, untrackConnection and hasConnection implement the
// id/lookup-table analog to a weak-reference lifetime guard (spec
// Design Notes §9, resolved in DESIGN.md): a connection's Channel is
// tied to hasConnection(fd), checked against a table mutated only by
// this loop's own goroutine.
func (l *EventLoop) trackConnection(fd int, conn *TcpConnection) {
	l.assertInLoopThread()
	l.connTbl[fd] = conn
}

func (l *EventLoop) untrackConnection(fd int) {
	l.assertInLoopThread()
	delete(l.connTbl, fd)
}

func (l *EventLoop) hasConnection(fd int) bool {
	_, ok := l.connTbl[fd]
	return ok
}

// currentGoroutineID extracts the running goroutine's id from its own
// stack trace header ("goroutine 123 [running]:"). It is an
// approximation of thread-local storage — the mechanism spec Design
// Notes explicitly leaves to the implementation — used only to assert
// loop-thread affinity, never for scheduling decisions.
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}
