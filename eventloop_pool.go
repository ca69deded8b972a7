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
	"sync"
	"sync/atomic"

	"github.com/nabbar/reactor/logger"
)

// EventLoopThread launches a dedicated goroutine whose sole purpose is
// to construct an EventLoop and run its cycle. runtime.LockOSThread in
// EventLoop.Run pins that goroutine to one OS thread for the life of
// the loop, reproducing the source's one-thread-per-loop model.
type EventLoopThread struct {
	mu   sync.Mutex
	cond *sync.Cond
	loop *EventLoop
}

// NewEventLoopThread starts the thread and blocks until its EventLoop
// is constructed and addressable. initCb, if non-nil, runs on the new
// goroutine after the loop is constructed but before its cycle starts.
func NewEventLoopThread(log logger.Logger, initCb func(*EventLoop)) *EventLoopThread {
	t := &EventLoopThread{}
	t.cond = sync.NewCond(&t.mu)

	go t.run(log, initCb)

	t.mu.Lock()
	for t.loop == nil {
		t.cond.Wait()
	}
	t.mu.Unlock()

	return t
}

func (t *EventLoopThread) run(log logger.Logger, initCb func(*EventLoop)) {
	loop, err := NewEventLoop(log)
	if err != nil {
		if log != nil {
			log.Fatal("event loop thread: failed to construct loop", err)
		}
		return
	}

	t.mu.Lock()
	t.loop = loop
	t.cond.Signal()
	t.mu.Unlock()

	if initCb != nil {
		initCb(loop)
	}

	loop.Run()
}

// Loop returns the thread's EventLoop. Valid only after construction returns.
func (t *EventLoopThread) Loop() *EventLoop { return t.loop }

// EventLoopThreadPool owns N worker loops on dedicated threads and
// hands them out round-robin. With N == 0 the pool simply returns the
// base (main) loop for every pick — single-loop mode.
type EventLoopThreadPool struct {
	base *EventLoop
	log  logger.Logger

	numThreads int
	threads    []*EventLoopThread
	next       int

	started atomic.Bool
}

// NewEventLoopThreadPool creates a pool backed by base for single-loop
// mode (N == 0). SetThreadNum must be called before Start to use
// dedicated worker threads.
func NewEventLoopThreadPool(base *EventLoop, log logger.Logger) *EventLoopThreadPool {
	return &EventLoopThreadPool{base: base, log: log}
}

// SetThreadNum sets the pool size. It has no effect after Start.
func (p *EventLoopThreadPool) SetThreadNum(n int) {
	if p.started.Load() {
		return
	}
	if n < 0 {
		n = 0
	}
	p.numThreads = n
}

// Start launches numThreads EventLoopThreads. It is idempotent: only
// the first call has any effect, matching TcpServer.Start()'s own
// idempotence over the pool it owns.
func (p *EventLoopThreadPool) Start(initCb func(*EventLoop)) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}

	for i := 0; i < p.numThreads; i++ {
		p.threads = append(p.threads, NewEventLoopThread(p.log, initCb))
	}
}

// GetNextLoop returns the next worker loop round-robin, or the base
// loop when the pool size is 0. Must only be called from the base loop.
func (p *EventLoopThreadPool) GetNextLoop() *EventLoop {
	if p.numThreads == 0 || len(p.threads) == 0 {
		return p.base
	}

	loop := p.threads[p.next].Loop()
	p.next = (p.next + 1) % len(p.threads)
	return loop
}
