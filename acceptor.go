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
	"net"
	"time"

	"github.com/nabbar/reactor/logger"
)

// NewConnCallback receives a freshly accepted, not-yet-wrapped socket
// descriptor and its peer address.
type NewConnCallback func(connFd int, peerAddr *net.TCPAddr)

// Acceptor wraps the listening socket's channel on the main loop. On
// readable it performs exactly one non-blocking accept per spec §4.6.
type Acceptor struct {
	loop      *EventLoop
	listenFd  int
	channel   *Channel
	log       logger.Logger
	listening bool

	newConnCb NewConnCallback
}

// NewAcceptor creates, binds and listens on addr, but does not start
// accepting connections until Listen is called.
func NewAcceptor(loop *EventLoop, addr *net.TCPAddr, reusePort bool, log logger.Logger) (*Acceptor, error) {
	if log == nil {
		log = logger.New()
	}

	if loop == nil {
		// A nil main loop is a programmer error at startup: fatal per
		// spec §7's "null main loop" case.
		log.Fatal("acceptor: a main loop is required", codeLoopNoMainLoop.Error())
		return nil, codeLoopNoMainLoop.Error()
	}

	fd, err := createListenSocket(addr, reusePort)
	if err != nil {
		// Socket creation, bind and listen failures are all fatal
		// configuration errors per spec §7: they indicate the listen
		// address or environment is unusable, not a transient per-
		// connection condition.
		log.Fatal("acceptor: failed to create listening socket", err)
		return nil, err
	}

	a := &Acceptor{loop: loop, listenFd: fd, log: log}
	a.channel = NewChannel(loop, fd)
	a.channel.SetReadCallback(a.handleRead)

	return a, nil
}

// SetNewConnectionCallback registers the callback invoked on each
// successful accept. If unset, accepted descriptors are closed immediately.
func (a *Acceptor) SetNewConnectionCallback(cb NewConnCallback) {
	a.newConnCb = cb
}

// Listen enables readable interest on the listening socket's channel,
// starting delivery of incoming connections.
func (a *Acceptor) Listen() {
	a.listening = true
	a.channel.EnableReading()
}

func (a *Acceptor) handleRead(now time.Time) {
	connFd, peer, err := acceptConn(a.listenFd)
	if err != nil {
		if isWouldBlock(err) {
			return
		}
		if isTooManyOpenFiles(err) {
			a.log.Error("acceptor: too many open files, will retry on next readable event", err)
			return
		}
		a.log.Error("acceptor: accept failed", err)
		return
	}

	if a.newConnCb == nil {
		_ = closeFd(connFd)
		return
	}

	a.newConnCb(connFd, peer)
}
