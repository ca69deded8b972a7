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
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/nabbar/reactor/logger"
)

// TcpServer composes the acceptor, bound to a caller-supplied main loop,
// with a pool of worker loops. It owns the strong reference to every
// live TcpConnection via its connections map, main-loop-confined.
type TcpServer struct {
	mainLoop *EventLoop
	pool     *EventLoopThreadPool
	acceptor *Acceptor

	name string
	addr *net.TCPAddr
	log  logger.Logger

	reusePort     bool
	threadInitCb  func(*EventLoop)
	highWaterMark int

	connCb ConnectionCallback
	msgCb  MessageCallback
	wcCb   WriteCompleteCallback
	hwmCb  HighWaterMarkCallback

	nextConnID uint64

	mu          sync.Mutex
	connections map[string]*TcpConnection

	started atomic.Bool
}

// Option configures a TcpServer at construction time.
type Option func(*TcpServer)

// New resolves addr and constructs a TcpServer bound to mainLoop. The
// acceptor binds and listens immediately; connections are only accepted
// once Start is called.
func New(mainLoop *EventLoop, name, addr string, opts ...Option) (*TcpServer, error) {
	if mainLoop == nil {
		// A nil main loop is a programmer error at startup, not a
		// recoverable condition: logged at Fatal and aborts the process
		// per spec §7's "null main loop" fatal-configuration case.
		logger.New().Fatal("tcp server: a main loop is required", codeLoopNoMainLoop.Error())
		return nil, codeLoopNoMainLoop.Error()
	}

	s := &TcpServer{
		mainLoop:      mainLoop,
		name:          name,
		log:           logger.New(),
		highWaterMark: DefaultHighWaterMark,
		connections:   make(map[string]*TcpConnection),
	}
	s.pool = NewEventLoopThreadPool(mainLoop, s.log)

	for _, o := range opts {
		o(s)
	}
	s.pool.log = s.log

	tcpAddr, err := net.ResolveTCPAddr("tcp4", addr)
	if err != nil {
		return nil, codeServerResolveFailed.Error(err)
	}
	s.addr = tcpAddr

	acc, err := NewAcceptor(mainLoop, tcpAddr, s.reusePort, s.log)
	if err != nil {
		return nil, err
	}
	s.acceptor = acc
	s.acceptor.SetNewConnectionCallback(s.newConnection)

	return s, nil
}

// SetThreadNum sets the worker pool size. Has no effect after Start.
func (s *TcpServer) SetThreadNum(n int) { s.pool.SetThreadNum(n) }

// SetThreadInitCallback registers a callback run on each worker loop's
// own goroutine right after construction, before it starts polling.
func (s *TcpServer) SetThreadInitCallback(cb func(*EventLoop)) { s.threadInitCb = cb }

func (s *TcpServer) SetConnectionCallback(cb ConnectionCallback)       { s.connCb = cb }
func (s *TcpServer) SetMessageCallback(cb MessageCallback)             { s.msgCb = cb }
func (s *TcpServer) SetWriteCompleteCallback(cb WriteCompleteCallback) { s.wcCb = cb }
func (s *TcpServer) SetHighWaterMarkCallback(cb HighWaterMarkCallback) { s.hwmCb = cb }

// Start is idempotent: only the first call starts the worker pool and
// posts the acceptor's Listen to the main loop.
func (s *TcpServer) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.pool.Start(s.threadInitCb)
	s.mainLoop.RunInLoop(s.acceptor.Listen)
}

// OpenConnections returns the number of connections currently tracked by
// the server map. Safe to call from any goroutine.
func (s *TcpServer) OpenConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

// newConnection runs on the main loop (the acceptor's callback): it
// picks the next worker, builds the connection's unique name, constructs
// the TcpConnection, stores the strong reference and posts
// connectEstablished to the owning worker.
func (s *TcpServer) newConnection(connFd int, peerAddr *net.TCPAddr) {
	worker := s.pool.GetNextLoop()

	local, err := getLocalAddr(connFd)
	if err != nil {
		s.log.Error("server: failed to resolve local address for accepted socket", err)
		_ = closeFd(connFd)
		return
	}

	id := atomic.AddUint64(&s.nextConnID, 1)
	name := fmt.Sprintf("%s-%s#%d", s.name, peerAddr.String(), id)

	conn := NewTcpConnection(worker, name, connFd, local, peerAddr, s.log)
	conn.SetHighWaterMark(s.highWaterMark)
	conn.SetConnectionCallback(s.connCb)
	conn.SetMessageCallback(s.msgCb)
	conn.SetWriteCompleteCallback(s.wcCb)
	conn.SetHighWaterMarkCallback(s.hwmCb)
	conn.SetCloseCallback(s.removeConnection)

	s.mu.Lock()
	s.connections[name] = conn
	s.mu.Unlock()

	worker.RunInLoop(conn.connectEstablished)
}

// removeConnection is wired as every connection's close callback. It
// always bounces to the main loop, per spec §4.8, so the connections map
// is only ever mutated on the thread that owns it.
func (s *TcpServer) removeConnection(conn *TcpConnection) {
	s.mainLoop.RunInLoop(func() { s.removeConnectionInLoop(conn) })
}

func (s *TcpServer) removeConnectionInLoop(conn *TcpConnection) {
	s.mu.Lock()
	delete(s.connections, conn.Name())
	s.mu.Unlock()

	conn.loop.RunInLoop(conn.connectDestroyed)
}

// Stop tears down every live connection: for each, it takes a local
// reference, clears the map and posts connectDestroyed to its owning
// worker. It does not stop the worker pool's loops themselves; callers
// that also own those loops should Quit them once Stop returns.
func (s *TcpServer) Stop() {
	s.mu.Lock()
	conns := make([]*TcpConnection, 0, len(s.connections))
	for _, c := range s.connections {
		conns = append(conns, c)
	}
	s.connections = make(map[string]*TcpConnection)
	s.mu.Unlock()

	for _, conn := range conns {
		c := conn
		c.loop.RunInLoop(c.connectDestroyed)
	}
}
