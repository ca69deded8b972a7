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

	"github.com/nabbar/reactor/buffer"
	"github.com/nabbar/reactor/logger"
)

// DefaultHighWaterMark is the outputBuffer size, in bytes, past which a
// connection's high-water-mark callback fires (once per crossing).
const DefaultHighWaterMark = 64 * 1024 * 1024

// ConnectionCallback fires once on connectEstablished and once on teardown;
// conn.State() distinguishes the two.
type ConnectionCallback func(conn *TcpConnection)

// MessageCallback delivers newly read bytes. The buffer is the
// connection's input buffer; un-retrieved bytes remain for the next call.
type MessageCallback func(conn *TcpConnection, in buffer.Buffer, receiveTime time.Time)

// WriteCompleteCallback fires when a previously queued send has been
// fully flushed to the socket.
type WriteCompleteCallback func(conn *TcpConnection)

// HighWaterMarkCallback fires the first time outputBuffer crosses the
// configured high-water mark from below; it does not repeat until the
// buffer drains back under the mark and crosses again.
type HighWaterMarkCallback func(conn *TcpConnection, bufferedBytes int)

// CloseCallback is always wired by TcpServer to its own removeConnection.
type CloseCallback func(conn *TcpConnection)

// TcpConnection is the per-connection state machine: owns the connected
// socket, its channel, its input/output buffers and the application
// callbacks. It lives on exactly one worker loop for its entire lifetime;
// every method below except Send/SendString/Shutdown (which dispatch onto
// that loop) must only be called from it.
type TcpConnection struct {
	name string
	loop *EventLoop
	fd   int

	channel *Channel

	inBuf  buffer.Buffer
	outBuf buffer.Buffer

	localAddr *net.TCPAddr
	peerAddr  *net.TCPAddr

	state     ConnState
	destroyed bool

	highWaterMark int

	connCb  ConnectionCallback
	msgCb   MessageCallback
	wcCb    WriteCompleteCallback
	hwmCb   HighWaterMarkCallback
	closeCb CloseCallback

	log logger.Logger
}

// NewTcpConnection wraps an already-accepted, non-blocking socket. The
// connection starts in StateConnecting; call connectEstablished (posted
// by TcpServer via RunInLoop) to move it to StateConnected.
func NewTcpConnection(loop *EventLoop, name string, fd int, local, peer *net.TCPAddr, log logger.Logger) *TcpConnection {
	if log == nil {
		log = logger.New()
	}

	c := &TcpConnection{
		name:          name,
		loop:          loop,
		fd:            fd,
		inBuf:         buffer.New(),
		outBuf:        buffer.New(),
		localAddr:     local,
		peerAddr:      peer,
		state:         StateConnecting,
		highWaterMark: DefaultHighWaterMark,
		log:           log,
	}

	c.channel = NewChannel(loop, fd)
	c.channel.SetReadCallback(c.handleRead)
	c.channel.SetWriteCallback(c.handleWrite)
	c.channel.SetCloseCallback(c.handleClose)
	c.channel.SetErrorCallback(c.handleError)

	return c
}

func (c *TcpConnection) Name() string            { return c.name }
func (c *TcpConnection) PeerAddr() *net.TCPAddr   { return c.peerAddr }
func (c *TcpConnection) LocalAddr() *net.TCPAddr  { return c.localAddr }
func (c *TcpConnection) State() ConnState         { return c.state }

// Loop returns the worker EventLoop this connection is pinned to.
func (c *TcpConnection) Loop() *EventLoop { return c.loop }

func (c *TcpConnection) SetConnectionCallback(cb ConnectionCallback)       { c.connCb = cb }
func (c *TcpConnection) SetMessageCallback(cb MessageCallback)             { c.msgCb = cb }
func (c *TcpConnection) SetWriteCompleteCallback(cb WriteCompleteCallback) { c.wcCb = cb }
func (c *TcpConnection) SetHighWaterMarkCallback(cb HighWaterMarkCallback) { c.hwmCb = cb }
func (c *TcpConnection) SetCloseCallback(cb CloseCallback)                 { c.closeCb = cb }

// SetHighWaterMark overrides the default 64 MiB threshold.
func (c *TcpConnection) SetHighWaterMark(n int) { c.highWaterMark = n }

// SetTcpNoDelay toggles Nagle's algorithm on the underlying socket.
func (c *TcpConnection) SetTcpNoDelay(enabled bool) error {
	return setTCPNoDelay(c.fd, enabled)
}

// connectEstablished moves Connecting -> Connected: ties the channel's
// lifetime guard to the owning loop's connection table, enables reading,
// and invokes the connection callback. Must run on the owning loop.
func (c *TcpConnection) connectEstablished() {
	c.state = StateConnected
	c.loop.trackConnection(c.fd, c)
	c.channel.Tie(func() bool { return c.loop.hasConnection(c.fd) })
	c.channel.EnableReading()

	if c.connCb != nil {
		c.connCb(c)
	}
}

// connectDestroyed is the final step, posted after the server has erased
// its map entry: disables all interest, removes the channel from the
// loop and closes the underlying socket. It is idempotent against being
// posted twice for the same connection (e.g. TcpServer.Stop() racing the
// normal handleClose -> closeCallback -> removeConnection bounce) — the
// second call is a no-op. The connection callback's teardown observation
// fires here only if handleClose did not already fire it: a connection
// closed via the normal bounce has already had its one teardown
// observation; connectDestroyed only supplies it when this is the first
// time the connection is observed as no longer Connected (e.g. torn down
// directly by TcpServer.Stop(), without handleClose).
func (c *TcpConnection) connectDestroyed() {
	if c.destroyed {
		return
	}
	c.destroyed = true

	alreadyDisconnected := c.state == StateDisconnected
	c.state = StateDisconnected

	c.channel.DisableAll()
	if !alreadyDisconnected && c.connCb != nil {
		c.connCb(c)
	}
	c.channel.Remove()
	c.loop.untrackConnection(c.fd)

	if err := closeFd(c.fd); err != nil && !isBrokenPipe(err) {
		c.log.Error("connection: failed to close socket", err)
	}
}

func (c *TcpConnection) handleRead(receiveTime time.Time) {
	n, err := c.inBuf.ReadFd(c.fd)

	switch {
	case err == nil && n > 0:
		if c.msgCb != nil {
			c.msgCb(c, c.inBuf, receiveTime)
		}
	case err == nil && n == 0:
		c.handleClose()
	case isWouldBlock(err):
		// no data right now; the readiness source will notify again
	default:
		c.handleError(err)
		c.handleClose()
	}
}

func (c *TcpConnection) handleWrite(time.Time) {
	if !c.channel.IsWriting() {
		return
	}

	n, err := c.outBuf.WriteFd(c.fd)
	if err != nil {
		if !isWouldBlock(err) {
			c.log.Error("connection: write failed", err)
		}
		return
	}

	c.outBuf.Retrieve(n)

	if c.outBuf.ReadableBytes() == 0 {
		c.channel.DisableWriting()
		if c.wcCb != nil {
			wc := c.wcCb
			c.loop.QueueInLoop(func() { wc(c) })
		}
		if c.state == StateDisconnecting {
			c.shutdownInLoop()
		}
	}
}

// handleClose is idempotent: once Disconnected, further calls are a
// no-op, since peer close and a locally observed error can both race to
// drive teardown for the same connection.
func (c *TcpConnection) handleClose() {
	if c.state == StateDisconnected {
		return
	}

	c.state = StateDisconnected
	c.channel.DisableAll()

	self := c
	if self.connCb != nil {
		self.connCb(self)
	}
	if self.closeCb != nil {
		self.closeCb(self)
	}
}

func (c *TcpConnection) handleError(err error) {
	if err == nil {
		return
	}
	c.log.Error("connection: readiness source reported an error", err)
}

// Send copies data and transmits it, respecting connection confinement:
// on the owning loop it writes inline via sendInLoop, otherwise the copy
// is posted via RunInLoop.
func (c *TcpConnection) Send(data []byte) {
	if c.state != StateConnected {
		return
	}

	if c.loop.IsInLoopThread() {
		c.sendInLoop(data)
		return
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	c.loop.RunInLoop(func() { c.sendInLoop(cp) })
}

// SendString is Send for a string payload; the string is converted to a
// byte slice (a copy) before being handed to Send.
func (c *TcpConnection) SendString(s string) {
	c.Send([]byte(s))
}

// sendInLoop reproduces the direct-write fast path: if nothing is
// already queued, attempt a non-blocking write first and only buffer the
// remainder, notifying the high-water-mark callback exactly once per
// crossing.
func (c *TcpConnection) sendInLoop(data []byte) {
	if c.state == StateDisconnected {
		return
	}

	var (
		nwrote  int
		faulted bool
	)

	if !c.channel.IsWriting() && c.outBuf.ReadableBytes() == 0 {
		n, err := rawWrite(c.fd, data)
		if err != nil {
			if isWouldBlock(err) {
				n = 0
			} else if isBrokenPipe(err) {
				faulted = true
			} else {
				c.log.Error("connection: send failed", err)
			}
		}
		if n > 0 {
			nwrote = n
		}
	}

	if faulted {
		return
	}

	if nwrote == len(data) {
		if c.wcCb != nil {
			wc := c.wcCb
			c.loop.QueueInLoop(func() { wc(c) })
		}
		return
	}

	remaining := len(data) - nwrote

	before := c.outBuf.ReadableBytes()
	after := before + remaining
	if before < c.highWaterMark && after >= c.highWaterMark && c.hwmCb != nil {
		hwm := c.hwmCb
		c.loop.QueueInLoop(func() { hwm(c, after) })
	}

	c.outBuf.Append(data[nwrote:])
	if !c.channel.IsWriting() {
		c.channel.EnableWriting()
	}
}

// Shutdown moves Connected -> Disconnecting and posts the half-close.
// Calling it more than once, or on a connection that is not Connected,
// is a no-op.
func (c *TcpConnection) Shutdown() {
	run := func() {
		if c.state == StateConnected {
			c.shutdownInLoop()
		}
	}
	if c.loop.IsInLoopThread() {
		run()
		return
	}
	c.loop.RunInLoop(run)
}

func (c *TcpConnection) shutdownInLoop() {
	if c.state == StateConnected {
		c.state = StateDisconnecting
	}
	if c.state != StateDisconnecting {
		return
	}

	if !c.channel.IsWriting() {
		if err := shutdownWrite(c.fd); err != nil && !isBrokenPipe(err) {
			c.log.Error("connection: half-close failed", err)
		}
	}
}
