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

//go:build linux

package reactor_test

import (
	"bytes"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/reactor"
	"github.com/nabbar/reactor/buffer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("End-to-end scenarios", func() {
	var mainLoop *reactor.EventLoop

	BeforeEach(func() {
		mainLoop = startMainLoop()
	})

	AfterEach(func() {
		mainLoop.Quit()
	})

	Context("echo server, single worker", func() {
		It("echoes back everything a client sends", func() {
			addr := getTestAddress()
			srv, err := reactor.New(mainLoop, "echo", addr)
			Expect(err).ToNot(HaveOccurred())

			srv.SetMessageCallback(func(conn *reactor.TcpConnection, in buffer.Buffer, _ time.Time) {
				conn.SendString(in.RetrieveAllString())
			})
			srv.Start()

			client := dialAndWait(addr, 2*time.Second)
			defer func() { _ = client.Close() }()

			_, err = client.Write([]byte("hello reactor"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 64)
			_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
			n, err := client.Read(buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("hello reactor"))
		})
	})

	Context("round-robin assignment across a pool of 3", func() {
		It("spreads connections across every worker loop", func() {
			addr := getTestAddress()
			srv, err := reactor.New(mainLoop, "rr", addr, reactor.WithThreadNum(3))
			Expect(err).ToNot(HaveOccurred())

			var (
				mu    sync.Mutex
				loops = map[*reactor.EventLoop]int{}
			)
			srv.SetConnectionCallback(func(conn *reactor.TcpConnection) {
				if conn.State() != reactor.StateConnected {
					return
				}
				mu.Lock()
				loops[conn.Loop()]++
				mu.Unlock()
			})
			srv.Start()

			clients := make([]net.Conn, 6)
			for i := range clients {
				clients[i] = dialAndWait(addr, 2*time.Second)
			}
			defer func() {
				for _, c := range clients {
					_ = c.Close()
				}
			}()

			Eventually(func() int {
				mu.Lock()
				defer mu.Unlock()
				return len(loops)
			}, 2*time.Second, 20*time.Millisecond).Should(Equal(3))
		})
	})

	Context("high-water-mark backpressure", func() {
		It("fires the high-water-mark callback exactly once per crossing", func() {
			addr := getTestAddress()
			srv, err := reactor.New(mainLoop, "hwm", addr, reactor.WithHighWaterMark(1024))
			Expect(err).ToNot(HaveOccurred())

			var crossings atomic.Int32
			var target *reactor.TcpConnection
			var mu sync.Mutex

			srv.SetConnectionCallback(func(conn *reactor.TcpConnection) {
				if conn.State() == reactor.StateConnected {
					mu.Lock()
					target = conn
					mu.Unlock()
				}
			})
			srv.SetHighWaterMarkCallback(func(conn *reactor.TcpConnection, buffered int) {
				crossings.Add(1)
			})
			srv.Start()

			client := dialAndWait(addr, 2*time.Second)
			defer func() { _ = client.Close() }()

			Eventually(func() *reactor.TcpConnection {
				mu.Lock()
				defer mu.Unlock()
				return target
			}, 2*time.Second, 20*time.Millisecond).ShouldNot(BeNil())

			mu.Lock()
			conn := target
			mu.Unlock()

			payload := bytes.Repeat([]byte{'x'}, 4096)
			for i := 0; i < 4; i++ {
				conn.Send(payload)
			}

			Eventually(func() int32 { return crossings.Load() }, 2*time.Second, 20*time.Millisecond).Should(BeNumerically(">=", 1))
			Consistently(func() int32 { return crossings.Load() }, 300*time.Millisecond, 20*time.Millisecond).Should(Equal(int32(1)))
		})
	})

	Context("graceful shutdown drains pending writes before closing", func() {
		It("delivers everything written before Shutdown is called", func() {
			addr := getTestAddress()
			srv, err := reactor.New(mainLoop, "shutdown", addr)
			Expect(err).ToNot(HaveOccurred())

			srv.SetConnectionCallback(func(conn *reactor.TcpConnection) {
				if conn.State() == reactor.StateConnected {
					payload := bytes.Repeat([]byte{'y'}, 256*1024)
					conn.Send(payload)
					conn.Shutdown()
				}
			})
			srv.Start()

			client := dialAndWait(addr, 2*time.Second)
			defer func() { _ = client.Close() }()

			_ = client.SetReadDeadline(time.Now().Add(3 * time.Second))
			total, err := io.Copy(io.Discard, client)
			Expect(err).ToNot(HaveOccurred())
			Expect(total).To(Equal(int64(256 * 1024)))
		})
	})

	Context("cross-thread send", func() {
		It("delivers a send issued from a goroutine other than the owning worker", func() {
			addr := getTestAddress()
			srv, err := reactor.New(mainLoop, "xthread", addr, reactor.WithThreadNum(1))
			Expect(err).ToNot(HaveOccurred())

			connCh := make(chan *reactor.TcpConnection, 1)
			srv.SetConnectionCallback(func(conn *reactor.TcpConnection) {
				if conn.State() == reactor.StateConnected {
					connCh <- conn
				}
			})
			srv.Start()

			client := dialAndWait(addr, 2*time.Second)
			defer func() { _ = client.Close() }()

			var conn *reactor.TcpConnection
			Eventually(connCh, 2*time.Second).Should(Receive(&conn))

			go conn.SendString("from goroutine")

			buf := make([]byte, 64)
			_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
			n, err := client.Read(buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("from goroutine"))
		})
	})

	Context("peer close racing a pending send", func() {
		It("does not invoke the close callback more than once", func() {
			addr := getTestAddress()
			srv, err := reactor.New(mainLoop, "race", addr)
			Expect(err).ToNot(HaveOccurred())

			var closes atomic.Int32
			srv.SetConnectionCallback(func(conn *reactor.TcpConnection) {
				if conn.State() == reactor.StateDisconnected {
					closes.Add(1)
				}
			})
			srv.Start()

			client := dialAndWait(addr, 2*time.Second)
			_, _ = client.Write([]byte("ping"))
			_ = client.Close()

			Eventually(func() int32 { return closes.Load() }, 2*time.Second, 20*time.Millisecond).Should(Equal(int32(1)))
			Consistently(func() int32 { return closes.Load() }, 300*time.Millisecond, 20*time.Millisecond).Should(Equal(int32(1)))
		})
	})
})
