//go:build linux

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

	"golang.org/x/sys/unix"
)

const listenBacklog = 1024

// createListenSocket creates, binds and listens on a non-blocking,
// close-on-exec TCP socket per spec §4.6: SO_REUSEADDR always on,
// SO_REUSEPORT per option, backlog 1024.
func createListenSocket(addr *net.TCPAddr, reusePort bool) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	if reusePort {
		if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			_ = unix.Close(fd)
			return -1, err
		}
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip4 := addr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}

	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, codeAcceptorBindFailed.Error(err)
	}

	if err = unix.Listen(fd, listenBacklog); err != nil {
		_ = unix.Close(fd)
		return -1, codeAcceptorListenFailed.Error(err)
	}

	return fd, nil
}

// acceptConn performs one non-blocking accept, with non-blocking and
// close-on-exec set atomically on the accepted socket, and applies
// SO_KEEPALIVE per spec §6.
func acceptConn(listenFd int) (int, *net.TCPAddr, error) {
	connFd, sa, err := unix.Accept4(listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, nil, err
	}

	_ = unix.SetsockoptInt(connFd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)

	return connFd, sockaddrToTCPAddr(sa), nil
}

func sockaddrToTCPAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch s := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, s.Addr[:])
		return &net.TCPAddr{IP: ip, Port: s.Port}
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, s.Addr[:])
		return &net.TCPAddr{IP: ip, Port: s.Port}
	default:
		return &net.TCPAddr{}
	}
}

func getLocalAddr(fd int) (*net.TCPAddr, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return nil, err
	}
	return sockaddrToTCPAddr(sa), nil
}

func setTCPNoDelay(fd int, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, v)
}

func rawWrite(fd int, data []byte) (int, error) {
	return unix.Write(fd, data)
}

func shutdownWrite(fd int) error {
	return unix.Shutdown(fd, unix.SHUT_WR)
}

func closeFd(fd int) error {
	return unix.Close(fd)
}

func isWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

func isBrokenPipe(err error) bool {
	return err == unix.EPIPE || err == unix.ECONNRESET
}

func isTooManyOpenFiles(err error) bool {
	return err == unix.EMFILE || err == unix.ENFILE
}
