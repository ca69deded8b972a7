//go:build !linux

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
	"errors"
	"net"
)

// Only the Linux epoll/accept4 backend is implemented, matching the
// poller package (SPEC_FULL.md §4.2): these stubs let the package
// compile on other platforms while surfacing a clear error at runtime.

var errUnsupportedPlatform = errors.New("reactor: unsupported platform, only linux is implemented")

func createListenSocket(addr *net.TCPAddr, reusePort bool) (int, error) {
	return -1, errUnsupportedPlatform
}

func acceptConn(listenFd int) (int, *net.TCPAddr, error) {
	return -1, nil, errUnsupportedPlatform
}

func getLocalAddr(fd int) (*net.TCPAddr, error) {
	return nil, errUnsupportedPlatform
}

func setTCPNoDelay(fd int, enabled bool) error {
	return errUnsupportedPlatform
}

func rawWrite(fd int, data []byte) (int, error) {
	return 0, errUnsupportedPlatform
}

func shutdownWrite(fd int) error {
	return errUnsupportedPlatform
}

func closeFd(fd int) error {
	return errUnsupportedPlatform
}

func isWouldBlock(err error) bool {
	return false
}

func isBrokenPipe(err error) bool {
	return false
}

func isTooManyOpenFiles(err error) bool {
	return false
}
