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

import "github.com/nabbar/reactor/logger"

// WithReusePort enables SO_REUSEPORT on the listening socket, in
// addition to the always-on SO_REUSEADDR.
func WithReusePort() Option {
	return func(s *TcpServer) { s.reusePort = true }
}

// WithThreadNum sets the worker pool size at construction time,
// equivalent to calling SetThreadNum before Start.
func WithThreadNum(n int) Option {
	return func(s *TcpServer) { s.pool.SetThreadNum(n) }
}

// WithHighWaterMark overrides the default 64 MiB high-water mark applied
// to every connection this server accepts.
func WithHighWaterMark(n int) Option {
	return func(s *TcpServer) { s.highWaterMark = n }
}

// WithLogger overrides the default logger used by the server, its
// acceptor and every connection it accepts.
func WithLogger(l logger.Logger) Option {
	return func(s *TcpServer) {
		if l != nil {
			s.log = l
		}
	}
}
