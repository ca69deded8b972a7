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
	liberr "github.com/nabbar/reactor/errors"
)

// Error codes registered under the reactor package's own ranges
// (errors.MinPkgChannel, errors.MinPkgLoop, errors.MinPkgAcceptor,
// errors.MinPkgServer) per the teacher's per-package range convention.
const (
	codeChannelFault liberr.CodeError = liberr.CodeError(liberr.MinPkgChannel) + iota
)

const (
	codeLoopNoMainLoop liberr.CodeError = liberr.CodeError(liberr.MinPkgLoop) + iota
	codeLoopPollerInit
)

const (
	codeAcceptorListenFailed liberr.CodeError = liberr.CodeError(liberr.MinPkgAcceptor) + iota
	codeAcceptorBindFailed
)

const (
	codeServerResolveFailed liberr.CodeError = liberr.CodeError(liberr.MinPkgServer) + iota
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgChannel, func(code liberr.CodeError) string {
		switch code {
		case codeChannelFault:
			return "channel: readiness source reported an error on fd %d"
		default:
			return liberr.NullMessage
		}
	})

	liberr.RegisterIdFctMessage(liberr.MinPkgLoop, func(code liberr.CodeError) string {
		switch code {
		case codeLoopNoMainLoop:
			return "event loop: a main loop is required"
		case codeLoopPollerInit:
			return "event loop: failed to initialize the readiness source"
		default:
			return liberr.NullMessage
		}
	})

	liberr.RegisterIdFctMessage(liberr.MinPkgAcceptor, func(code liberr.CodeError) string {
		switch code {
		case codeAcceptorListenFailed:
			return "acceptor: listen failed"
		case codeAcceptorBindFailed:
			return "acceptor: bind failed"
		default:
			return liberr.NullMessage
		}
	})

	liberr.RegisterIdFctMessage(liberr.MinPkgServer, func(code liberr.CodeError) string {
		switch code {
		case codeServerResolveFailed:
			return "tcp server: could not resolve listen address"
		default:
			return liberr.NullMessage
		}
	})
}

func errChannelFault(fd int) error {
	return codeChannelFault.Errorf(fd)
}
