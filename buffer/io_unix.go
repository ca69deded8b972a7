//go:build unix

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

package buffer

import (
	"golang.org/x/sys/unix"
)

// ReadFd performs one scatter read into the writable region and a
// 64 KiB scratch buffer, so a single syscall can absorb a read of
// unknown size without pre-growing the buffer for a worst case.
func (b *buf) ReadFd(fd int) (int, error) {
	var scratch [scratchSize]byte

	writable := b.buf[b.wIdx:]
	iovs := [][]byte{writable, scratch[:]}

	n, err := unix.Readv(fd, iovs)
	if n <= 0 {
		return n, err
	}

	if n <= len(writable) {
		b.wIdx += n
		return n, err
	}

	b.wIdx = len(b.buf)
	overflow := n - len(writable)
	b.Append(scratch[:overflow])

	return n, err
}

// WriteFd performs a single write of the entire readable region. The
// caller is responsible for calling Retrieve with the returned count.
func (b *buf) WriteFd(fd int) (int, error) {
	return unix.Write(fd, b.Peek())
}
