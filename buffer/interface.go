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

// Package buffer implements a growable byte buffer with a prependable
// prefix, a readable region and a writable suffix, tuned for the
// read-some/retrieve-some pattern of a non-blocking socket connection.
package buffer

// DefaultPrependSize is the size reserved at the front of a freshly
// allocated buffer, available to future Prepend calls without a copy.
const DefaultPrependSize = 8

// DefaultInitialSize is the size of the writable region a freshly
// allocated buffer starts with.
const DefaultInitialSize = 1024

// scratchSize is the size of the stack-local scratch buffer used by
// ReadFd's scatter read.
const scratchSize = 65536

// Buffer is a growable byte buffer with separate reader and writer
// cursors. It is not safe for concurrent use: callers must confine a
// given Buffer to the single loop goroutine that owns its connection.
type Buffer interface {
	// ReadableBytes returns the number of bytes currently available to Peek/Retrieve.
	ReadableBytes() int

	// WritableBytes returns the number of bytes of free space after the writer cursor.
	WritableBytes() int

	// PrependableBytes returns the number of bytes of free space before the reader cursor.
	PrependableBytes() int

	// Peek returns a slice over the readable region, without consuming it.
	Peek() []byte

	// Append appends src to the writable region, growing the buffer if needed.
	Append(src []byte)

	// Prepend writes src immediately before the current reader cursor.
	// It panics if src is larger than PrependableBytes(); callers own
	// their own accounting of how much prepend space they reserved.
	Prepend(src []byte)

	// Retrieve advances the reader cursor by n bytes. If the reader
	// cursor catches up to the writer cursor, both are reset to the
	// prependable boundary to reclaim space.
	Retrieve(n int)

	// RetrieveAll discards every readable byte and resets the buffer to
	// an empty state at the prependable boundary.
	RetrieveAll()

	// RetrieveAllString is RetrieveAll, returning the discarded bytes as a string.
	RetrieveAllString() string

	// ReadFd performs a scatter read from fd into the writable region
	// and a scratch buffer, appending any overflow, and returns the
	// number of bytes read. err is the raw OS error, if any; on
	// EAGAIN/EWOULDBLOCK it is returned unmodified for the caller to
	// interpret as "no data right now".
	ReadFd(fd int) (n int, err error)

	// WriteFd performs a single write of the entire readable region to
	// fd and returns the number of bytes actually written. It does not
	// retrieve those bytes; the caller must do so.
	WriteFd(fd int) (n int, err error)
}

// New returns an empty Buffer with the default prependable and initial sizes.
func New() Buffer {
	return NewSize(DefaultInitialSize)
}

// NewSize returns an empty Buffer whose writable region starts at size bytes.
func NewSize(size int) Buffer {
	b := &buf{
		buf:  make([]byte, DefaultPrependSize+size),
		rIdx: DefaultPrependSize,
		wIdx: DefaultPrependSize,
	}
	return b
}
