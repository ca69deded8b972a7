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

type buf struct {
	buf  []byte
	rIdx int
	wIdx int
}

func (b *buf) ReadableBytes() int {
	return b.wIdx - b.rIdx
}

func (b *buf) WritableBytes() int {
	return len(b.buf) - b.wIdx
}

func (b *buf) PrependableBytes() int {
	return b.rIdx
}

func (b *buf) Peek() []byte {
	return b.buf[b.rIdx:b.wIdx]
}

func (b *buf) Append(src []byte) {
	n := len(src)
	if b.WritableBytes() < n {
		b.makeSpace(n)
	}
	copy(b.buf[b.wIdx:], src)
	b.wIdx += n
}

func (b *buf) Prepend(src []byte) {
	n := len(src)
	if n > b.PrependableBytes() {
		panic("buffer: Prepend exceeds prependable space")
	}
	b.rIdx -= n
	copy(b.buf[b.rIdx:], src)
}

func (b *buf) Retrieve(n int) {
	if n >= b.ReadableBytes() {
		b.RetrieveAll()
		return
	}
	b.rIdx += n
}

func (b *buf) RetrieveAll() {
	b.rIdx = DefaultPrependSize
	b.wIdx = DefaultPrependSize
}

func (b *buf) RetrieveAllString() string {
	s := string(b.Peek())
	b.RetrieveAll()
	return s
}

// makeSpace grows the buffer so at least n more bytes can be written,
// reusing the prependable+already-consumed-readable space first rather
// than always allocating. Any amortized-O(1) growth policy satisfies
// the append contract; this one doubles capacity on genuine growth.
func (b *buf) makeSpace(n int) {
	if b.WritableBytes()+b.rIdx-DefaultPrependSize >= n {
		readable := b.ReadableBytes()
		copy(b.buf[DefaultPrependSize:], b.buf[b.rIdx:b.wIdx])
		b.rIdx = DefaultPrependSize
		b.wIdx = b.rIdx + readable
		return
	}

	newCap := len(b.buf) * 2
	for newCap < len(b.buf)+n {
		newCap *= 2
	}

	nb := make([]byte, newCap)
	copy(nb[b.rIdx:], b.buf[b.rIdx:b.wIdx])
	b.buf = nb
}
