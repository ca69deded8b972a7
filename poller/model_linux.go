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

package poller

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

const maxWaitEvents = 256

type epoller struct {
	epfd   int
	wakeFd int
}

// New returns the Linux epoll-backed Poller. The wakeup descriptor is
// an eventfd, registered for Readable interest so it is returned by
// Poll like any other descriptor — matching the corpus's preference
// for treating the wakeup primitive as an ordinary pollable fd.
func New() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}

	p := &epoller{epfd: epfd, wakeFd: wakeFd}

	if err = p.Add(wakeFd, Readable); err != nil {
		_ = unix.Close(wakeFd)
		_ = unix.Close(epfd)
		return nil, err
	}

	return p, nil
}

func toEpollEvents(i Interest) uint32 {
	var ev uint32
	if i&Readable != 0 {
		ev |= unix.EPOLLIN
	}
	if i&Writable != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (p *epoller) Add(fd int, interest Interest) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
}

func (p *epoller) Modify(fd int, interest Interest) error {
	ev := &unix.EpollEvent{Events: toEpollEvents(interest), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
}

func (p *epoller) Remove(fd int) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (p *epoller) Close() error {
	err := unix.Close(p.wakeFd)
	if cerr := unix.Close(p.epfd); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (p *epoller) WakeFD() int {
	return p.wakeFd
}

func (p *epoller) Wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(p.wakeFd, buf[:])
	if err == unix.EAGAIN {
		// A pending wakeup is already armed (counter is non-zero); the
		// next Poll will still observe it readable.
		return nil
	}
	return err
}

func (p *epoller) Poll(timeout time.Duration) ([]PolledEvent, error) {
	msec := -1
	if timeout > 0 {
		msec = int(timeout / time.Millisecond)
		if msec == 0 {
			msec = 1
		}
	}

	var raw [maxWaitEvents]unix.EpollEvent

	n, err := unix.EpollWait(p.epfd, raw[:], msec)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	out := make([]PolledEvent, 0, n)
	for i := 0; i < n; i++ {
		e := raw[i]
		out = append(out, PolledEvent{
			Fd: int(e.Fd),
			Event: Event{
				Readable: e.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
				Writable: e.Events&unix.EPOLLOUT != 0,
				Hangup:   e.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
				Error:    e.Events&unix.EPOLLERR != 0,
			},
		})

		if e.Fd == int32(p.wakeFd) {
			p.drainWake()
		}
	}

	return out, nil
}

func (p *epoller) drainWake() {
	var buf [8]byte
	for {
		_, err := unix.Read(p.wakeFd, buf[:])
		if err != nil {
			return
		}
	}
}
