/*
 * z80mbc2 - Guest console adapter
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package console

import (
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Host reads raw stdin in a background goroutine and writes raw stdout.
// The Z80-MBC2 firmware, not this adapter, owns character semantics (DEL
// remap, Ctrl-C) — Host only ever hands back the byte the TTY gave it.
type Host struct {
	fd           int
	oldTermState *term.State
	nonblockSet  bool

	mu   sync.Mutex
	buf  []byte
	stop chan struct{}
	done chan struct{}
}

// NewHost puts stdin into raw, non-blocking mode and starts the reader
// goroutine. Call Close to restore the terminal.
func NewHost() (*Host, error) {
	h := &Host{
		fd:   int(os.Stdin.Fd()),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		return nil, err
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		return nil, err
	}
	h.nonblockSet = true

	go h.run()
	return h, nil
}

func (h *Host) run() {
	defer close(h.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-h.stop:
			return
		default:
		}

		n, err := syscall.Read(h.fd, buf)
		if n > 0 {
			h.mu.Lock()
			h.buf = append(h.buf, buf[0])
			h.mu.Unlock()
		}
		switch {
		case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK:
			time.Sleep(2 * time.Millisecond)
		case err != nil:
			return
		case n == 0:
			time.Sleep(2 * time.Millisecond)
		}
	}
}

// Status reports whether a character is available without blocking.
func (h *Host) Status() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buf) > 0
}

// Read pops the next available character. Callers must only call this
// after Status returned true.
func (h *Host) Read() byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) == 0 {
		return 0xFF
	}
	b := h.buf[0]
	h.buf = h.buf[1:]
	return b
}

// Put writes a character to the host terminal. Write failures are logged
// and otherwise ignored, per the host-I/O error policy.
func (h *Host) Put(b byte) {
	if _, err := os.Stdout.Write([]byte{b}); err != nil {
		slog.Warn("console write failed", "error", err)
	}
}

// Close stops the reader goroutine and restores the terminal.
func (h *Host) Close() error {
	close(h.stop)
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		err := term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		return err
	}
	return nil
}
