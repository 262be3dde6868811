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

// Fake is a buffer-backed Console for unit tests: Pending feeds bytes as
// if typed at the guest terminal, Written collects everything the guest
// wrote out.
type Fake struct {
	Pending []byte
	Written []byte
}

// Status reports whether a byte remains in Pending.
func (f *Fake) Status() bool {
	return len(f.Pending) > 0
}

// Read pops the next byte from Pending.
func (f *Fake) Read() byte {
	if len(f.Pending) == 0 {
		return 0xFF
	}
	b := f.Pending[0]
	f.Pending = f.Pending[1:]
	return b
}

// Put appends b to Written.
func (f *Fake) Put(b byte) {
	f.Written = append(f.Written, b)
}
