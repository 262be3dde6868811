/*
 * z80mbc2 - Fake CPU for RunLoop tests
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

package machine

// fakeCPU is a test double standing in for the real Z80 decoder, which is
// out of scope for this repository. Steps is the number of Step calls to
// run before reporting halted; InterruptsSeen counts how many of those
// steps observed bus.InterruptPending() asserted.
type fakeCPU struct {
	PC             uint16
	Steps          int
	ran            int
	InterruptsSeen int
	OnStep         func(bus Bus)
}

func (f *fakeCPU) SetPC(addr uint16) {
	f.PC = addr
}

func (f *fakeCPU) Step(bus Bus) (cycles int, halted bool) {
	if bus.InterruptPending() {
		f.InterruptsSeen++
	}
	if f.OnStep != nil {
		f.OnStep(bus)
	}
	f.ran++
	return 4, f.ran >= f.Steps
}
