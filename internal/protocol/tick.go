/*
 * z80mbc2 - Millisecond tick driver
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

package protocol

// TickMillis advances the logical millisecond clock by one tick. It is
// called by the run loop roughly once per emulated millisecond of
// wall-clock time (see the machine package), never from its own goroutine
// — the whole machine is single-threaded and cooperative, so there is no
// race to guard against between a tick and the CPU step it interleaves
// with.
//
// If RX interrupts are enabled, a character is pending, and the previous
// RX interrupt has been acknowledged (rxDone), this raises the RX bit of
// int_status and the CPU-visible interrupt line.
//
// SYSTICK interrupts are enabled/disabled through the same SETIRQ opcode
// as RX, and the enable bit is preserved here, but no guest image in the
// current SD image set enables it and the raise path is intentionally
// left as a TODO (see spec's open question on SYSTICK IRQ semantics).
func (p *Protocol) TickMillis() {
	if p.intRXEnabled && p.con.Status() && p.rxDone {
		p.intStatus |= rxIRQMask
		p.intLineRaised = true
		p.rxDone = false
	}
	// TODO: raise sysTickIRQMask here once a guest image actually enables
	// SYSTICK and the firmware's intended cadence is known.
}
