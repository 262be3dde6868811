/*
 * z80mbc2 - RunLoop
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

import (
	"log/slog"
	"time"
)

// stepsPerClockCheck is how many CPU steps run between wall-clock samples;
// checking every step would make the tick pacing dominate run time.
const stepsPerClockCheck = 1000

// RunLoop sequences CPU steps, tick pacing, and interrupt signalling on a
// single thread: the CPU, the IOProtocol, and the disk back-end share one
// goroutine, so there is no race to guard between a step and a tick.
type RunLoop struct {
	machine *Machine
	cpu     CPU
	now     func() time.Time // Overridable for tests.
}

// NewRunLoop builds a RunLoop driving cpu against machine, with the CPU's
// program counter already set to the image's load address.
func NewRunLoop(m *Machine, cpu CPU, loadAddress uint16) *RunLoop {
	cpu.SetPC(loadAddress)
	return &RunLoop{machine: m, cpu: cpu, now: time.Now}
}

// Run steps the CPU until the guest sets quit or the CPU halts. Every
// stepsPerClockCheck steps it samples the wall clock; each full elapsed
// millisecond advances the reference timestamp by exactly 1ms (never
// snapping to now, so accumulated fractional time is never lost) and
// calls TickMillis once. The CPU's maskable-interrupt line is the bus's
// InterruptPending, sampled by Step itself on every instruction — by the
// time Step runs, any interrupt TickMillis raised is already visible.
func (r *RunLoop) Run() {
	reference := r.now()
	steps := 0

	for !r.machine.Quit() {
		_, halted := r.cpu.Step(r.machine)
		if halted {
			slog.Info("CPU halted")
			return
		}

		steps++
		if steps >= stepsPerClockCheck {
			steps = 0
			for r.now().Sub(reference) >= time.Millisecond {
				reference = reference.Add(time.Millisecond)
				r.machine.TickMillis()
			}
		}
	}
	slog.Info("run loop stopped", "quit", true)
}
