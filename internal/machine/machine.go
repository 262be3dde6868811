/*
 * z80mbc2 - Machine wiring and bus contract
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

// Package machine wires Memory, the IOProtocol, the disk back-end, and a
// console adapter into the bus a Z80 decoder drives, and runs the
// single-threaded cooperative loop that steps the CPU and paces the
// millisecond ticker. The CPU decoder itself is an external collaborator:
// this package only defines the boundary it is driven through.
package machine

import (
	"github.com/rcornwell/z80mbc2/internal/console"
	"github.com/rcornwell/z80mbc2/internal/diskio"
	"github.com/rcornwell/z80mbc2/internal/imageset"
	"github.com/rcornwell/z80mbc2/internal/memory"
	"github.com/rcornwell/z80mbc2/internal/protocol"
)

// Bus is the port interface a Z80 decoder drives the machine through.
// Only bit 0 of addr is significant to PortIn/PortOut.
type Bus interface {
	Peek(addr uint16) uint8
	Poke(addr uint16, value uint8)
	PortIn(addr uint16) uint8
	PortOut(addr uint16, value uint8)
	InterruptPending() bool
}

// CPU is the external collaborator this package drives the run loop
// through; a real Z80 instruction decoder satisfies it.
type CPU interface {
	// Step executes one instruction against bus, returning the number of
	// clock cycles it took and whether the CPU has halted.
	Step(bus Bus) (cycles int, halted bool)
	SetPC(addr uint16)
}

// Machine is the concrete Bus: Memory + IOProtocol + DiskBackEnd +
// ConsoleAdapter, wired for one boot image.
type Machine struct {
	mem   *memory.Memory
	proto *protocol.Protocol
}

// New constructs a Machine for desc, loading its image from dir/desc.File
// and applying its interrupt-enable defaults. diskDir names the directory
// holding the DSxNxx.DSK files.
func New(dir, diskDir string, desc imageset.Descriptor, con console.Console) (*Machine, error) {
	mem := memory.New()
	if err := imageset.Load(mem, dir, desc); err != nil {
		return nil, err
	}

	disk := diskio.New(diskDir)
	proto := protocol.New(mem, disk, con, desc.DiskSet)
	proto.SetInterrupts(desc.IntRXEnabled, desc.IntSystickEnabled)

	return &Machine{mem: mem, proto: proto}, nil
}

// Peek reads a byte through the banked memory decode.
func (m *Machine) Peek(addr uint16) uint8 {
	return m.mem.Peek(addr)
}

// Poke writes a byte through the banked memory decode.
func (m *Machine) Poke(addr uint16, value uint8) {
	m.mem.Poke(addr, value)
}

// PortIn services an IN instruction against the IOProtocol.
func (m *Machine) PortIn(addr uint16) uint8 {
	return m.proto.PortIn(addr)
}

// PortOut services an OUT instruction against the IOProtocol.
func (m *Machine) PortOut(addr uint16, value uint8) {
	m.proto.PortOut(addr, value)
}

// InterruptPending reports whether the CPU's maskable-interrupt line
// should currently be asserted.
func (m *Machine) InterruptPending() bool {
	return m.proto.InterruptLineRaised()
}

// TickMillis advances the IOProtocol's millisecond clock by one tick.
func (m *Machine) TickMillis() {
	m.proto.TickMillis()
}

// Quit reports whether the guest has asked to stop (Ctrl-C, or an
// unimplemented opcode).
func (m *Machine) Quit() bool {
	return m.proto.Quit()
}
