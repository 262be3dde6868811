/*
 * z80mbc2 - Banked RAM
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

// Package memory models the Z80-MBC2's 128 KiB of RAM behind a 64 KiB
// address space: the upper 32 KiB window is fixed, the lower 32 KiB window
// is switched between three physical banks by the SETBANK opcode.
package memory

const (
	// Size is the total amount of physical RAM behind the address space.
	Size = 128 * 1024

	windowSize uint32 = 0x8000 // Size of the banked lower-half window.
	maxBank    uint8  = 2      // Highest legal bank number.
)

// bankOffset gives the physical base address of each bank's lower window.
var bankOffset = [3]uint32{0, 0x10000, 0x18000}

// Memory is the banked RAM behind the Z80's 16-bit address bus.
type Memory struct {
	ram  [Size]uint8
	bank uint8
}

// New returns a zeroed Memory with bank 0 selected.
func New() *Memory {
	return &Memory{}
}

// decode maps a 16-bit CPU address to a physical offset into ram.
//
// Bit 15 set selects the shared upper window (0x8000-0xFFFF), mapped
// identity. Bit 15 clear selects the banked lower window, mapped to
// (addr & 0x7FFF) + bankOffset[bank].
func (m *Memory) decode(addr uint16) uint32 {
	if addr&0x8000 != 0 {
		return uint32(addr)
	}
	return (uint32(addr) & (windowSize - 1)) + bankOffset[m.bank]
}

// Peek returns the byte at addr under the current bank.
func (m *Memory) Peek(addr uint16) uint8 {
	return m.ram[m.decode(addr)]
}

// Poke stores value at addr under the current bank.
func (m *Memory) Poke(addr uint16, value uint8) {
	m.ram[m.decode(addr)] = value
}

// SetBank selects banks 0-2. Values above 2 are silently ignored, leaving
// the previously selected bank in place (mirrors the firmware's SETBANK).
func (m *Memory) SetBank(bank uint8) {
	if bank <= maxBank {
		m.bank = bank
	}
}

// Bank returns the currently selected bank.
func (m *Memory) Bank() uint8 {
	return m.bank
}
