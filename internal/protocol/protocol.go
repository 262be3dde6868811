/*
 * z80mbc2 - I/O coprocessor state machine
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

// Package protocol implements the Z80-MBC2 I/O coprocessor: the state
// machine a guest program drives through two port addresses (command and
// data, distinguished only by bit 0) to reach the disk, the serial
// console, the GPIO mirrors, the real-time clock snapshot, and the
// interrupt-enable/status registers. It also owns the millisecond ticker
// that raises the RX interrupt line.
//
// The wire contract is defined entirely in terms of two fields — the
// latched opcode and a byte counter — because that is what a guest
// re-writing the command port mid-transaction actually observes (see
// PortOut below). Internally, the pair is best read as a variant over
// {idle, trackHighPending, writingSector(n), readingSector(n),
// readingDateTime(n)}, but nothing outside this package ever needs that
// tag directly.
package protocol

import (
	"log/slog"
	"time"

	"github.com/rcornwell/z80mbc2/internal/console"
	"github.com/rcornwell/z80mbc2/internal/diskio"
	"github.com/rcornwell/z80mbc2/internal/memory"
)

// Protocol is the I/O coprocessor: latched opcode state, GPIO mirrors,
// interrupt registers, and the disk/console/memory it fronts.
type Protocol struct {
	mem  *memory.Memory
	disk *diskio.Disk
	con  console.Console

	opcode      uint8
	ioByteCount uint32
	trackSelLo  uint8

	gpioA, gpioB   uint8
	iodirA, iodirB uint8
	gppuA, gppuB   uint8
	userLED        bool
	lastRXIsEmpty  bool

	diskSet uint8 // 0xFF disables disk access entirely.

	intRXEnabled      bool
	intSystickEnabled bool
	intStatus         uint8
	intLineRaised     bool
	rxDone            bool

	lastTime snapshot

	cpmWarmBootEnabled bool
	sppEnabled         bool
	sppFD              bool

	sysTickTime uint8

	quit bool

	now func() time.Time // Overridable for DATETIME tests.
}

// snapshot is the wall-clock sample DATETIME hands back one byte at a time.
type snapshot struct {
	second, minute, hour   uint8
	day, month, yearMod100 uint8
}

// New builds a Protocol fronting mem/disk/con for the given disk set
// (0xFF disables disk access entirely, per the image descriptor).
func New(mem *memory.Memory, disk *diskio.Disk, con console.Console, diskSet uint8) *Protocol {
	return &Protocol{
		mem:     mem,
		disk:    disk,
		con:     con,
		opcode:  opNOP,
		diskSet: diskSet,
		rxDone:  true,
		now:     time.Now,
	}
}

// SetInterrupts applies the image descriptor's initial interrupt-enable
// state (ImageLoader's responsibility per spec.md §4.5).
func (p *Protocol) SetInterrupts(rxEnabled, systickEnabled bool) {
	p.intRXEnabled = rxEnabled
	p.intSystickEnabled = systickEnabled
}

// Bank returns the currently selected memory bank (mirrors Memory.Bank so
// callers of the protocol never need to reach around it into Memory).
func (p *Protocol) Bank() uint8 {
	return p.mem.Bank()
}

// Quit reports whether a Ctrl-C or an unimplemented opcode has asked the
// run loop to stop.
func (p *Protocol) Quit() bool {
	return p.quit
}

// InterruptLineRaised reports whether the CPU's maskable-interrupt line
// should currently be asserted.
func (p *Protocol) InterruptLineRaised() bool {
	return p.intLineRaised
}

// isDataPort reports whether bit 0 of addr selects the data port (odd) as
// opposed to the command port (even). Higher bits of addr are ignored.
func isDataPort(addr uint16) bool {
	return addr&1 != 0
}

// PortOut services an OUT instruction to either port.
func (p *Protocol) PortOut(addr uint16, value uint8) {
	if !isDataPort(addr) {
		p.opcode = value
		p.ioByteCount = 0
		return
	}
	p.dispatchWrite(value)
}

// PortIn services an IN instruction to either port.
func (p *Protocol) PortIn(addr uint16) uint8 {
	if isDataPort(addr) {
		return p.serialRX()
	}
	return p.dispatchRead()
}

// serialRX is the fast-path RX read: it bypasses the latched opcode
// entirely so the guest can poll it without any STORE OPCODE overhead.
func (p *Protocol) serialRX() uint8 {
	p.intStatus &^= rxIRQMask
	p.intLineRaised = p.intStatus != 0
	p.rxDone = true

	if !p.con.Status() {
		p.lastRXIsEmpty = true
		return 0xFF
	}

	ch := p.con.Read()
	if ch == 3 {
		p.quit = true
	}
	if ch == 127 {
		ch = 8
	}
	p.lastRXIsEmpty = false
	return ch
}

// dispatchWrite handles an OUT to the data port under the latched opcode.
func (p *Protocol) dispatchWrite(value uint8) {
	switch p.opcode {
	case opUserLED:
		p.userLED = value&1 != 0
	case opSerialTX:
		p.con.Put(value)
	case opGpioAWr:
		p.gpioA = value
	case opGpioBWr:
		p.gpioB = value
	case opIodirAWr:
		p.iodirA = value
	case opIodirBWr:
		p.iodirB = value
	case opGppuAWr:
		p.gppuA = value
	case opGppuBWr:
		p.gppuB = value
	case opSelDisk:
		if p.diskSet != 0xFF {
			p.disk.SelectDisk(p.diskSet, value)
		}
	case opSelTrack:
		p.writeSelTrack(value)
		return // SELTRACK manages opcode reset itself.
	case opSelSector:
		p.disk.SelectSector(value)
	case opWriteSect:
		p.writeSector(value)
		return // WRITESECT manages opcode reset itself.
	case opSetBank:
		p.mem.SetBank(value)
	case opSetIRQ:
		p.intRXEnabled = value&1 != 0
		p.intSystickEnabled = value&2 != 0
	case opSetTick:
		if value > 0 {
			p.sysTickTime = value
		}
	case opSetOpt:
		p.cpmWarmBootEnabled = value&1 != 0
	case opSetSPP:
		p.sppEnabled = true
		p.sppFD = value&1 != 0
	default:
		p.unimplemented("out", p.opcode)
	}
	p.opcode = opNOP
}

// writeSelTrack handles the 2-byte SELTRACK payload: low byte first, then
// high byte, at which point the track is latched and the opcode resets.
func (p *Protocol) writeSelTrack(value uint8) {
	if p.ioByteCount == 0 {
		p.trackSelLo = value
		p.ioByteCount = 1
		return
	}
	track := uint16(value)<<8 | uint16(p.trackSelLo)
	p.disk.SelectTrack(track)
	p.opcode = opNOP
}

// writeSector handles one byte of a 512-byte WRITESECT transfer.
func (p *Protocol) writeSector(value uint8) {
	if p.ioByteCount == 0 {
		p.disk.Seek()
	}
	p.disk.WriteByte(value)
	p.ioByteCount++
	if p.ioByteCount >= sectorSize {
		p.opcode = opNOP
	}
}

// dispatchRead handles an IN from the command port under the latched
// opcode (defaults to NOP if none was stored).
func (p *Protocol) dispatchRead() uint8 {
	switch p.opcode {
	case opUserKey:
		p.opcode = opNOP
		return 0
	case opGpioARd:
		p.opcode = opNOP
		return p.gpioA
	case opGpioBRd:
		p.opcode = opNOP
		return p.gpioB
	case opSysFlags:
		p.opcode = opNOP
		return p.sysFlags()
	case opDateTime:
		return p.readDateTime()
	case opErrDisk:
		p.opcode = opNOP
		return p.disk.LastError()
	case opReadSect:
		return p.readSector()
	case opSDMount:
		p.opcode = opNOP
		return 0
	case opATxBuff:
		p.opcode = opNOP
		return 255
	case opSysIRQ:
		p.opcode = opNOP
		status := p.intStatus
		p.intStatus = 0
		p.intLineRaised = false
		return status
	case opGetSPP:
		p.opcode = opNOP
		if p.sppEnabled {
			return getSPPEnabled
		}
		return 0
	default:
		p.unimplemented("in", p.opcode)
		return 0
	}
}

// sysFlags reports console and interrupt state to guest software.
func (p *Protocol) sysFlags() uint8 {
	var flags uint8
	flags |= sysFlagRTCPresent
	if p.con.Status() {
		flags |= sysFlagRXReady
	}
	if p.lastRXIsEmpty {
		flags |= sysFlagRXEmpty
	}
	if p.cpmWarmBootEnabled {
		flags |= sysFlagWarmBoot
	}
	return flags
}

// readDateTime handles one byte of the 7-byte DATETIME transfer, snapshot
// taken once at the start of the transaction.
func (p *Protocol) readDateTime() uint8 {
	if p.ioByteCount == 0 {
		p.lastTime = sampleClock(p.now())
	}

	var value uint8
	switch p.ioByteCount {
	case 0:
		value = p.lastTime.second
	case 1:
		value = p.lastTime.minute
	case 2:
		value = p.lastTime.hour
	case 3:
		value = p.lastTime.day
	case 4:
		value = p.lastTime.month
	case 5:
		value = p.lastTime.yearMod100
	case 6:
		value = dateTimeTemperature
	}

	p.ioByteCount++
	if p.ioByteCount >= dateTimeLength {
		p.opcode = opNOP
	}
	return value
}

// readSector handles one byte of a 512-byte READSECT transfer.
func (p *Protocol) readSector() uint8 {
	if p.ioByteCount == 0 {
		p.disk.Seek()
	}
	value := p.disk.ReadByte()
	p.ioByteCount++
	if p.ioByteCount >= sectorSize {
		p.opcode = opNOP
	}
	return value
}

// sampleClock reduces a wall-clock time to the 6 bytes DATETIME reports.
func sampleClock(t time.Time) snapshot {
	return snapshot{
		second:     uint8(t.Second()),
		minute:     uint8(t.Minute()),
		hour:       uint8(t.Hour()),
		day:        uint8(t.Day()),
		month:      uint8(t.Month()),
		yearMod100: uint8(t.Year() % 100),
	}
}

// unimplemented marks an opcode the firmware does not support: logs a
// diagnostic and asks the run loop to stop at the next step boundary.
func (p *Protocol) unimplemented(direction string, opcode uint8) {
	slog.Error("unimplemented opcode", "direction", direction, "opcode", opcode)
	p.quit = true
}
