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

package protocol

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcornwell/z80mbc2/internal/console"
	"github.com/rcornwell/z80mbc2/internal/diskio"
	"github.com/rcornwell/z80mbc2/internal/memory"
)

const (
	cmdPort  uint16 = 0xF0 // Even address: command port.
	dataPort uint16 = 0xF1 // Odd address: data port.
)

func newTestProtocol(t *testing.T, con *console.Fake) *Protocol {
	t.Helper()
	mem := memory.New()
	disk := diskio.New(t.TempDir())
	return New(mem, disk, con, 0xFF)
}

func TestOpcodeNOPAfterSingleByteTransaction(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{})
	p.PortOut(cmdPort, opUserLED)
	p.PortOut(dataPort, 1)
	if p.opcode != opNOP {
		t.Errorf("opcode after single-byte OUT: got %#x want NOP", p.opcode)
	}
	if p.ioByteCount != 0 {
		t.Errorf("ioByteCount after single-byte OUT: got %d want 0", p.ioByteCount)
	}
}

func TestSelTrackFraming(t *testing.T) {
	dir := t.TempDir()
	makeDiskImage(t, dir, 0, 0)
	p := New(memory.New(), diskio.New(dir), &console.Fake{}, 0)
	p.PortOut(cmdPort, opSelTrack)
	p.PortOut(dataPort, 0x34) // low byte
	if p.opcode != opSelTrack {
		t.Fatalf("opcode abandoned after first SELTRACK byte")
	}
	p.PortOut(dataPort, 0x00) // high byte -> track 0x0034
	if p.opcode != opNOP {
		t.Errorf("opcode after SELTRACK: got %#x want NOP", p.opcode)
	}
	if p.disk.LastError() != diskio.Ok {
		t.Errorf("disk.LastError after SELTRACK: got %d want Ok", p.disk.LastError())
	}
}

func TestWriteSectFramingAt511And512Bytes(t *testing.T) {
	dir := t.TempDir()
	makeDiskImage(t, dir, 1, 2)
	p := New(memory.New(), diskio.New(dir), &console.Fake{}, 1)
	p.PortOut(cmdPort, opSelDisk)
	p.PortOut(dataPort, 2)
	p.PortOut(cmdPort, opWriteSect)
	for i := 0; i < 511; i++ {
		p.PortOut(dataPort, byte(i))
	}
	if p.opcode != opWriteSect {
		t.Fatalf("opcode reset early at 511 bytes")
	}
	p.PortOut(dataPort, 0xFF)
	if p.opcode != opNOP {
		t.Errorf("opcode after 512th byte: got %#x want NOP", p.opcode)
	}
}

func TestMidTransactionCommandPortAbandonsTransfer(t *testing.T) {
	dir := t.TempDir()
	makeDiskImage(t, dir, 0, 0)
	p := New(memory.New(), diskio.New(dir), &console.Fake{}, 0)
	p.PortOut(cmdPort, opWriteSect)
	p.PortOut(dataPort, 0xAA)
	p.PortOut(dataPort, 0xBB)
	// Re-latch mid-transfer: abandons the WRITESECT in flight.
	p.PortOut(cmdPort, opUserLED)
	if p.opcode != opUserLED {
		t.Fatalf("command port write during transfer did not re-latch: got %#x", p.opcode)
	}
	if p.ioByteCount != 0 {
		t.Errorf("ioByteCount not reset on re-latch: got %d", p.ioByteCount)
	}
}

func TestWriteSectReadSectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	makeDiskImage(t, dir, 2, 9)
	p := New(memory.New(), diskio.New(dir), &console.Fake{}, 2)
	p.PortOut(cmdPort, opSelDisk)
	p.PortOut(dataPort, 9)

	selectTrackSector := func(track uint16, sector uint8) {
		p.PortOut(cmdPort, opSelTrack)
		p.PortOut(dataPort, byte(track))
		p.PortOut(dataPort, byte(track>>8))
		p.PortOut(cmdPort, opSelSector)
		p.PortOut(dataPort, sector)
	}

	var payload [512]byte
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	selectTrackSector(7, 4)
	p.PortOut(cmdPort, opWriteSect)
	for _, b := range payload {
		p.PortOut(dataPort, b)
	}

	selectTrackSector(7, 4)
	p.PortOut(cmdPort, opReadSect)
	var got [512]byte
	for i := range got {
		got[i] = p.PortIn(cmdPort)
	}
	if got != payload {
		t.Errorf("READSECT did not round-trip WRITESECT payload")
	}
}

func TestBankDecodeScenarios(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{})
	p.PortOut(cmdPort, opSetBank)
	p.PortOut(dataPort, 1)
	p.mem.Poke(0x0000, 0xAB)
	if got := p.mem.Peek(0x0000); got != 0xAB {
		t.Fatalf("bank 1 addr 0: got %#x want 0xAB", got)
	}

	p.PortOut(cmdPort, opSetBank)
	p.PortOut(dataPort, 2)
	p.mem.Poke(0x7FFF, 0xCD)
	if got := p.mem.Peek(0x7FFF); got != 0xCD {
		t.Fatalf("bank 2 addr 0x7FFF: got %#x want 0xCD", got)
	}

	p.PortOut(cmdPort, opSetBank)
	p.PortOut(dataPort, 0)
	p.mem.Poke(0xC000, 0xEF)
	if got := p.mem.Peek(0xC000); got != 0xEF {
		t.Fatalf("bank 0 addr 0xC000: got %#x want 0xEF", got)
	}
}

func TestSerialRXNoInputIsEmptySentinel(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{})
	v := p.PortIn(dataPort)
	if v != 0xFF {
		t.Errorf("RX with no input: got %#x want 0xFF", v)
	}
	if !p.lastRXIsEmpty {
		t.Error("lastRXIsEmpty not set after empty RX read")
	}

	p.PortOut(cmdPort, opSysFlags)
	flags := p.PortIn(cmdPort)
	want := uint8(sysFlagRTCPresent | sysFlagRXEmpty)
	if flags != want {
		t.Errorf("SYSFLAGS after empty RX: got %#b want %#b", flags, want)
	}
}

func TestCtrlCSetsQuit(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{Pending: []byte{3}})
	ch := p.PortIn(dataPort)
	if ch != 3 {
		t.Errorf("RX: got %d want 3", ch)
	}
	if !p.quit {
		t.Error("Ctrl-C did not set quit")
	}
}

func TestDELRemapsToBS(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{Pending: []byte{127}})
	ch := p.PortIn(dataPort)
	if ch != 8 {
		t.Errorf("DEL remap: got %d want 8", ch)
	}
}

func TestUnimplementedOpcodeSetsQuit(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{})
	p.PortOut(cmdPort, 0x12) // WRSPP, reserved/unimplemented.
	p.PortOut(dataPort, 0)
	if !p.quit {
		t.Error("unimplemented opcode did not set quit")
	}
}

func TestInterruptRaiseAndClearOnRXRead(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{Pending: []byte{'x'}})
	p.SetInterrupts(true, false)

	p.TickMillis()
	if p.intStatus&rxIRQMask == 0 {
		t.Fatal("RX interrupt not raised after tick")
	}
	if !p.InterruptLineRaised() {
		t.Fatal("interrupt line not raised after tick")
	}

	p.PortIn(dataPort)
	if p.intStatus&rxIRQMask != 0 {
		t.Error("RX interrupt bit not cleared after data-port read")
	}
	if p.InterruptLineRaised() {
		t.Error("interrupt line not cleared after data-port read")
	}
	if !p.rxDone {
		t.Error("rxDone not restored after data-port read")
	}
}

func TestSYSIRQIsIdempotentUntilNextTick(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{Pending: []byte{'x'}})
	p.SetInterrupts(true, false)
	p.TickMillis()

	p.PortOut(cmdPort, opSysIRQ)
	first := p.PortIn(cmdPort)
	if first&rxIRQMask == 0 {
		t.Fatal("first SYSIRQ read did not report pending RX bit")
	}

	p.PortOut(cmdPort, opSysIRQ)
	second := p.PortIn(cmdPort)
	if second != 0 {
		t.Errorf("second SYSIRQ read: got %#x want 0", second)
	}
}

func TestSYSIRQReadClearsInterruptLine(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{Pending: []byte{'z'}})
	p.SetInterrupts(true, false)
	p.TickMillis()
	if !p.InterruptLineRaised() {
		t.Fatal("setup: interrupt line should be raised")
	}

	p.PortOut(cmdPort, opSysIRQ)
	p.PortIn(cmdPort)
	if p.InterruptLineRaised() {
		t.Error("SYSIRQ read did not clear interrupt line")
	}
	if p.intStatus != 0 {
		t.Errorf("SYSIRQ read did not clear int_status: got %#x", p.intStatus)
	}
}

func TestDataPortReadAlwaysClearsInterruptLine(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{Pending: []byte{'y'}})
	p.SetInterrupts(true, false)
	p.TickMillis()
	if !p.InterruptLineRaised() {
		t.Fatal("setup: interrupt line should be raised")
	}
	p.PortIn(dataPort)
	if p.InterruptLineRaised() {
		t.Error("data-port read did not clear interrupt line")
	}
}

func TestDateTimeSevenBytesThenNOP(t *testing.T) {
	p := newTestProtocol(t, &console.Fake{})
	fixed := time.Date(2026, time.March, 4, 13, 7, 42, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	p.PortOut(cmdPort, opDateTime)
	want := []uint8{42, 7, 13, 4, 3, 26, dateTimeTemperature}
	for i, w := range want {
		got := p.PortIn(cmdPort)
		if got != w {
			t.Errorf("DATETIME byte %d: got %d want %d", i, got, w)
		}
	}
	if p.opcode != opNOP {
		t.Errorf("opcode after 7 DATETIME bytes: got %#x want NOP", p.opcode)
	}
	if v := p.PortIn(cmdPort); v != 0 {
		t.Errorf("8th DATETIME read: got %d want 0 (NOP is unimplemented-as-read)", v)
	}
}

// makeDiskImage writes a zeroed fixture image file so SelectDisk finds a
// real file to open instead of recording NoFile.
func makeDiskImage(t *testing.T, dir string, set, number uint8) {
	t.Helper()
	name := filepath.Join(dir, fmt.Sprintf("DS%dN%02d.DSK", set, number))
	buf := make([]byte, diskio.Tracks*diskio.Sectors*diskio.SectorSize)
	if err := os.WriteFile(name, buf, 0o644); err != nil {
		t.Fatalf("writing fixture image: %v", err)
	}
}
