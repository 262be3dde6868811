/*
 * z80mbc2 - I/O coprocessor opcodes
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

// opNOP is the idle/reset opcode value; no operation is latched.
const opNOP uint8 = 0xFF

// Write (OUT data port) opcodes.
const (
	opUserLED   uint8 = 0x00
	opSerialTX  uint8 = 0x01
	opGpioAWr   uint8 = 0x03
	opGpioBWr   uint8 = 0x04
	opIodirAWr  uint8 = 0x05
	opIodirBWr  uint8 = 0x06
	opGppuAWr   uint8 = 0x07
	opGppuBWr   uint8 = 0x08
	opSelDisk   uint8 = 0x09
	opSelTrack  uint8 = 0x0A
	opSelSector uint8 = 0x0B
	opWriteSect uint8 = 0x0C
	opSetBank   uint8 = 0x0D
	opSetIRQ    uint8 = 0x0E
	opSetTick   uint8 = 0x0F
	opSetOpt    uint8 = 0x10
	opSetSPP    uint8 = 0x11
	opWRSPP     uint8 = 0x12 // Reserved: printer-to-file, never implemented.
)

// Read (IN command port) opcodes.
const (
	opUserKey  uint8 = 0x80
	opGpioARd  uint8 = 0x81
	opGpioBRd  uint8 = 0x82
	opSysFlags uint8 = 0x83
	opDateTime uint8 = 0x84
	opErrDisk  uint8 = 0x85
	opReadSect uint8 = 0x86
	opSDMount  uint8 = 0x87
	opATxBuff  uint8 = 0x88
	opSysIRQ   uint8 = 0x89
	opGetSPP   uint8 = 0x90
)

// Sizes of multi-byte opcode payloads.
const (
	sectorSize     = 512
	dateTimeLength = 7
)

// SYSFLAGS bit positions.
const (
	sysFlagAutoexec   uint8 = 1 << 0
	sysFlagRTCPresent uint8 = 1 << 1
	sysFlagRXReady    uint8 = 1 << 2
	sysFlagRXEmpty    uint8 = 1 << 3
	sysFlagWarmBoot   uint8 = 1 << 4
)

// int_status bit positions (SYSIRQ).
const (
	rxIRQMask      uint8 = 1 << 0
	sysTickIRQMask uint8 = 1 << 1
)

// GETSPP result when SPP has been enabled.
const getSPPEnabled uint8 = 0b0100_0001

// DATETIME's constant temperature byte (no RTC temperature modelling, per
// the Non-goals).
const dateTimeTemperature uint8 = 21
