/*
 * z80mbc2 - Disk image inspector
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

// Command diskctl is a REPL for poking at a Z80-MBC2 disk image directly,
// sector by sector, without a guest CPU in the loop. It is not part of the
// emulator's runtime — the emulator's own console must own stdin
// exclusively while a guest is running — but it exercises the exact same
// internal/diskio.Disk the emulator uses.
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/rcornwell/z80mbc2/internal/diskio"
	"github.com/rcornwell/z80mbc2/util/hex"
)

func main() {
	optDiskDir := getopt.StringLong("disk-dir", 'd', "sd", "Directory holding DSxNxx.DSK disk images")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()
	if *optHelp {
		getopt.Usage()
		return
	}

	disk := diskio.New(*optDiskDir)
	defer disk.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(s string) []string {
		return completeCommand(s)
	})

	for {
		input, err := line.Prompt("diskctl> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			fmt.Println("error reading line:", err)
			return
		}
		line.AppendHistory(input)

		if quit := runCommand(disk, input); quit {
			return
		}
	}
}

var commandNames = []string{"open", "track", "sector", "dump", "write", "quit", "help"}

func completeCommand(prefix string) []string {
	var out []string
	for _, c := range commandNames {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// runCommand executes one REPL line against disk, reporting true when the
// session should end.
func runCommand(disk *diskio.Disk, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "help":
		fmt.Println("commands: open <set> <num>, track <t>, sector <s>, dump, write <hexbytes>, quit")
	case "open":
		cmdOpen(disk, fields)
	case "track":
		cmdTrack(disk, fields)
	case "sector":
		cmdSector(disk, fields)
	case "dump":
		cmdDump(disk)
	case "write":
		cmdWrite(disk, fields)
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func cmdOpen(disk *diskio.Disk, fields []string) {
	if len(fields) != 3 {
		fmt.Println("usage: open <set> <num>")
		return
	}
	set, err1 := strconv.ParseUint(fields[1], 10, 8)
	num, err2 := strconv.ParseUint(fields[2], 10, 8)
	if err1 != nil || err2 != nil {
		fmt.Println("set and num must be decimal numbers")
		return
	}
	disk.SelectDisk(uint8(set), uint8(num))
	reportError(disk)
}

func cmdTrack(disk *diskio.Disk, fields []string) {
	if len(fields) != 2 {
		fmt.Println("usage: track <t>")
		return
	}
	t, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		fmt.Println("track must be a decimal number")
		return
	}
	disk.SelectTrack(uint16(t))
	reportError(disk)
}

func cmdSector(disk *diskio.Disk, fields []string) {
	if len(fields) != 2 {
		fmt.Println("usage: sector <s>")
		return
	}
	s, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		fmt.Println("sector must be a decimal number")
		return
	}
	disk.SelectSector(uint8(s))
	reportError(disk)
}

// cmdDump reads the current sector and prints it as 32 lines of 16
// hex+ASCII bytes. The hex column is built with util/hex.FormatBytes, the
// same nibble-table formatter the S370 debugger console uses for its
// memory dumps.
func cmdDump(disk *diskio.Disk) {
	disk.Seek()
	if disk.LastError() != diskio.Ok {
		reportError(disk)
		return
	}

	var sector [diskio.SectorSize]byte
	for i := range sector {
		sector[i] = disk.ReadByte()
		if disk.LastError() != diskio.Ok {
			reportError(disk)
			return
		}
	}

	const perLine = 16
	var b strings.Builder
	for row := 0; row < len(sector); row += perLine {
		fmt.Fprintf(&b, "%04x  ", row)
		hex.FormatBytes(&b, true, sector[row:row+perLine])
		b.WriteByte(' ')
		for i := 0; i < perLine; i++ {
			c := sector[row+i]
			if c < 0x20 || c >= 0x7f {
				c = '.'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	fmt.Print(b.String())
}

func cmdWrite(disk *diskio.Disk, fields []string) {
	if len(fields) != 2 {
		fmt.Println("usage: write <hexbytes>")
		return
	}
	hexDigits := fields[1]
	if len(hexDigits)%2 != 0 {
		fmt.Println("hex payload must have an even number of digits")
		return
	}

	disk.Seek()
	for i := 0; i+1 < len(hexDigits); i += 2 {
		var b uint8
		_, err := fmt.Sscanf(hexDigits[i:i+2], "%02x", &b)
		if err != nil {
			fmt.Println("invalid hex byte:", hexDigits[i:i+2])
			return
		}
		disk.WriteByte(b)
	}
	reportError(disk)
}

func reportError(disk *diskio.Disk) {
	if e := disk.LastError(); e != diskio.Ok {
		fmt.Printf("error: %d\n", e)
	}
}
