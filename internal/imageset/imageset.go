/*
 * z80mbc2 - Image descriptor table
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

// Package imageset holds the static table of bootable ROM images and the
// loader that pokes one into memory at startup. Every entry names a file
// under the images directory, a load address, and the disk set and
// interrupt-enable state the image expects from the IOProtocol.
package imageset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rcornwell/z80mbc2/internal/memory"
)

// Descriptor is one entry in the boot image table.
type Descriptor struct {
	ID                string // Short tag selected on the command line.
	DisplayName       string
	File              string // Name under the images directory.
	LoadAddress       uint16
	DiskSet           uint8 // 0-9, or 0xFF to disable disk access.
	IntRXEnabled      bool
	IntSystickEnabled bool
}

// NoDiskSet marks an image that never touches the disk back-end.
const NoDiskSet uint8 = 0xFF

// Images is the full boot roster. BASIC and Forth carry RX interrupts
// enabled since both expect an interactive REPL from first instruction;
// everything else polls the console. Autoboot uses no disk set; the rest
// boot from disk.
var Images = []Descriptor{
	{ID: "basic", DisplayName: "Basic", File: "basic47.bin",
		LoadAddress: 0x0000, DiskSet: NoDiskSet, IntRXEnabled: true},
	{ID: "forth", DisplayName: "Forth", File: "forth13.bin",
		LoadAddress: 0x0100, DiskSet: NoDiskSet, IntRXEnabled: true},
	{ID: "autoboot", DisplayName: "Autoboot", File: "autoboot.bin",
		LoadAddress: 0x0000, DiskSet: NoDiskSet},
	{ID: "cpm22", DisplayName: "CP/M 2.2", File: "cpm22.bin",
		LoadAddress: 0xD1E0, DiskSet: 0},
	{ID: "qpm", DisplayName: "QP/M 2.71", File: "QPMLDR.BIN",
		LoadAddress: 0x0080, DiskSet: 1},
	{ID: "cpm3", DisplayName: "CP/M 3.0", File: "CPMLDR.COM",
		LoadAddress: 0x0100, DiskSet: 2},
	{ID: "pascal", DisplayName: "UCSD Pascal", File: "ucsdldr.bin",
		LoadAddress: 0x0000, DiskSet: 3},
	{ID: "collapse", DisplayName: "Collapse OS", File: "cos.bin",
		LoadAddress: 0x0000, DiskSet: 4},
	{ID: "fuzix", DisplayName: "Fuzix", File: "fuzix.bin",
		LoadAddress: 0x0000, DiskSet: 5},
}

// Find returns the descriptor with the given id, or false if none matches.
func Find(id string) (Descriptor, bool) {
	for _, d := range Images {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Load opens dir/desc.File, reads up to 65536 bytes, and pokes them into
// mem one byte at a time starting at desc.LoadAddress, so a bank-0 image
// lands through the same decode path a guest peek/poke would use.
func Load(mem *memory.Memory, dir string, desc Descriptor) error {
	path := filepath.Join(dir, desc.File)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening image %q: %w", path, err)
	}
	defer f.Close()

	var buf [65536]byte
	n, err := f.Read(buf[:])
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading image %q: %w", path, err)
	}

	addr := desc.LoadAddress
	for i := 0; i < n; i++ {
		mem.Poke(addr, buf[i])
		addr++
	}
	return nil
}
