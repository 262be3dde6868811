/*
 * z80mbc2 - SD disk image back-end
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

// Package diskio is a positioned byte-stream over a flat SD disk image,
// addressed the way the Z80-MBC2 firmware addresses it: a disk set digit
// and two-digit disk number select a file, a (track, sector) pair selects
// a 512-byte block inside it. Every operation latches a last-error code
// instead of returning an error value, because that is how the guest-side
// ERRDISK opcode observes failures.
package diskio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Error codes returned by LastError, matching the Petit FatFs codes the
// original firmware exposes through the ERRDISK opcode.
const (
	Ok                  uint8 = 0
	DiskError           uint8 = 1
	NoFile              uint8 = 3
	NotOpened           uint8 = 4
	IllegalDiskNumber   uint8 = 16
	IllegalTrackNumber  uint8 = 17
	IllegalSectorNumber uint8 = 18
)

const (
	// Tracks is the number of tracks per disk image.
	Tracks = 512
	// Sectors is the number of sectors per track.
	Sectors = 32
	// SectorSize is the size in bytes of one sector.
	SectorSize = 512
)

// Disk is a positioned byte-stream over one SD disk image file.
type Disk struct {
	dir       string // Directory holding the DSxNxx.DSK files ("sd" by default).
	file      *os.File
	track     uint16
	sector    uint8
	lastError uint8
}

// New returns a Disk reading/writing images under dir.
func New(dir string) *Disk {
	return &Disk{dir: dir}
}

// LastError returns the error code from the most recent operation.
func (d *Disk) LastError() uint8 {
	return d.lastError
}

// fileName is the DSxNxx.DSK image name for a (set, number) pair.
func fileName(set, number uint8) string {
	return fmt.Sprintf("DS%dN%02d.DSK", set, number)
}

// SelectDisk closes any previously opened image and opens
// sd/DS{set}N{number:02}.DSK read/write.
func (d *Disk) SelectDisk(set, number uint8) {
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}

	if set > 9 || number > 99 {
		d.lastError = IllegalDiskNumber
		return
	}

	path := filepath.Join(d.dir, fileName(set, number))
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	switch {
	case errors.Is(err, os.ErrNotExist):
		d.lastError = NoFile
	case err != nil:
		d.lastError = DiskError
	default:
		d.file = f
		d.lastError = Ok
	}
}

// SelectTrack stores the track for the next seek, rejecting t >= Tracks.
func (d *Disk) SelectTrack(t uint16) {
	if t < Tracks {
		d.track = t
		d.lastError = Ok
	} else {
		d.lastError = IllegalTrackNumber
	}
}

// SelectSector stores the sector for the next seek, rejecting s >= Sectors.
func (d *Disk) SelectSector(s uint8) {
	if s < Sectors {
		d.sector = s
		d.lastError = Ok
	} else {
		d.lastError = IllegalSectorNumber
	}
}

// offset is the byte offset of the current (track, sector) in the image.
func (d *Disk) offset() int64 {
	return (int64(d.track)*Sectors + int64(d.sector)) * SectorSize
}

// Seek positions the open file at the current (track, sector).
func (d *Disk) Seek() {
	if d.file == nil {
		d.lastError = NotOpened
		return
	}
	if _, err := d.file.Seek(d.offset(), io.SeekStart); err != nil {
		d.lastError = DiskError
		return
	}
	d.lastError = Ok
}

// ReadByte reads one byte and advances the file position. Does nothing and
// returns 0 if the last operation already failed.
func (d *Disk) ReadByte() uint8 {
	if d.lastError != Ok {
		return 0
	}
	if d.file == nil {
		d.lastError = NotOpened
		return 0
	}
	var buf [1]byte
	if _, err := d.file.Read(buf[:]); err != nil {
		d.lastError = DiskError
		return 0
	}
	return buf[0]
}

// WriteByte writes one byte and advances the file position. Does nothing
// if the last operation already failed.
func (d *Disk) WriteByte(value uint8) {
	if d.lastError != Ok {
		return
	}
	if d.file == nil {
		d.lastError = NotOpened
		return
	}
	buf := [1]byte{value}
	if _, err := d.file.Write(buf[:]); err != nil {
		d.lastError = DiskError
	}
}

// Close releases the open image, if any.
func (d *Disk) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
