/*
 * z80mbc2 - Main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/z80mbc2/internal/console"
	"github.com/rcornwell/z80mbc2/internal/imageset"
	"github.com/rcornwell/z80mbc2/internal/logging"
	"github.com/rcornwell/z80mbc2/internal/machine"
)

var logger *slog.Logger

func main() {
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optImagesDir := getopt.StringLong("images-dir", 'i', "sd", "Directory holding ROM images")
	optDiskDir := getopt.StringLong("disk-dir", 'd', "sd", "Directory holding DSxNxx.DSK disk images")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("image-id")
	getopt.Parse()

	if *optHelp {
		usage()
		os.Exit(0)
	}

	// file stays a nil io.Writer (not a typed-nil *os.File) when no log
	// file was requested, so logging.NewHandler's nil check actually fires.
	var file io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "opening log file:", err)
			os.Exit(1)
		}
		file = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	logger = slog.New(logging.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, false))
	slog.SetDefault(logger)

	args := getopt.Args()
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}

	desc, ok := imageset.Find(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "image %q not found.\n\n", args[0])
		usage()
		os.Exit(1)
	}

	con, err := console.NewHost()
	if err != nil {
		logger.Error("opening host console", "error", err)
		os.Exit(1)
	}
	defer con.Close()

	m, err := machine.New(*optImagesDir, *optDiskDir, desc, con)
	if err != nil {
		logger.Error("loading image", "id", desc.ID, "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received OS shutdown signal")
		os.Exit(0)
	}()

	logger.Info("booting image", "id", desc.ID, "name", desc.DisplayName)
	cpu := &unimplementedCPU{}
	machine.NewRunLoop(m, cpu, desc.LoadAddress).Run()
	logger.Info("run loop exited")
}

// usage prints the image roster the way images.rs's usage()/USAGE2 pair
// does: a banner, one line per image id/name/path, then the download note.
func usage() {
	fmt.Println("Usage: z80mbc2 [options] <image-id>")
	fmt.Println("  <image-id> can be:")
	for _, d := range imageset.Images {
		fmt.Printf("    %-10s for %-14s using sd/%s\n", d.ID, d.DisplayName, d.File)
	}
	fmt.Println()
	getopt.PrintUsage(os.Stdout)
	fmt.Println("\nDownload the ROM and disk images into the directories named by --images-dir/--disk-dir.")
}

// unimplementedCPU satisfies machine.CPU as a stand-in for the Z80
// instruction decoder, which is an external collaborator out of this
// repository's scope. It halts on its first Step so the run loop exits
// cleanly rather than spinning forever with no guest code executing.
type unimplementedCPU struct {
	pc uint16
}

func (c *unimplementedCPU) SetPC(addr uint16) {
	c.pc = addr
}

func (c *unimplementedCPU) Step(bus machine.Bus) (cycles int, halted bool) {
	slog.Warn("no Z80 decoder wired; halting immediately", "pc", c.pc)
	return 0, true
}
