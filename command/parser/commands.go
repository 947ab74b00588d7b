/*
 * PDP1 - Command executer.
 *
 * Copyright 2026, Richard Cornwell
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

package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/rcornwell/PDP1/config/configparser"
	"github.com/rcornwell/PDP1/rim/loader"
	"github.com/rcornwell/PDP1/transfer"
	"github.com/rcornwell/PDP1/util/browser"
	"github.com/rcornwell/PDP1/util/hex"
	"github.com/rcornwell/PDP1/util/mif"
)

// Session holds the state the console commands operate on.
type Session struct {
	Fsys   afero.Fs             // File system tapes and dumps live on.
	Config *configparser.Config // Active configuration.
	Image  *loader.Image        // Current memory image.
	Stats  loader.Stats         // Statistics from the last decode.
	Browse *browser.Browser     // Tape directory browser.
	Out    io.Writer            // Command output.

	// Dial opens the serial port, replaceable in tests.
	Dial func(name string) (io.ReadWriteCloser, error)
}

// Create a session over the given file system and configuration.
func NewSession(fsys afero.Fs, config *configparser.Config) *Session {
	dir := config.TapeDir
	if dir == "" {
		dir = "."
	}
	brw := browser.New(fsys, dir)
	brw.SetFilter(config.Filter)
	return &Session{
		Fsys:   fsys,
		Config: config,
		Image:  loader.NewImage(),
		Browse: brw,
		Out:    os.Stdout,
		Dial: func(name string) (io.ReadWriteCloser, error) {
			return fsys.OpenFile(name, os.O_RDWR, 0)
		},
	}
}

var cmdList = []cmd{
	{Name: "load", Min: 1, Process: load, Complete: fileComplete},
	{Name: "dump", Min: 2, Process: dump, Complete: fileComplete},
	{Name: "verilog", Min: 1, Process: verilog, Complete: fileComplete},
	{Name: "punch", Min: 1, Process: punch, Complete: fileComplete},
	{Name: "examine", Min: 2, Process: examine},
	{Name: "deposit", Min: 2, Process: deposit},
	{Name: "info", Min: 1, Process: info},
	{Name: "browse", Min: 1, Process: browse},
	{Name: "send", Min: 2, Process: send},
	{Name: "set", Min: 2, Process: set, Complete: setComplete},
	{Name: "quit", Min: 1, Process: quit},
}

// Read a tape or image file into the session. The format comes from the
// file extension, RIM tapes by default.
func load(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Load")

	name, ok := line.parseQuoteString()
	if !ok || name == "" {
		return false, errors.New("load needs a file name")
	}
	name = session.resolve(name, session.Config.TapeDir)

	switch strings.ToLower(path.Ext(name)) {
	case ".mif":
		file, err := session.Fsys.Open(name)
		if err != nil {
			return false, err
		}
		defer file.Close()
		img, err := mif.Read(file)
		if err != nil {
			return false, err
		}
		session.Image = img
		session.Stats = loader.Stats{Deposited: img.Locations(), Locations: img.Locations()}

	case ".hex":
		file, err := session.Fsys.Open(name)
		if err != nil {
			return false, err
		}
		defer file.Close()
		img, err := hex.ReadDump(file)
		if err != nil {
			return false, err
		}
		session.Image = img
		session.Stats = loader.Stats{Deposited: img.Locations(), Locations: img.Locations()}

	default:
		raw, err := afero.ReadFile(session.Fsys, name)
		if err != nil {
			return false, err
		}
		session.Image, session.Stats = loader.Decode(raw)
	}

	if session.Config.HasStart {
		session.Image.SetStart(session.Config.Start)
	}
	fmt.Fprintf(session.Out, "%s: %d locations, start %04o\n",
		name, session.Image.Locations(), session.Image.Start())
	return false, nil
}

// Write the current image as a hex dump.
func dump(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Dump")

	name, ok := line.parseQuoteString()
	if !ok || name == "" {
		return false, errors.New("dump needs a file name")
	}
	name = session.resolve(name, session.Config.HexDir)

	file, err := session.Fsys.Create(name)
	if err != nil {
		return false, err
	}
	defer file.Close()
	return false, hex.WriteDump(file, session.Image)
}

// Write the current image as a Verilog initial block.
func verilog(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Verilog")

	name, ok := line.parseQuoteString()
	if !ok || name == "" {
		return false, errors.New("verilog needs a file name")
	}
	name = session.resolve(name, session.Config.HexDir)
	ram := line.getWord(false)
	if ram == "" {
		ram = "ram"
	}

	file, err := session.Fsys.Create(name)
	if err != nil {
		return false, err
	}
	defer file.Close()
	return false, hex.WriteVerilogInit(file, session.Image, ram)
}

// Punch the current image back out as a RIM tape.
func punch(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Punch")

	name, ok := line.parseQuoteString()
	if !ok || name == "" {
		return false, errors.New("punch needs a file name")
	}
	name = session.resolve(name, session.Config.TapeDir)

	raw := loader.Punch(session.Image)
	if err := afero.WriteFile(session.Fsys, name, raw, 0o644); err != nil {
		return false, err
	}
	fmt.Fprintf(session.Out, "%s: %d bytes\n", name, len(raw))
	return false, nil
}

// Display memory locations.
func examine(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Examine")

	addr, err := line.getOctal()
	if err != nil {
		return false, err
	}
	if addr >= loader.MemSize {
		return false, errors.New("address too large")
	}
	count := uint32(1)
	if !line.isEOL() {
		count, err = line.getOctal()
		if err != nil {
			return false, err
		}
	}

	var out strings.Builder
	for ; count != 0 && addr < loader.MemSize; count-- {
		word := session.Image.Get(uint16(addr))
		hex.FormatAddr(&out, uint16(addr))
		out.WriteString(": ")
		hex.FormatOctal(&out, word)
		out.WriteString(" ")
		hex.FormatWord(&out, word)
		out.WriteString("\n")
		addr++
	}
	fmt.Fprint(session.Out, out.String())
	return false, nil
}

// Deposit a word into memory.
func deposit(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Deposit")

	addr, err := line.getOctal()
	if err != nil {
		return false, err
	}
	if addr >= loader.MemSize {
		return false, errors.New("address too large")
	}
	word, err := line.getOctal()
	if err != nil {
		return false, err
	}
	session.Image.Put(uint16(addr), word)
	return false, nil
}

// Show statistics for the current image.
func info(_ *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Info")

	img := session.Image
	fmt.Fprintf(session.Out, "locations: %d\n", img.Locations())
	if img.Locations() != 0 {
		low, high := img.Range()
		fmt.Fprintf(session.Out, "range:     %04o-%04o\n", low, high)
	}
	fmt.Fprintf(session.Out, "start:     %04o\n", img.Start())
	if session.Stats.TapeBytes != 0 {
		fmt.Fprintf(session.Out, "tape:      %d bytes, %d blocks, %d words\n",
			session.Stats.TapeBytes, session.Stats.Blocks, session.Stats.Words)
	}
	return false, nil
}

// List or walk the tape directory.
func browse(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Browse")

	if !line.isEOL() {
		name, ok := line.parseQuoteString()
		if !ok {
			return false, errors.New("bad directory name")
		}
		if name == ".." {
			session.Browse.Up()
		} else if name != "" {
			session.Browse = browser.New(session.Fsys, name)
			session.Browse.SetFilter(session.Config.Filter)
		}
	}

	entries, err := session.Browse.Entries()
	if err != nil {
		return false, err
	}
	fmt.Fprintf(session.Out, "%s:\n", session.Browse.Path())
	for _, entry := range entries {
		if entry.Dir {
			fmt.Fprintf(session.Out, "  %-24s <dir>\n", entry.Name)
		} else {
			fmt.Fprintf(session.Out, "  %-24s %d\n", entry.Name, entry.Size)
		}
	}
	return false, nil
}

// Send the image to the machine over the serial loader.
func send(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Send")

	run := false
	if !line.isEOL() {
		word := line.getWord(false)
		if word != "run" {
			return false, errors.New("send takes only run")
		}
		run = true
	}
	if session.Config.Serial == "" {
		return false, errors.New("no serial port configured")
	}
	if session.Image.Locations() == 0 {
		return false, errors.New("nothing to send")
	}

	port, err := session.Dial(session.Config.Serial)
	if err != nil {
		return false, err
	}
	defer port.Close()

	serial := transfer.NewSerialLoader(port)
	if err := serial.Ping(); err != nil {
		return false, err
	}
	sent, err := serial.SendImage(session.Image, run)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(session.Out, "sent %d words\n", sent)
	return false, nil
}

// Change session settings: start address, browser filter, serial port.
func set(line *cmdLine, session *Session) (bool, error) {
	slog.Debug("Command Set")

	name := line.getWord(true)
	switch name {
	case "start":
		value, err := line.getOctal()
		if err != nil {
			return false, err
		}
		if value >= loader.MemSize {
			return false, errors.New("start address too large")
		}
		session.Config.Start = uint16(value)
		session.Config.HasStart = true
		session.Image.SetStart(uint16(value))

	case "filter":
		value, ok := line.parseQuoteString()
		if !ok {
			return false, errors.New("bad filter value")
		}
		session.Config.Filter = value
		session.Browse.SetFilter(value)

	case "serial":
		value, ok := line.parseQuoteString()
		if !ok {
			return false, errors.New("bad serial value")
		}
		session.Config.Serial = value

	default:
		return false, errors.New("unknown setting: " + name)
	}
	return false, nil
}

// Handle commands that quit the session.
func quit(_ *cmdLine, _ *Session) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}

// Resolve a file name against a configured directory. Absolute names and
// names with a path are used as given.
func (session *Session) resolve(name, dir string) string {
	if dir == "" || path.IsAbs(name) || strings.ContainsRune(name, '/') {
		return name
	}
	return path.Join(dir, name)
}
