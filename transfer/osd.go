/*
 * PDP1 - OSD command channel and file transfer.
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

package transfer

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/afero"
)

/* OSD command channel. Every command runs inside one select cycle:
 * select, command byte, operands, deselect. File data is the exception,
 * the whole file streams inside a single select cycle after one data
 * command byte, dropping select between chunks resets the receiver.
 */
const (
	cmdFileTxEnable byte = 0x53 // Operand 1 enables transfer mode, 0 ends it.
	cmdFileTxData   byte = 0x54 // Raw file bytes follow until deselect.
	cmdFileIndex    byte = 0x55 // Select file type slot.
	cmdStatus       byte = 0x1e // Control bits, run/reset/halt.
	cmdOSDDisable   byte = 0x40
	cmdOSDEnable    byte = 0x41
	cmdOSDWrite     byte = 0x20 // Plus line number 0-15.

	// Control bits for cmdStatus.
	ctrlRun   byte = 0
	ctrlReset byte = 1
	ctrlHalt  byte = 2

	// FileIndexRIM is the receiver slot for RIM tapes.
	FileIndexRIM byte = 1

	chunkSize = 256

	// OSD text geometry.
	OSDLines = 16
	OSDCols  = 32
)

var ErrNotActive = errors.New("transfer not started")

// Link is one select framed command channel to the receiver. Writes only
// reach it while selected.
type Link interface {
	Select()
	Deselect()
	io.Writer
}

// OSD drives the on screen display and file download of the receiver.
type OSD struct {
	link   Link
	fsys   afero.Fs
	active bool
	name   string
	size   int64
	sent   int64
}

func NewOSD(link Link, fsys afero.Fs) *OSD {
	return &OSD{link: link, fsys: fsys}
}

// Run one short command in its own select cycle.
func (osd *OSD) command(bytes ...byte) error {
	osd.link.Select()
	defer osd.link.Deselect()
	_, err := osd.link.Write(bytes)
	return err
}

// Send control bits through the status command. Operand is padded to the
// fixed status frame size.
func (osd *OSD) control(bits byte) error {
	return osd.command(cmdStatus, bits, 0, 0, 0)
}

func (osd *OSD) HaltCPU() error  { return osd.control(ctrlHalt) }
func (osd *OSD) ResetCPU() error { return osd.control(ctrlReset) }
func (osd *OSD) RunCPU() error   { return osd.control(ctrlRun) }

// Show or hide the on screen display.
func (osd *OSD) Enable(show bool) error {
	if show {
		return osd.command(cmdOSDEnable)
	}
	return osd.command(cmdOSDDisable)
}

// Write one OSD text line. Text is clipped and padded to the display
// width, lines outside the display are ignored.
func (osd *OSD) WriteLine(line int, text string) error {
	if line < 0 || line >= OSDLines {
		return nil
	}
	buf := make([]byte, 1+OSDCols)
	buf[0] = cmdOSDWrite + byte(line)
	for i := 0; i < OSDCols; i++ {
		by := byte(' ')
		if i < len(text) {
			by = text[i]
			if by < 0x20 || by > 0x7e {
				by = '?'
			}
		}
		buf[1+i] = by
	}
	return osd.command(buf...)
}

// Blank the whole display.
func (osd *OSD) Clear() error {
	for line := 0; line < OSDLines; line++ {
		if err := osd.WriteLine(line, ""); err != nil {
			return err
		}
	}
	return nil
}

// Send a file to the receiver. The file index selects how the receiver
// interprets it, the data streams in one select cycle.
func (osd *OSD) SendFile(name string, index byte) error {
	info, err := osd.fsys.Stat(name)
	if err != nil {
		return err
	}
	file, err := osd.fsys.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	osd.name = name
	osd.size = info.Size()
	osd.sent = 0

	if err := osd.command(cmdFileIndex, index); err != nil {
		return err
	}
	if err := osd.command(cmdFileTxEnable, 1); err != nil {
		return err
	}

	osd.active = true
	err = osd.stream(file)
	osd.active = false
	if err != nil {
		// Drop transfer mode so the receiver is not left waiting.
		_ = osd.command(cmdFileTxEnable, 0)
		return err
	}

	if err := osd.command(cmdFileTxEnable, 0); err != nil {
		return err
	}
	slog.Debug("file sent", slog.String("name", name), slog.Int64("bytes", osd.sent))
	return nil
}

// Stream the file body inside a single select cycle. The data command
// byte goes out once, then only raw bytes until deselect.
func (osd *OSD) stream(file io.Reader) error {
	osd.link.Select()
	defer osd.link.Deselect()

	if _, err := osd.link.Write([]byte{cmdFileTxData}); err != nil {
		return err
	}

	chunk := make([]byte, chunkSize)
	for {
		n, err := file.Read(chunk)
		if n > 0 {
			if _, werr := osd.link.Write(chunk[:n]); werr != nil {
				return werr
			}
			osd.sent += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Transfer progress in percent.
func (osd *OSD) Progress() int {
	if osd.size == 0 {
		return 0
	}
	return int(osd.sent * 100 / osd.size)
}

// Check if a file stream is in flight.
func (osd *OSD) Active() bool {
	return osd.active
}

// Send a tape file and start the machine: halt, reset, download, run.
func (osd *OSD) LoadAndRun(name string) error {
	if err := osd.HaltCPU(); err != nil {
		return err
	}
	if err := osd.ResetCPU(); err != nil {
		return err
	}
	if err := osd.SendFile(name, FileIndexRIM); err != nil {
		return err
	}
	return osd.RunCPU()
}
