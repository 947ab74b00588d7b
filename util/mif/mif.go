/*
 * PDP1 - Altera MIF memory file parser.
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

package mif

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rcornwell/PDP1/rim/loader"
	"github.com/rcornwell/PDP1/rim/tape"
)

var (
	ErrNoHeader  = errors.New("missing WIDTH or DEPTH")
	ErrNoContent = errors.New("no CONTENT BEGIN block")
)

/* MIF file format:
 *
 * '--' starts a comment, rest of line is ignored.
 * WIDTH = <number>;
 * DEPTH = <number>;
 * ADDRESS_RADIX = BIN|OCT|DEC|HEX;
 * DATA_RADIX = BIN|OCT|DEC|HEX;
 * CONTENT BEGIN
 *     <address> : <value>;
 *     [<low>..<high>] : <value>;
 * END;
 */

// Parsed file header. Radix values are number bases.
type header struct {
	width     int
	depth     int
	addrRadix int
	dataRadix int
}

func radixBase(name string) (int, error) {
	switch strings.ToUpper(name) {
	case "BIN":
		return 2, nil
	case "OCT":
		return 8, nil
	case "DEC", "UNS":
		return 10, nil
	case "HEX":
		return 16, nil
	}
	return 0, fmt.Errorf("unknown radix %q", name)
}

// Read a MIF file into a memory image. The start address is not part of
// the format and stays at the loader default.
func Read(in io.Reader) (*loader.Image, error) {
	img := loader.NewImage()
	hdr := header{addrRadix: 16, dataRadix: 16}
	inContent := false
	sawContent := false
	sawEnd := false

	scanner := bufio.NewScanner(in)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.Index(line, "--"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !inContent {
			upper := strings.ToUpper(strings.Join(strings.Fields(line), " "))
			if upper == "CONTENT BEGIN" || upper == "CONTENT" {
				inContent = true
				sawContent = true
				continue
			}
			if upper == "BEGIN" {
				continue
			}
			if err := hdr.parseAssign(line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			continue
		}

		if strings.EqualFold(strings.TrimSuffix(line, ";"), "END") {
			sawEnd = true
			inContent = false
			continue
		}
		if err := hdr.parseEntry(img, line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if hdr.width == 0 || hdr.depth == 0 {
		return nil, ErrNoHeader
	}
	if !sawContent || !sawEnd {
		return nil, ErrNoContent
	}
	return img, nil
}

// Parse one "KEY = VALUE;" header line.
func (hdr *header) parseAssign(line string) error {
	line = strings.TrimSuffix(line, ";")
	key, value, found := strings.Cut(line, "=")
	if !found {
		return fmt.Errorf("expected assignment, got %q", line)
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	var err error
	switch key {
	case "WIDTH":
		hdr.width, err = strconv.Atoi(value)
		if err == nil && (hdr.width < 1 || hdr.width > 18) {
			err = fmt.Errorf("width %d out of range", hdr.width)
		}
	case "DEPTH":
		hdr.depth, err = strconv.Atoi(value)
		if err == nil && (hdr.depth < 1 || hdr.depth > loader.MemSize) {
			err = fmt.Errorf("depth %d out of range", hdr.depth)
		}
	case "ADDRESS_RADIX":
		hdr.addrRadix, err = radixBase(value)
	case "DATA_RADIX":
		hdr.dataRadix, err = radixBase(value)
	default:
		err = fmt.Errorf("unknown parameter %q", key)
	}
	return err
}

// Parse one content entry, either a single address or a range.
func (hdr *header) parseEntry(img *loader.Image, line string) error {
	line = strings.TrimSuffix(line, ";")
	addrPart, valuePart, found := strings.Cut(line, ":")
	if !found {
		return fmt.Errorf("expected address : value, got %q", line)
	}
	addrPart = strings.TrimSpace(addrPart)
	valuePart = strings.TrimSpace(valuePart)

	value, err := strconv.ParseUint(valuePart, hdr.dataRadix, 32)
	if err != nil {
		return fmt.Errorf("bad value %q", valuePart)
	}
	word := uint32(value) & tape.WordMask

	// Range entry fills every address in [low..high].
	if strings.HasPrefix(addrPart, "[") {
		addrPart = strings.TrimSuffix(strings.TrimPrefix(addrPart, "["), "]")
		lowPart, highPart, found := strings.Cut(addrPart, "..")
		if !found {
			return fmt.Errorf("bad address range %q", addrPart)
		}
		low, err := hdr.parseAddr(lowPart)
		if err != nil {
			return err
		}
		high, err := hdr.parseAddr(highPart)
		if err != nil {
			return err
		}
		if high < low {
			return fmt.Errorf("address range %o..%o reversed", low, high)
		}
		for addr := low; addr <= high; addr++ {
			img.Put(addr, word)
		}
		return nil
	}

	addr, err := hdr.parseAddr(addrPart)
	if err != nil {
		return err
	}
	img.Put(addr, word)
	return nil
}

func (hdr *header) parseAddr(field string) (uint16, error) {
	addr, err := strconv.ParseUint(strings.TrimSpace(field), hdr.addrRadix, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address %q", field)
	}
	if addr >= uint64(loader.MemSize) {
		return 0, fmt.Errorf("address %d beyond memory", addr)
	}
	return uint16(addr), nil
}
