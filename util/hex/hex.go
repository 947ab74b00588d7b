/*
 * PDP1 - Memory image hex formats.
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

package hex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rcornwell/PDP1/rim/loader"
	"github.com/rcornwell/PDP1/rim/tape"
)

var hexMap = "0123456789ABCDEF"

// Format an 18 bit word as five hex digits.
func FormatWord(str *strings.Builder, word uint32) {
	shift := 16
	for i := 0; i < 5; i++ {
		str.WriteByte(hexMap[(word>>shift)&0xf])
		shift -= 4
	}
}

// Format an 18 bit word as six octal digits.
func FormatOctal(str *strings.Builder, word uint32) {
	shift := 15
	for i := 0; i < 6; i++ {
		str.WriteByte(hexMap[(word>>shift)&0o7])
		shift -= 3
	}
}

// Format a 12 bit address as four octal digits.
func FormatAddr(str *strings.Builder, addr uint16) {
	shift := 9
	for i := 0; i < 4; i++ {
		str.WriteByte(hexMap[(addr>>shift)&0o7])
		shift -= 3
	}
}

// Write the full memory image, one five digit hex word per line for all
// 4096 addresses in order. This is the $readmemh file the memory
// initialization tooling consumes, the format is fixed.
func WriteDump(out io.Writer, img *loader.Image) error {
	writer := bufio.NewWriter(out)
	var line strings.Builder
	for _, word := range img.Project() {
		line.Reset()
		FormatWord(&line, word)
		line.WriteByte('\n')
		if _, err := writer.WriteString(line.String()); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// Read a hex word file back into a memory image. One word per line loaded
// from address zero up, blank lines skipped, comments start with '#', ';'
// or '//'. Words are masked to 18 bits, both five and six digit files
// occur in the wild.
func ReadDump(in io.Reader) (*loader.Image, error) {
	img := loader.NewImage()
	scanner := bufio.NewScanner(in)
	addr := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexAny(line, "#;"); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		word, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad hex word %q", lineNum, line)
		}
		if addr >= loader.MemSize {
			return nil, fmt.Errorf("line %d: more than %d words", lineNum, loader.MemSize)
		}
		if value := uint32(word) & tape.WordMask; value != 0 {
			img.Put(uint16(addr), value)
		}
		addr++
	}
	return img, scanner.Err()
}

// Write a Verilog include with explicit memory assignments. Synthesis for
// some FPGA families ignores $readmemh in initial blocks, explicit
// assignments always work. Zero words are left to the power on default.
func WriteVerilogInit(out io.Writer, img *loader.Image, ram string) error {
	writer := bufio.NewWriter(out)
	fmt.Fprintf(writer, "// Memory initialization, %d words loaded.\n", img.Locations())
	fmt.Fprintln(writer, "initial begin")
	for _, addr := range img.Addresses() {
		word := img.Get(addr)
		if word == 0 {
			continue
		}
		fmt.Fprintf(writer, "    %s[%d] = 18'h%05X;\n", ram, addr, word)
	}
	fmt.Fprintln(writer, "end")
	return writer.Flush()
}
