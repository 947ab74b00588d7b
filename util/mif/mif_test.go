/*
 * PDP1 - MIF parser test cases.
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
	"errors"
	"strings"
	"testing"
)

func TestReadBasic(t *testing.T) {
	src := `-- test file
WIDTH = 18;
DEPTH = 4096;
ADDRESS_RADIX = HEX;
DATA_RADIX = HEX;

CONTENT BEGIN
    0 : 3FFFF;
    A7 : 12345;  -- trailing comment
END;
`
	img, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if img.Get(0) != 0o777777 {
		t.Errorf("mem[0] = %06o, want 777777", img.Get(0))
	}
	if img.Get(0xA7) != 0x12345 {
		t.Errorf("mem[A7] = %06X, want 12345", img.Get(0xA7))
	}
	if img.Locations() != 2 {
		t.Errorf("loaded %d locations, want 2", img.Locations())
	}
}

func TestReadRadix(t *testing.T) {
	src := `WIDTH = 18;
DEPTH = 4096;
ADDRESS_RADIX = OCT;
DATA_RADIX = BIN;
CONTENT BEGIN
    100 : 101;
END;
`
	img, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if img.Get(0o100) != 0b101 {
		t.Errorf("mem[0100] = %06o, want 5", img.Get(0o100))
	}
}

func TestReadRange(t *testing.T) {
	src := `WIDTH = 18;
DEPTH = 16;
ADDRESS_RADIX = DEC;
DATA_RADIX = DEC;
CONTENT BEGIN
    [2..5] : 7;
END;
`
	img, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	for addr := uint16(2); addr <= 5; addr++ {
		if img.Get(addr) != 7 {
			t.Errorf("mem[%d] = %d, want 7", addr, img.Get(addr))
		}
	}
	if img.Locations() != 4 {
		t.Errorf("loaded %d locations, want 4", img.Locations())
	}
}

// CONTENT and BEGIN on separate lines is accepted.
func TestReadSplitContent(t *testing.T) {
	src := `WIDTH = 18;
DEPTH = 4096;
CONTENT
BEGIN
    1 : 2;
END;
`
	img, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if img.Get(1) != 2 {
		t.Errorf("mem[1] = %d, want 2", img.Get(1))
	}
}

func TestReadErrors(t *testing.T) {
	noHeader := `CONTENT BEGIN
0 : 1;
END;
`
	if _, err := Read(strings.NewReader(noHeader)); !errors.Is(err, ErrNoHeader) {
		t.Errorf("missing header gave %v", err)
	}

	noContent := `WIDTH = 18;
DEPTH = 4096;
`
	if _, err := Read(strings.NewReader(noContent)); !errors.Is(err, ErrNoContent) {
		t.Errorf("missing content gave %v", err)
	}

	badValue := `WIDTH = 18;
DEPTH = 4096;
CONTENT BEGIN
0 : zebra;
END;
`
	if _, err := Read(strings.NewReader(badValue)); err == nil {
		t.Error("bad value accepted")
	}

	badAddr := `WIDTH = 18;
DEPTH = 4096;
ADDRESS_RADIX = DEC;
CONTENT BEGIN
5000 : 1;
END;
`
	if _, err := Read(strings.NewReader(badAddr)); err == nil {
		t.Error("out of range address accepted")
	}
}
