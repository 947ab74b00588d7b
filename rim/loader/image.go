/*
 * PDP1 - Decoded memory image.
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

package loader

import (
	"sort"

	"github.com/rcornwell/PDP1/rim/tape"
)

// Image holds the memory contents recovered from a tape plus the start
// address. Unwritten locations read as zero. Writes are last one wins.
type Image struct {
	cells map[uint16]uint32
	start uint16
}

func NewImage() *Image {
	return &Image{
		cells: map[uint16]uint32{},
		start: DefaultStart,
	}
}

// Set memory to a value. Address and value are masked to machine size.
func (img *Image) Put(addr uint16, value uint32) {
	img.cells[addr&uint16(AddrMask)] = value & tape.WordMask
}

// Get memory value, zero if the location was never written.
func (img *Image) Get(addr uint16) uint32 {
	return img.cells[addr&uint16(AddrMask)]
}

// Check if a location was ever written.
func (img *Image) Written(addr uint16) bool {
	_, ok := img.cells[addr&uint16(AddrMask)]
	return ok
}

// Record a start address candidate. The last one recorded wins.
func (img *Image) SetStart(addr uint16) {
	img.start = addr & uint16(AddrMask)
}

// Resolved start address, DefaultStart if the tape never named one.
func (img *Image) Start() uint16 {
	return img.start
}

// Number of populated locations.
func (img *Image) Locations() int {
	return len(img.cells)
}

// Lowest and highest populated address. Both zero for an empty image.
func (img *Image) Range() (uint16, uint16) {
	if len(img.cells) == 0 {
		return 0, 0
	}
	low := uint16(AddrMask)
	high := uint16(0)
	for addr := range img.cells {
		if addr < low {
			low = addr
		}
		if addr > high {
			high = addr
		}
	}
	return low, high
}

// Populated addresses in ascending order.
func (img *Image) Addresses() []uint16 {
	addrs := make([]uint16, 0, len(img.cells))
	for addr := range img.cells {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Project the sparse image onto the full address space. Entry i holds the
// value at address i, zero where nothing was loaded.
func (img *Image) Project() []uint32 {
	mem := make([]uint32, MemSize)
	for addr, value := range img.cells {
		mem[addr] = value
	}
	return mem
}
