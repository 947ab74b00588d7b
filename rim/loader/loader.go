/*
 * PDP1 - RIM bootstrap loader simulation.
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
	"log/slog"

	"github.com/rcornwell/PDP1/rim/tape"
)

const (
	// MemSize is the number of words in PDP-1 core memory.
	MemSize = 4096

	// AddrMask limits addresses to 12 bits.
	AddrMask uint32 = 0o7777

	// DefaultStart is where the machine begins if no transfer
	// instruction was punched on the tape.
	DefaultStart uint16 = 0o100

	// Opcodes the loader reacts to. All others are plain data.
	opDIO uint32 = 0o32 // Deposit I/O register at address.
	opJMP uint32 = 0o60 // Transfer control to address.
)

// Decode statistics, informational only.
type Stats struct {
	TapeBytes int    // Size of raw tape.
	Blocks    int    // Blocks found on tape.
	Words     int    // Words assembled over all blocks.
	Deposited int    // Words actually written to memory.
	Locations int    // Distinct populated locations.
	Low       uint16 // Lowest populated address.
	High      uint16 // Highest populated address.
	Start     uint16 // Resolved start address.
}

// Extract the six bit opcode field of a word.
func opcode(word uint32) uint32 {
	return (word >> 12) & 0o77
}

// Extract the twelve bit address field of a word.
func address(word uint32) uint16 {
	return uint16(word & AddrMask)
}

// Run one block of words through the loader. Returns the number of words
// deposited into memory. The loader never rejects a block, a malformed
// block simply deposits fewer words.
func (img *Image) applyBlock(words []uint32) int {
	// A lone transfer instruction names a start address candidate.
	if len(words) == 1 && opcode(words[0]) == opJMP {
		img.SetStart(address(words[0]))
		return 0
	}

	// Two deposit instructions heading the block mark a bulk block:
	// first address is the destination, second is one past the end,
	// the words between are stored sequentially. The only signal for
	// this layout is the count fitting the rest of the block, a pair
	// that fails the bound is reinterpreted as ordinary instructions.
	if len(words) >= 2 && opcode(words[0]) == opDIO && opcode(words[1]) == opDIO {
		count := int(address(words[1])) - int(address(words[0]))
		if count > 0 && count <= len(words)-2 {
			addr := uint32(address(words[0]))
			for _, word := range words[2 : 2+count] {
				img.Put(uint16(addr), word)
				addr = (addr + 1) & AddrMask
			}
			return count
		}
	}

	// Ordinary block: deposit instruction followed by the word to store.
	// Transfer instructions only record a start candidate, tapes with
	// several segments carry one per segment and the last wins. Anything
	// else is inert and skipped.
	deposited := 0
	pos := 0
	for pos < len(words) {
		switch opcode(words[pos]) {
		case opDIO:
			if (pos + 1) < len(words) {
				img.Put(address(words[pos]), words[pos+1])
				deposited++
				pos += 2
				continue
			}
			pos++
		case opJMP:
			img.SetStart(address(words[pos]))
			pos++
		default:
			pos++
		}
	}
	return deposited
}

// Decode a complete RIM tape into a memory image. Blocks are folded into
// the image in tape order since later blocks may overwrite earlier ones.
// Decode accepts any byte sequence and cannot fail.
func Decode(raw []byte) (*Image, Stats) {
	img := NewImage()
	stats := Stats{TapeBytes: len(raw)}

	for _, block := range tape.SplitBlocks(raw) {
		words := tape.Words(block)
		stats.Blocks++
		stats.Words += len(words)
		stats.Deposited += img.applyBlock(words)
	}

	stats.Locations = img.Locations()
	stats.Low, stats.High = img.Range()
	stats.Start = img.Start()
	slog.Debug("tape decoded",
		slog.Int("blocks", stats.Blocks),
		slog.Int("words", stats.Words),
		slog.Int("locations", stats.Locations))
	return img, stats
}
