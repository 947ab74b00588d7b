/*
 * PDP1 - RIM paper tape frame handling.
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

package tape

const (
	// Tape frame layout.
	dataMark    byte = 0x80 // Bit 7 set marks a data frame.
	payloadMask byte = 0x3f // Low six bits of a data frame carry payload.

	// Three six bit frames make one memory word.
	framesPerWord = 3

	// WordMask limits values to 18 bits.
	WordMask uint32 = 0o777777
)

// Check if frame carries data, leader and trailer frames do not.
func IsData(frame byte) bool {
	return (frame & dataMark) != 0
}

// Extract the six payload bits of a data frame.
func Payload(frame byte) uint8 {
	return frame & payloadMask
}

// Split a raw tape into blocks of payload values. A run of one or more
// non data frames ends the current block. Blocks shorter than one full
// word are dropped, including a short run at end of tape.
func SplitBlocks(raw []byte) [][]uint8 {
	var blocks [][]uint8
	var block []uint8
	for _, frame := range raw {
		if (frame & dataMark) == 0 {
			if len(block) >= framesPerWord {
				blocks = append(blocks, block)
			}
			block = nil
			continue
		}
		block = append(block, frame&payloadMask)
	}
	if len(block) >= framesPerWord {
		blocks = append(blocks, block)
	}
	return blocks
}

// Assemble a block of payload values into 18 bit words, high frame first.
// One or two payload values left over at the end of a block do not make a
// word and are dropped.
func Words(block []uint8) []uint32 {
	words := make([]uint32, 0, len(block)/framesPerWord)
	for i := 0; (i + framesPerWord) <= len(block); i += framesPerWord {
		word := (uint32(block[i]) << 12) | (uint32(block[i+1]) << 6) | uint32(block[i+2])
		words = append(words, word)
	}
	return words
}

// Append one word to a tape as three data frames, high frame first.
func AppendWord(raw []byte, word uint32) []byte {
	word &= WordMask
	return append(raw,
		dataMark|byte(word>>12)&payloadMask,
		dataMark|byte(word>>6)&payloadMask,
		dataMark|byte(word)&payloadMask)
}

// Append blank leader or trailer frames to a tape.
func AppendLeader(raw []byte, count int) []byte {
	for i := 0; i < count; i++ {
		raw = append(raw, 0)
	}
	return raw
}
