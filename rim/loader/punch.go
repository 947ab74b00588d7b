/*
 * PDP1 - RIM tape punch.
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

import "github.com/rcornwell/PDP1/rim/tape"

const leaderLength = 16

// Punch an image back out as a read-in mode tape. Each populated
// location becomes a DIO and data word pair, the start address goes out
// last as a lone JMP separated by leader so the reader sees it as its
// own block. Decode on the result rebuilds the same image.
func Punch(img *Image) []byte {
	raw := tape.AppendLeader(nil, leaderLength)

	for _, addr := range img.Addresses() {
		raw = tape.AppendWord(raw, opDIO<<12|uint32(addr))
		raw = tape.AppendWord(raw, img.Get(addr))
	}

	raw = tape.AppendLeader(raw, leaderLength)
	raw = tape.AppendWord(raw, opJMP<<12|uint32(img.Start()))
	return tape.AppendLeader(raw, leaderLength)
}
