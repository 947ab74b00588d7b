/*
 * PDP1 - Command parser.
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
	"strings"
	"unicode"
)

type cmd struct {
	Name     string // Command name.
	Min      int    // Minimum match size.
	Process  func(*cmdLine, *Session) (bool, error)
	Complete func(*cmdLine, *Session) []string
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

// Execute the command line given. Returns true when the session should
// end.
func ProcessCommand(commandLine string, session *Session) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord(false)
	if command == "" {
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}

	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].Process(&line, session)
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	l := 0
	for i := 0; i < len(command); i++ {
		l = i
		if l >= len(match.Name) || match.Name[l] != command[l] {
			return false
		}
	}
	return (l + 1) >= match.Min
}

// Check if command matches one of the commands.
func matchList(command string) []cmd {
	// If command empty just return.
	if command == "" {
		return []cmd{}
	}

	// Try and match one command.
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, command) {
			match = append(match, m)
		}
	}
	return match
}

// Skip forward over line until none whitespace character found.
func (line *cmdLine) skipSpace() {
	for {
		if line.pos >= len(line.line) {
			return
		}
		if unicode.IsSpace(rune(line.line[line.pos])) {
			line.pos++
			continue
		}
		return
	}
}

// Check if at end of line.
func (line *cmdLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}

	if line.line[line.pos] == '#' {
		return true
	}
	return false
}

// Return current character and advance to next.
func (line *cmdLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Parse string that is "string" or just string.
func (line *cmdLine) parseQuoteString() (string, bool) {
	line.skipSpace()
	inQuote := false
	value := ""

	by := line.getCurrent()
	if by == 0 {
		return "", false
	}

	if by == '"' {
		inQuote = true
		by = line.getCurrent()
	}

	for by != 0 {
		if by == '"' && inQuote {
			return value, true
		}
		// Space terminates a no quoted string.
		if !inQuote && unicode.IsSpace(rune(by)) {
			return value, true
		}
		value += string([]byte{by})
		by = line.getCurrent()
	}
	return value, !inQuote
}

// Parse an octal number. Addresses and words are octal on a PDP-1.
func (line *cmdLine) getOctal() (uint32, error) {
	line.skipSpace()

	// Check if end of line.
	if line.isEOL() {
		return 0, errors.New("not a number")
	}

	value := uint32(0)
	by := line.getCurrent()
	for by != 0 {
		if by < '0' || by > '7' {
			return 0, errors.New("not an octal number")
		}
		value = (value << 3) + uint32(by-'0')
		by = line.getCurrent()
		if by != 0 && unicode.IsSpace(rune(by)) {
			break
		}
	}

	return value, nil
}

// Parse option name.
// Return string and stop at = when asked to.
func (line *cmdLine) getWord(equal bool) string {
	line.skipSpace()

	// Characters must be alphabetic
	value := ""
	pos := line.pos
	by := line.getCurrent()
	for by != 0 {
		if !unicode.IsLetter(rune(by)) {
			line.pos = pos
			return ""
		}
		value += string([]byte{by})
		by = line.getCurrent()
		if by != 0 && unicode.IsSpace(rune(by)) {
			break
		}
		if by == '=' && equal {
			return strings.ToLower(value)
		}
	}

	return strings.ToLower(value)
}
