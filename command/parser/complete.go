/*
 * PDP1 - Command completion functions.
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
	"slices"
	"strings"
	"unicode"
)

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string, session *Session) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord(false)

	// We have a command, let it try and complete it.
	if !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		// See if there is a completer for this command.
		match := matchList(name)
		if len(match) != 1 {
			return nil
		}

		if match[0].Complete != nil {
			return match[0].Complete(&line, session)
		}
		return nil
	}

	// Try and match one command.
	var matches []string
	for _, m := range cmdList {
		if strings.HasPrefix(m.Name, name) {
			matches = append(matches, m.Name)
		}
	}
	slices.Sort(matches)
	return matches
}

// Complete a file name from the browser directory.
func fileComplete(line *cmdLine, session *Session) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	partial := line.line[line.pos:]

	entries, err := session.Browse.Entries()
	if err != nil {
		return nil
	}

	var matches []string
	for _, entry := range entries {
		if entry.Dir {
			continue
		}
		if partial == "" || strings.HasPrefix(strings.ToLower(entry.Name), strings.ToLower(partial)) {
			matches = append(matches, leading+entry.Name)
		}
	}
	slices.Sort(matches)
	return matches
}

// Complete setting names for the set command.
func setComplete(line *cmdLine, _ *Session) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	partial := strings.ToLower(line.line[line.pos:])

	var matches []string
	for _, name := range []string{"filter", "serial", "start"} {
		if strings.HasPrefix(name, partial) {
			matches = append(matches, leading+name+" ")
		}
	}
	return matches
}
