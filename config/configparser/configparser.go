/*
 * PDP1 - Configuration file parser
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/rcornwell/PDP1/rim/loader"
)

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := 'tapedir' <quoteopt> |
 *           'hexdir' <quoteopt> |
 *           'logfile' <quoteopt> |
 *           'serial' <quoteopt> |
 *           'filter' <string> |
 *           'start' <octalnumber>
 * <quoteopt> ::= <string> | '"' *(<letter> | <whitespace>) '"'
 */

// Settings collected from the configuration file.
type Config struct {
	TapeDir  string // Directory holding tape images.
	HexDir   string // Directory for converted hex files.
	LogFile  string // Log file path.
	Serial   string // Serial port device.
	Filter   string // Browser extension filter.
	Start    uint16 // Start address override, octal in the file.
	HasStart bool   // Start was given.
}

// Current option line being parsed.
type optionLine struct {
	line string // Current option line.
	pos  int    // Current position in line.
}

// Load a configuration file.
func LoadConfigFile(fileName string) (*Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Parse(file)
}

// Parse configuration from a reader.
func Parse(in io.Reader) (*Config, error) {
	config := &Config{Filter: "RIM,PDP,BIN"}
	scanner := bufio.NewScanner(in)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := optionLine{line: scanner.Text()}
		if err := line.parse(config); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return config, nil
}

// Parse one option line into the configuration.
func (line *optionLine) parse(config *Config) error {
	keyword := line.getWord()
	if keyword == "" {
		if line.isEOL() {
			return nil
		}
		return errors.New("expected option keyword")
	}

	switch keyword {
	case "tapedir", "hexdir", "logfile", "serial":
		value, ok := line.parseQuoteString()
		if !ok {
			return errors.New("bad value for " + keyword)
		}
		switch keyword {
		case "tapedir":
			config.TapeDir = value
		case "hexdir":
			config.HexDir = value
		case "logfile":
			config.LogFile = value
		case "serial":
			config.Serial = value
		}

	case "filter":
		value, ok := line.parseQuoteString()
		if !ok {
			return errors.New("bad value for filter")
		}
		config.Filter = value

	case "start":
		value, err := line.getOctal()
		if err != nil {
			return err
		}
		if value >= loader.MemSize {
			return fmt.Errorf("start address %o too large", value)
		}
		config.Start = uint16(value)
		config.HasStart = true

	default:
		return errors.New("unknown option: " + keyword)
	}

	line.skipSpace()
	if !line.isEOL() {
		return errors.New("trailing text after " + keyword)
	}
	return nil
}

// Skip forward over line until none whitespace character found.
func (line *optionLine) skipSpace() {
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
func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}

	if line.line[line.pos] == '#' {
		return true
	}
	return false
}

// Return current character and advance to next.
func (line *optionLine) getCurrent() byte {
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	line.pos++
	return by
}

// Parse an option keyword, letters only.
func (line *optionLine) getWord() string {
	line.skipSpace()

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
	}
	return value
}

// Parse string that is "string" or just string.
func (line *optionLine) parseQuoteString() (string, bool) {
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
		if !inQuote && unicode.IsSpace(rune(by)) {
			return value, true
		}
		value += string([]byte{by})
		by = line.getCurrent()
	}
	return value, !inQuote
}

// Parse an octal number.
func (line *optionLine) getOctal() (uint32, error) {
	line.skipSpace()

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
