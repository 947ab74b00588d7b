/*
 * PDP1 - Tape selection menu.
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

package ui

import (
	"fmt"

	"github.com/gdamore/tcell"
	"github.com/spf13/afero"

	"github.com/rcornwell/PDP1/transfer"
	"github.com/rcornwell/PDP1/util/browser"
)

/* Full screen tape picker drawn in the geometry of the hardware on
 * screen display, a 16 line by 32 column window. The top line shows the
 * current directory, the bottom line the key help, the rest is the file
 * list. Directories open in place, Enter on a file returns its path.
 */
const (
	menuLines = transfer.OSDLines
	menuCols  = transfer.OSDCols

	listLines = menuLines - 2
)

type menu struct {
	screen  tcell.Screen
	browse  *browser.Browser
	entries []browser.Entry
	top     int // First entry shown.
	cursor  int // Selected entry.
}

// Run the tape selection menu over the given directory. Returns the
// path of the chosen file, empty if the menu was dismissed.
func RunMenu(fsys afero.Fs, dir string, filter string) (string, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return "", err
	}
	if err := screen.Init(); err != nil {
		return "", err
	}
	defer screen.Fini()
	screen.HideCursor()

	brw := browser.New(fsys, dir)
	brw.SetFilter(filter)
	m := &menu{screen: screen, browse: brw}
	if err := m.reload(); err != nil {
		return "", err
	}

	for {
		m.draw()
		event := screen.PollEvent()
		key, ok := event.(*tcell.EventKey)
		if !ok {
			continue
		}
		name, done, err := m.handleKey(key)
		if err != nil {
			return "", err
		}
		if done {
			return name, nil
		}
	}
}

// Refresh the entry list after a directory change.
func (m *menu) reload() error {
	entries, err := m.browse.Entries()
	if err != nil {
		return err
	}
	m.entries = entries
	m.top = 0
	m.cursor = 0
	return nil
}

// Process one key. Returns the selected path and true when the menu is
// finished.
func (m *menu) handleKey(key *tcell.EventKey) (string, bool, error) {
	switch key.Key() {
	case tcell.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		if m.cursor < m.top {
			m.top = m.cursor
		}

	case tcell.KeyDown:
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
		if m.cursor >= m.top+listLines {
			m.top = m.cursor - listLines + 1
		}

	case tcell.KeyEnter:
		if len(m.entries) == 0 {
			break
		}
		entry := m.entries[m.cursor]
		if entry.Dir {
			if err := m.browse.Enter(entry); err != nil {
				return "", false, err
			}
			return "", false, m.reload()
		}
		return m.browse.FullPath(entry), true, nil

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if m.browse.Up() {
			return "", false, m.reload()
		}

	case tcell.KeyEscape:
		return "", true, nil

	case tcell.KeyRune:
		if key.Rune() == 'q' {
			return "", true, nil
		}
	}
	return "", false, nil
}

// Draw the menu window.
func (m *menu) draw() {
	m.screen.Clear()
	header := tcell.StyleDefault.Reverse(true)

	m.drawLine(0, m.browse.Path(), header)
	for row := 0; row < listLines; row++ {
		index := m.top + row
		if index >= len(m.entries) {
			break
		}
		entry := m.entries[index]
		text := entry.Name
		if entry.Dir {
			text = fmt.Sprintf("%-*s <dir>", menuCols-7, text)
		}
		style := tcell.StyleDefault
		if index == m.cursor {
			style = style.Reverse(true)
		}
		m.drawLine(row+1, text, style)
	}
	m.drawLine(menuLines-1, "Enter:pick Bksp:up Esc:quit", header)
	m.screen.Show()
}

// Draw one text line clipped and padded to the window width.
func (m *menu) drawLine(row int, text string, style tcell.Style) {
	for col := 0; col < menuCols; col++ {
		ch := ' '
		if col < len(text) {
			ch = rune(text[col])
		}
		m.screen.SetCell(col, row, style, ch)
	}
}
