/*
 * PDP1 - Tape file browser.
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

package browser

import (
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// One directory entry. Directories sort before files.
type Entry struct {
	Name string
	Size int64
	Dir  bool
}

// Browser walks a filesystem showing only tape files. The filesystem is
// abstract so tests and embedded images can supply their own.
type Browser struct {
	fsys   afero.Fs
	cwd    string
	filter []string
}

func New(fsys afero.Fs, root string) *Browser {
	if root == "" {
		root = "/"
	}
	return &Browser{fsys: fsys, cwd: path.Clean(root)}
}

// Restrict file entries to a comma separated extension list like
// "RIM,PDP,BIN". Matching ignores case, empty list shows everything.
func (b *Browser) SetFilter(list string) {
	b.filter = nil
	for _, ext := range strings.Split(list, ",") {
		ext = strings.TrimSpace(strings.TrimPrefix(ext, "."))
		if ext != "" {
			b.filter = append(b.filter, "."+strings.ToUpper(ext))
		}
	}
}

// Current directory being browsed.
func (b *Browser) Path() string {
	return b.cwd
}

// List the current directory, directories first, both groups sorted by
// name. Files not matching the filter are hidden.
func (b *Browser) Entries() ([]Entry, error) {
	infos, err := afero.ReadDir(b.fsys, b.cwd)
	if err != nil {
		return nil, err
	}

	var dirs, files []Entry
	for _, info := range infos {
		entry := Entry{Name: info.Name(), Size: info.Size(), Dir: info.IsDir()}
		if entry.Dir {
			dirs = append(dirs, entry)
			continue
		}
		if b.matches(entry.Name) {
			files = append(files, entry)
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return append(dirs, files...), nil
}

// Enter a subdirectory by entry.
func (b *Browser) Enter(entry Entry) error {
	if !entry.Dir {
		return errors.New("not a directory: " + entry.Name)
	}
	next := path.Join(b.cwd, entry.Name)
	ok, err := afero.DirExists(b.fsys, next)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no such directory: " + next)
	}
	b.cwd = next
	return nil
}

// Move to the parent directory. Reports false at the root.
func (b *Browser) Up() bool {
	parent := path.Dir(b.cwd)
	if parent == b.cwd {
		return false
	}
	b.cwd = parent
	return true
}

// Full path of an entry in the current directory.
func (b *Browser) FullPath(entry Entry) string {
	return path.Join(b.cwd, entry.Name)
}

func (b *Browser) matches(name string) bool {
	if len(b.filter) == 0 {
		return true
	}
	ext := strings.ToUpper(path.Ext(name))
	for _, want := range b.filter {
		if ext == want {
			return true
		}
	}
	return false
}
