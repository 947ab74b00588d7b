/*
 * PDP1 - Transfer protocol test cases.
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
package transfer

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"

	"github.com/rcornwell/PDP1/rim/loader"
)

// Fake serial port, reads come from a canned reply.
type fakePort struct {
	reply bytes.Buffer
	sent  bytes.Buffer
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.reply.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.sent.Write(b) }

func TestSerialPing(t *testing.T) {
	port := &fakePort{}
	port.reply.WriteByte('K')
	s := NewSerialLoader(port)
	if err := s.Ping(); err != nil {
		t.Fatal(err)
	}
	if port.sent.String() != "P" {
		t.Errorf("sent %q, want P", port.sent.String())
	}

	port = &fakePort{}
	port.reply.WriteByte('X')
	if err := NewSerialLoader(port).Ping(); err == nil {
		t.Error("bad reply accepted")
	}
}

func TestSerialLoad(t *testing.T) {
	port := &fakePort{}
	s := NewSerialLoader(port)
	if err := s.Load(0o7751, 0o320123); err != nil {
		t.Fatal(err)
	}
	want := []byte{'L', 0x0f, 0xe9, 0x01, 0xa0, 0x53}
	if !bytes.Equal(port.sent.Bytes(), want) {
		t.Errorf("sent % 02x, want % 02x", port.sent.Bytes(), want)
	}
}

func TestSerialSendImage(t *testing.T) {
	img := loader.NewImage()
	img.Put(0o200, 0o777000)
	img.Put(0o100, 0o111111)
	img.SetStart(0o100)

	port := &fakePort{}
	sent, err := NewSerialLoader(port).SendImage(img, true)
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 {
		t.Errorf("sent %d words, want 2", sent)
	}

	var want []byte
	want = append(want, 'S')
	want = append(want, 'L', 0x00, 0x40, 0x00, 0x92, 0x49) // 0100: 111111
	want = append(want, 'L', 0x00, 0x80, 0x03, 0xfe, 0x00) // 0200: 777000
	want = append(want, 'A', 0x00, 0x40)
	want = append(want, 'R')
	if !bytes.Equal(port.sent.Bytes(), want) {
		t.Errorf("stream\n got % 02x\nwant % 02x", port.sent.Bytes(), want)
	}
}

// Fake select framed link, records each select cycle separately.
type fakeLink struct {
	selected bool
	cycles   [][]byte
}

func (l *fakeLink) Select() {
	if l.selected {
		panic("select while selected")
	}
	l.selected = true
	l.cycles = append(l.cycles, nil)
}

func (l *fakeLink) Deselect() {
	l.selected = false
}

func (l *fakeLink) Write(b []byte) (int, error) {
	if !l.selected {
		panic("write while deselected")
	}
	last := len(l.cycles) - 1
	l.cycles[last] = append(l.cycles[last], b...)
	return len(b), nil
}

func TestOSDControl(t *testing.T) {
	link := &fakeLink{}
	osd := NewOSD(link, afero.NewMemMapFs())
	if err := osd.HaltCPU(); err != nil {
		t.Fatal(err)
	}
	want := []byte{cmdStatus, 2, 0, 0, 0}
	if len(link.cycles) != 1 || !bytes.Equal(link.cycles[0], want) {
		t.Errorf("cycles = % 02x, want % 02x", link.cycles, want)
	}
}

func TestOSDWriteLine(t *testing.T) {
	link := &fakeLink{}
	osd := NewOSD(link, afero.NewMemMapFs())
	if err := osd.WriteLine(3, "PDP-1"); err != nil {
		t.Fatal(err)
	}
	cycle := link.cycles[0]
	if len(cycle) != 1+OSDCols {
		t.Fatalf("frame length %d, want %d", len(cycle), 1+OSDCols)
	}
	if cycle[0] != cmdOSDWrite+3 {
		t.Errorf("command = %02x", cycle[0])
	}
	if string(cycle[1:6]) != "PDP-1" || cycle[6] != ' ' || cycle[OSDCols] != ' ' {
		t.Errorf("text = %q", cycle[1:])
	}

	// Out of range lines are ignored.
	if err := osd.WriteLine(16, "x"); err != nil {
		t.Fatal(err)
	}
	if len(link.cycles) != 1 {
		t.Error("out of range line was sent")
	}
}

// The whole file must stream inside one select cycle with a single data
// command byte, the receiver resets if select drops between chunks.
func TestOSDSendFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	body := bytes.Repeat([]byte{0xa5}, 3*chunkSize+17)
	if err := afero.WriteFile(fsys, "/tapes/spacewar.rim", body, 0o644); err != nil {
		t.Fatal(err)
	}

	link := &fakeLink{}
	osd := NewOSD(link, fsys)
	if err := osd.SendFile("/tapes/spacewar.rim", FileIndexRIM); err != nil {
		t.Fatal(err)
	}

	if len(link.cycles) != 4 {
		t.Fatalf("got %d select cycles, want 4", len(link.cycles))
	}
	if !bytes.Equal(link.cycles[0], []byte{cmdFileIndex, FileIndexRIM}) {
		t.Errorf("file index cycle = % 02x", link.cycles[0])
	}
	if !bytes.Equal(link.cycles[1], []byte{cmdFileTxEnable, 1}) {
		t.Errorf("enable cycle = % 02x", link.cycles[1])
	}
	data := link.cycles[2]
	if data[0] != cmdFileTxData {
		t.Errorf("data command = %02x", data[0])
	}
	if !bytes.Equal(data[1:], body) {
		t.Errorf("streamed %d bytes, want %d", len(data)-1, len(body))
	}
	if !bytes.Equal(link.cycles[3], []byte{cmdFileTxEnable, 0}) {
		t.Errorf("disable cycle = % 02x", link.cycles[3])
	}
	if osd.Progress() != 100 {
		t.Errorf("progress = %d, want 100", osd.Progress())
	}
}

func TestOSDSendMissingFile(t *testing.T) {
	link := &fakeLink{}
	osd := NewOSD(link, afero.NewMemMapFs())
	if err := osd.SendFile("/none.rim", FileIndexRIM); err == nil {
		t.Error("missing file accepted")
	}
	if len(link.cycles) != 0 {
		t.Error("commands sent for missing file")
	}
}

func TestOSDLoadAndRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/t.rim", []byte{0x80, 0x81, 0x82}, 0o644); err != nil {
		t.Fatal(err)
	}
	link := &fakeLink{}
	osd := NewOSD(link, fsys)
	if err := osd.LoadAndRun("/t.rim"); err != nil {
		t.Fatal(err)
	}
	// Halt, reset, index, enable, data, disable, run.
	if len(link.cycles) != 7 {
		t.Fatalf("got %d cycles, want 7", len(link.cycles))
	}
	first := link.cycles[0]
	last := link.cycles[6]
	if !bytes.Equal(first, []byte{cmdStatus, ctrlHalt, 0, 0, 0}) {
		t.Errorf("first cycle = % 02x", first)
	}
	if !bytes.Equal(last, []byte{cmdStatus, ctrlRun, 0, 0, 0}) {
		t.Errorf("last cycle = % 02x", last)
	}
}
