/*
 * PDP1 - Command parser test cases.
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
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/rcornwell/PDP1/config/configparser"
	"github.com/rcornwell/PDP1/rim/loader"
)

func testSession() (*Session, *bytes.Buffer) {
	config := &configparser.Config{Filter: "RIM,PDP,BIN"}
	session := NewSession(afero.NewMemMapFs(), config)
	out := &bytes.Buffer{}
	session.Out = out
	return session, out
}

func run(t *testing.T, session *Session, commandLine string) {
	t.Helper()
	quit, err := ProcessCommand(commandLine, session)
	if err != nil {
		t.Fatalf("%q: %v", commandLine, err)
	}
	if quit {
		t.Fatalf("%q asked to quit", commandLine)
	}
}

func TestProcessDispatch(t *testing.T) {
	session, _ := testSession()

	if quit, err := ProcessCommand("", session); quit || err != nil {
		t.Errorf("empty line: quit %v err %v", quit, err)
	}
	if _, err := ProcessCommand("frobnicate", session); err == nil {
		t.Error("unknown command accepted")
	}
	// "se" is set or send.
	if _, err := ProcessCommand("se start=100", session); err == nil {
		t.Error("ambiguous command accepted")
	}
	if quit, err := ProcessCommand("q", session); !quit || err != nil {
		t.Errorf("quit: quit %v err %v", quit, err)
	}
}

func TestDepositExamine(t *testing.T) {
	session, out := testSession()

	run(t, session, "de 200 777000")
	run(t, session, "ex 200")
	if out.String() != "0200: 777000 3FE00\n" {
		t.Errorf("examine output %q", out.String())
	}

	out.Reset()
	run(t, session, "deposit 201 000001")
	run(t, session, "examine 200 2")
	want := "0200: 777000 3FE00\n0201: 000001 00001\n"
	if out.String() != want {
		t.Errorf("examine output %q, want %q", out.String(), want)
	}

	if _, err := ProcessCommand("deposit 10000 1", session); err == nil {
		t.Error("address out of range accepted")
	}
	if _, err := ProcessCommand("deposit 200 999", session); err == nil {
		t.Error("non octal value accepted")
	}
}

func TestLoadDumpRoundTrip(t *testing.T) {
	session, _ := testSession()

	img := loader.NewImage()
	img.Put(0o100, 0o111111)
	img.Put(0o200, 0o777000)
	img.SetStart(0o100)
	if err := afero.WriteFile(session.Fsys, "/t.rim", loader.Punch(img), 0o644); err != nil {
		t.Fatal(err)
	}

	run(t, session, "load /t.rim")
	if session.Image.Get(0o200) != 0o777000 {
		t.Errorf("mem[0200] = %06o", session.Image.Get(0o200))
	}
	if session.Image.Start() != 0o100 {
		t.Errorf("start = %04o", session.Image.Start())
	}

	run(t, session, "dump /t.hex")
	text, err := afero.ReadFile(session.Fsys, "/t.hex")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(text), "\n"), "\n")
	if len(lines) != loader.MemSize {
		t.Fatalf("dump has %d lines, want %d", len(lines), loader.MemSize)
	}
	if lines[0o200] != "3FE00" {
		t.Errorf("line 0200 = %q", lines[0o200])
	}

	// Reading the dump back gives the same image.
	run(t, session, "load /t.hex")
	if session.Image.Get(0o100) != 0o111111 {
		t.Errorf("reloaded mem[0100] = %06o", session.Image.Get(0o100))
	}
}

func TestLoadMissing(t *testing.T) {
	session, _ := testSession()
	if _, err := ProcessCommand("load /none.rim", session); err == nil {
		t.Error("missing file accepted")
	}
}

func TestSet(t *testing.T) {
	session, _ := testSession()

	run(t, session, "set start=7751")
	if !session.Config.HasStart || session.Config.Start != 0o7751 {
		t.Errorf("start = %04o set %v", session.Config.Start, session.Config.HasStart)
	}
	if session.Image.Start() != 0o7751 {
		t.Errorf("image start = %04o", session.Image.Start())
	}

	run(t, session, "set filter=RIM")
	if session.Config.Filter != "RIM" {
		t.Errorf("filter = %q", session.Config.Filter)
	}

	if _, err := ProcessCommand("set bogus=1", session); err == nil {
		t.Error("unknown setting accepted")
	}
	if _, err := ProcessCommand("set start=10000", session); err == nil {
		t.Error("start out of range accepted")
	}
}

// Serial port stand in for the send command.
type fakePort struct {
	reply  bytes.Buffer
	sent   bytes.Buffer
	closed bool
}

func (p *fakePort) Read(b []byte) (int, error)  { return p.reply.Read(b) }
func (p *fakePort) Write(b []byte) (int, error) { return p.sent.Write(b) }
func (p *fakePort) Close() error                { p.closed = true; return nil }

func TestSend(t *testing.T) {
	session, out := testSession()
	session.Config.Serial = "/dev/ttyUSB0"

	port := &fakePort{}
	port.reply.WriteByte('K')
	session.Dial = func(string) (io.ReadWriteCloser, error) { return port, nil }

	run(t, session, "deposit 100 111111")
	run(t, session, "send")
	if !strings.Contains(out.String(), "sent 1 words") {
		t.Errorf("send output %q", out.String())
	}
	if !port.closed {
		t.Error("port left open")
	}
	if port.sent.Len() == 0 {
		t.Error("nothing written to port")
	}
}

func TestSendNoImage(t *testing.T) {
	session, _ := testSession()
	session.Config.Serial = "/dev/ttyUSB0"
	if _, err := ProcessCommand("send", session); err == nil {
		t.Error("empty image sent")
	}
}

func TestBrowse(t *testing.T) {
	session, out := testSession()
	fsys := session.Fsys
	for _, name := range []string{"/tapes/spacewar.rim", "/tapes/music.bin", "/tapes/readme.txt"} {
		if err := afero.WriteFile(fsys, name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	run(t, session, "browse /tapes")
	text := out.String()
	if !strings.Contains(text, "spacewar.rim") || !strings.Contains(text, "music.bin") {
		t.Errorf("browse output %q", text)
	}
	if strings.Contains(text, "readme.txt") {
		t.Error("filter let readme.txt through")
	}
}

func TestComplete(t *testing.T) {
	session, _ := testSession()

	got := CompleteCmd("lo", session)
	if len(got) != 1 || got[0] != "load" {
		t.Errorf("complete lo = %v", got)
	}

	got = CompleteCmd("d", session)
	if len(got) != 2 {
		t.Errorf("complete d = %v", got)
	}

	got = CompleteCmd("set st", session)
	if len(got) != 1 || got[0] != "set start " {
		t.Errorf("complete set st = %v", got)
	}
}

func TestFileComplete(t *testing.T) {
	session, _ := testSession()
	session.Config.TapeDir = "/tapes"
	for _, name := range []string{"/tapes/spacewar.rim", "/tapes/snowflake.rim"} {
		if err := afero.WriteFile(session.Fsys, name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	run(t, session, "browse /tapes")

	got := CompleteCmd("load sp", session)
	if len(got) != 1 || got[0] != "load spacewar.rim" {
		t.Errorf("complete load sp = %v", got)
	}
	got = CompleteCmd("load s", session)
	if len(got) != 2 {
		t.Errorf("complete load s = %v", got)
	}
}
