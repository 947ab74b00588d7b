/*
 * PDP1 - Serial loader protocol.
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
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rcornwell/PDP1/rim/loader"
)

/* UART loader protocol, one command byte then fixed operands:
 *
 * 'L' addr(2) data(3)   Write one word to memory.
 * 'A' addr(2)           Set test address register.
 * 'W' data(3)           Set test word register.
 * 'R'                   Run CPU.
 * 'S'                   Stop CPU.
 * 'P'                   Ping, peer answers 'K'.
 *
 * Addresses are two bytes big endian, words three bytes big endian.
 */
const (
	cmdLoad      = 'L'
	cmdWriteAddr = 'A'
	cmdWriteWord = 'W'
	cmdRun       = 'R'
	cmdStop      = 'S'
	cmdPing      = 'P'

	pingReply = 'K'
)

var ErrNoReply = errors.New("no ping reply")

// Serial hookup to the loader peripheral. The port is any byte stream, a
// real UART device file or a pipe in tests.
type SerialLoader struct {
	port io.ReadWriter
}

func NewSerialLoader(port io.ReadWriter) *SerialLoader {
	return &SerialLoader{port: port}
}

// Check the peer is alive.
func (s *SerialLoader) Ping() error {
	if _, err := s.port.Write([]byte{cmdPing}); err != nil {
		return err
	}
	reply := make([]byte, 1)
	if _, err := io.ReadFull(s.port, reply); err != nil {
		return err
	}
	if reply[0] != pingReply {
		return fmt.Errorf("%w: got %02x", ErrNoReply, reply[0])
	}
	return nil
}

// Write one word into machine memory.
func (s *SerialLoader) Load(addr uint16, word uint32) error {
	_, err := s.port.Write([]byte{
		cmdLoad,
		byte(addr >> 8), byte(addr),
		byte(word >> 16), byte(word >> 8), byte(word),
	})
	return err
}

// Set the test address register, used as the start address.
func (s *SerialLoader) SetAddress(addr uint16) error {
	_, err := s.port.Write([]byte{cmdWriteAddr, byte(addr >> 8), byte(addr)})
	return err
}

// Set the test word register.
func (s *SerialLoader) SetWord(word uint32) error {
	_, err := s.port.Write([]byte{cmdWriteWord, byte(word >> 16), byte(word >> 8), byte(word)})
	return err
}

func (s *SerialLoader) Run() error {
	_, err := s.port.Write([]byte{cmdRun})
	return err
}

func (s *SerialLoader) Stop() error {
	_, err := s.port.Write([]byte{cmdStop})
	return err
}

// Send every populated location of an image in address order, then set
// the start address and optionally start the machine. The CPU is stopped
// for the duration of the load. Returns the number of words sent.
func (s *SerialLoader) SendImage(img *loader.Image, run bool) (int, error) {
	if err := s.Stop(); err != nil {
		return 0, err
	}

	sent := 0
	for _, addr := range img.Addresses() {
		if err := s.Load(addr, img.Get(addr)); err != nil {
			return sent, err
		}
		sent++
	}

	if err := s.SetAddress(img.Start()); err != nil {
		return sent, err
	}
	if run {
		if err := s.Run(); err != nil {
			return sent, err
		}
	}
	slog.Debug("image sent over serial", slog.Int("words", sent))
	return sent, nil
}
