// Package pushbuf implements the shared push-back / output byte buffer (B)
// used as macro argument sink, tokenizer scratch, output diversion, and
// keyboard look-ahead. Appending doubles as both "push for later read" and
// "emit output"; which interpretation applies is up to the caller.
package pushbuf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/avsandbox/spotkit/pkg/checked"
	"github.com/avsandbox/spotkit/pkg/fs"
)

// ErrOverflow is returned when growing the buffer would overflow its size
// accounting.
var ErrOverflow = errors.New("pushbuf: capacity overflow")

// ErrCommandFailed is returned by [Buf.Esyscmd] when the child process did
// not exit cleanly.
var ErrCommandFailed = errors.New("pushbuf: command did not exit cleanly")

// Buf is a growable byte array with a write cursor at i that doubles as a
// push-back stack. It never shrinks implicitly.
type Buf struct {
	data []byte
	i    int
}

// New returns a buffer with an initial backing capacity. A zero or negative
// capacity is treated as zero.
func New(initialCapacity int) *Buf {
	if initialCapacity < 0 {
		initialCapacity = 0
	}

	return &Buf{data: make([]byte, initialCapacity)}
}

// Len reports the number of occupied bytes, i.
func (b *Buf) Len() int { return b.i }

// Bytes returns the occupied prefix of the buffer. The slice is owned by b
// and must not be retained across further mutation.
func (b *Buf) Bytes() []byte { return b.data[:b.i] }

// Reset empties the buffer without shrinking its backing array.
func (b *Buf) Reset() { b.i = 0 }

// grow ensures room for n additional bytes, doubling capacity (plus the
// requested amount) as needed.
func (b *Buf) grow(n int) error {
	need, ok := checked.AddInt(b.i, n)
	if !ok {
		return ErrOverflow
	}

	if need <= len(b.data) {
		return nil
	}

	newCap, ok := checked.MulInt(len(b.data), 2)
	if ok {
		newCap, ok = checked.AddInt(newCap, n)
	}

	if !ok || newCap < need {
		newCap = need
	}

	grown := make([]byte, newCap)
	copy(grown, b.data[:b.i])
	b.data = grown

	return nil
}

// Push appends one byte, growing the buffer if needed.
func (b *Buf) Push(c byte) error {
	if err := b.grow(1); err != nil {
		return err
	}

	b.data[b.i] = c
	b.i++

	return nil
}

// PushStr appends the bytes of s.
func (b *Buf) PushStr(s string) error {
	return b.PushMem([]byte(s))
}

// PushMem appends p.
func (b *Buf) PushMem(p []byte) error {
	if err := b.grow(len(p)); err != nil {
		return err
	}

	copy(b.data[b.i:], p)
	b.i += len(p)

	return nil
}

// UnshiftStr pushes the bytes of s in reverse order, so that the next pop
// returns s[0]. This is how m4 re-injects expanded text into its input
// stream.
func (b *Buf) UnshiftStr(s string) error {
	return b.UnshiftMem([]byte(s))
}

// UnshiftMem is the []byte form of [Buf.UnshiftStr].
func (b *Buf) UnshiftMem(p []byte) error {
	if err := b.grow(len(p)); err != nil {
		return err
	}

	for i := len(p) - 1; i >= 0; i-- {
		b.data[b.i] = p[i]
		b.i++
	}

	return nil
}

// PopOrStdin is the sole primitive the tokenizer uses: if occupied, return
// the top byte and shrink by one; otherwise, if readStdin is set, read one
// byte from r; otherwise report end-of-stream.
func (b *Buf) PopOrStdin(readStdin bool, r io.ByteReader) (c byte, eof bool, err error) {
	if b.i > 0 {
		b.i--

		return b.data[b.i], false, nil
	}

	if !readStdin {
		return 0, true, nil
	}

	c, err = r.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, true, nil
	}

	if err != nil {
		return 0, false, err
	}

	return c, false, nil
}

// Transfer appends all of b's occupied bytes onto dst and resets b to
// empty.
func (b *Buf) Transfer(dst *Buf) error {
	if err := dst.PushMem(b.Bytes()); err != nil {
		return err
	}

	b.Reset()

	return nil
}

// IncludeFile reserves space for path's contents and writes them into the
// buffer in reverse order starting at i, then advances i by the file size.
// Popping afterward yields the file's bytes in forward order.
func (b *Buf) IncludeFile(path string) error {
	content, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled by design
	if err != nil {
		return fmt.Errorf("pushbuf: include %q: %w", path, err)
	}

	return b.UnshiftMem(content)
}

// AtomicWriteTo writes the buffer's occupied bytes to path using the
// temp-file + fsync + rename protocol in [fs.AtomicWriter], preserving an
// existing file's mode if present.
func (b *Buf) AtomicWriteTo(path string) error {
	writer := fs.NewAtomicWriter(fs.NewReal())

	opts := writer.DefaultOptions()

	return writer.Write(path, bytesReader(b.Bytes()), opts)
}

func bytesReader(p []byte) io.Reader {
	return &byteSliceReader{data: p}
}

type byteSliceReader struct {
	data []byte
	pos  int
}

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}

	n := copy(p, r.data[r.pos:])
	r.pos += n

	return n, nil
}

// Esyscmd runs cmd via a shell, accumulates its stdout discarding embedded
// NULs, requires a clean exit, and unshifts the collected output (with a
// trailing NUL) into input.
func (b *Buf) Esyscmd(input *Buf, cmd string) error {
	command := exec.Command("/bin/sh", "-c", cmd)

	out, err := command.Output()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommandFailed, cmd, err)
	}

	clean := make([]byte, 0, len(out))

	for _, c := range out {
		if c != 0 {
			clean = append(clean, c)
		}
	}

	clean = append(clean, 0)

	return input.UnshiftMem(clean)
}

// GetWord empties token and reads the next word from input: a letter- or
// underscore-led alphanumeric identifier, or else a single byte. The
// trailing byte that terminated an identifier is pushed back into input.
// Carriage returns are silently discarded. Returns eof=true only when
// input was exhausted before any byte was read.
func GetWord(input *Buf, readStdin bool, r io.ByteReader) (token []byte, eof bool, err error) {
	var word []byte

	for {
		c, isEOF, readErr := input.PopOrStdin(readStdin, r)
		if readErr != nil {
			return nil, false, readErr
		}

		if isEOF {
			if len(word) == 0 {
				return nil, true, nil
			}

			return append(word, 0), false, nil
		}

		if c == '\r' {
			continue
		}

		word = append(word, c)

		break
	}

	if !isIdentLead(word[0]) {
		return append(word, 0), false, nil
	}

	for {
		c, isEOF, readErr := input.PopOrStdin(readStdin, r)
		if readErr != nil {
			return nil, false, readErr
		}

		if isEOF {
			break
		}

		if c == '\r' {
			continue
		}

		if !isIdentCont(c) {
			if err := input.Push(c); err != nil {
				return nil, false, err
			}

			break
		}

		word = append(word, c)
	}

	return append(word, 0), false, nil
}

func isIdentLead(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentLead(c) || (c >= '0' && c <= '9')
}

// StdinByteReader adapts [os.Stdin] (or any io.Reader) to the io.ByteReader
// shape [Buf.PopOrStdin] and [GetWord] expect.
func StdinByteReader(r io.Reader) io.ByteReader {
	return bufio.NewReader(r)
}
