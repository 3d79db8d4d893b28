// Package gapbuf implements the gap-buffered text model (GB) underlying the
// screen editor: two-segment byte array with a movable gap, row tracking,
// marks, regions, sticky-column vertical motion, and atomic persistence.
package gapbuf

import (
	"bytes"
	"errors"

	"github.com/avsandbox/spotkit/pkg/checked"
	"github.com/avsandbox/spotkit/pkg/fs"
)

// ErrNoMark is returned by region operations when no mark is set.
var ErrNoMark = errors.New("gapbuf: no mark set")

// ErrNoFilename is returned by WriteFile when the buffer has no associated
// path.
var ErrNoFilename = errors.New("gapbuf: buffer has no filename")

// ErrOverflow is returned when growing the gap would overflow capacity
// accounting.
var ErrOverflow = errors.New("gapbuf: capacity overflow")

const initialCapacity = 64

// Buffer is a gap-buffered text model. The backing array holds [0,g) as
// prefix text, [c,e) as suffix text, and data[e] is a sentinel '\0' that is
// never deleted or moved into the prefix. Cursor index equals g.
type Buffer struct {
	prev, next *Buffer

	filename string

	data       []byte
	g, c, e    int
	r          int
	sc         int
	scSet      bool
	m, mr      int
	mSet       bool
	mod        bool
}

// New returns an empty buffer, optionally named filename (pass "" for an
// unnamed scratch buffer).
func New(filename string) *Buffer {
	b := &Buffer{
		filename: filename,
		data:     make([]byte, initialCapacity),
		g:        0,
		c:        initialCapacity - 1,
		e:        initialCapacity - 1,
		mr:       1,
	}
	b.data[b.e] = 0
	b.next = b
	b.prev = b

	return b
}

// Filename returns the buffer's associated path, or "" if unnamed.
func (b *Buffer) Filename() string { return b.filename }

// SetFilename assigns the buffer's associated path.
func (b *Buffer) SetFilename(name string) { b.filename = name }

// Modified reports whether the buffer has unsaved changes.
func (b *Buffer) Modified() bool { return b.mod }

// Row returns the number of '\n' bytes strictly before the cursor, i.e. the
// 0-based line number of the cursor.
func (b *Buffer) Row() int { return b.r }

// CursorIndex returns the current logical cursor index (g - a, with a=0).
func (b *Buffer) CursorIndex() int { return b.g }

// Len returns the number of text bytes, excluding the gap and sentinel.
func (b *Buffer) Len() int { return b.g + (b.e - b.c) }

// charAt returns the byte at logical index i, which must be in [0, Len()).
func (b *Buffer) charAt(i int) byte {
	if i < b.g {
		return b.data[i]
	}

	return b.data[b.c+(i-b.g)]
}

// String returns the buffer's full text (excluding the sentinel).
func (b *Buffer) String() string {
	var buf bytes.Buffer

	buf.Write(b.data[:b.g])
	buf.Write(b.data[b.c:b.e])

	return buf.String()
}

// growGap ensures at least need free bytes between g and c, reallocating
// and doubling capacity (checked for overflow) if necessary.
func (b *Buffer) growGap(need int) error {
	if b.c-b.g >= need {
		return nil
	}

	suffixLen := b.e - b.c
	curLen := b.g + suffixLen

	newTotal, ok := checked.AddInt(curLen, need)
	if !ok {
		return ErrOverflow
	}

	doubled, ok := checked.MulInt(len(b.data), 2)
	if !ok {
		doubled = newTotal + 1
	}

	newCap := doubled
	if newCap < newTotal+1 {
		newCap = newTotal + 1
	}

	grown := make([]byte, newCap)
	copy(grown, b.data[:b.g])
	newC := newCap - suffixLen - 1
	copy(grown[newC:newC+suffixLen], b.data[b.c:b.e])
	grown[newCap-1] = 0

	b.data = grown
	b.c = newC
	b.e = newCap - 1

	return nil
}

// markMutated clears the mark and marks the buffer modified, per the
// invariant that any text mutation does both.
func (b *Buffer) markMutated() {
	b.mSet = false
	b.m = 0
	b.mr = 1
	b.mod = true
}

// clearSticky drops the remembered sticky column; called at the top of
// every operation other than UpLine/DownLine themselves.
func (b *Buffer) clearSticky() {
	b.scSet = false
}

// Insert inserts ch at the cursor mult times. mult=0 is a no-op success.
func (b *Buffer) Insert(ch byte, mult int) error {
	b.clearSticky()

	if mult <= 0 {
		return nil
	}

	for i := 0; i < mult; i++ {
		if err := b.growGap(1); err != nil {
			return err
		}

		b.data[b.g] = ch
		b.g++

		if ch == '\n' {
			b.r++
		}
	}

	b.markMutated()

	return nil
}

// InsertStr inserts the bytes of s at the cursor, in order.
func (b *Buffer) InsertStr(s string) error {
	b.clearSticky()

	if len(s) == 0 {
		return nil
	}

	if err := b.growGap(len(s)); err != nil {
		return err
	}

	for i := 0; i < len(s); i++ {
		b.data[b.g] = s[i]
		b.g++

		if s[i] == '\n' {
			b.r++
		}
	}

	b.markMutated()

	return nil
}

// Delete removes mult bytes starting at the cursor (from the suffix side).
// The sentinel is never deleted, so deletion stops at end-of-buffer.
func (b *Buffer) Delete(mult int) error {
	b.clearSticky()

	removed := 0

	for removed < mult && b.c < b.e {
		b.c++
		removed++
	}

	if removed > 0 {
		b.markMutated()
	}

	return nil
}

// Backspace removes mult bytes immediately before the cursor (from the
// prefix side).
func (b *Buffer) Backspace(mult int) error {
	b.clearSticky()

	removed := 0

	for removed < mult && b.g > 0 {
		b.g--

		if b.data[b.g] == '\n' {
			b.r--
		}

		removed++
	}

	if removed > 0 {
		b.markMutated()
	}

	return nil
}

// MoveLeft shifts the gap left by mult bytes, moving the cursor backward.
func (b *Buffer) MoveLeft(mult int) {
	b.clearSticky()

	for i := 0; i < mult && b.g > 0; i++ {
		b.g--
		b.c--
		b.data[b.c] = b.data[b.g]

		if b.data[b.c] == '\n' {
			b.r--
		}
	}
}

// MoveRight shifts the gap right by mult bytes, moving the cursor forward.
func (b *Buffer) MoveRight(mult int) {
	b.clearSticky()

	for i := 0; i < mult && b.c < b.e; i++ {
		b.data[b.g] = b.data[b.c]

		if b.data[b.g] == '\n' {
			b.r++
		}

		b.g++
		b.c++
	}
}

// moveToIndex repositions the cursor to logical index target via MoveRight
// when target is after the cursor, or MoveLeft when it is before.
func (b *Buffer) moveToIndex(target int) {
	if target > b.g {
		b.MoveRight(target - b.g)
	} else if target < b.g {
		b.MoveLeft(b.g - target)
	}
}

// StartOfLine moves the cursor to the first byte after the preceding '\n',
// or to index 0.
func (b *Buffer) StartOfLine() {
	b.clearSticky()

	j := b.g
	for j > 0 && b.charAt(j-1) != '\n' {
		j--
	}

	b.moveToIndex(j)
}

// EndOfLine moves the cursor to the byte at or just before the next '\n',
// or to Len().
func (b *Buffer) EndOfLine() {
	b.clearSticky()

	j := b.g
	length := b.Len()

	for j < length && b.charAt(j) != '\n' {
		j++
	}

	b.moveToIndex(j)
}

// StartOfBuffer moves the cursor to index 0.
func (b *Buffer) StartOfBuffer() {
	b.clearSticky()
	b.moveToIndex(0)
}

// EndOfBuffer moves the cursor to Len().
func (b *Buffer) EndOfBuffer() {
	b.clearSticky()
	b.moveToIndex(b.Len())
}

// ColNum returns the 0-based column of the cursor on its current line.
func (b *Buffer) ColNum() int {
	j := b.g
	col := 0

	for j > 0 && b.charAt(j-1) != '\n' {
		j--
		col++
	}

	return col
}

const (
	// WordPassthrough leaves traversed word characters unchanged.
	WordPassthrough = iota
	// WordUppercase uppercases traversed word characters.
	WordUppercase
	// WordLowercase lowercases traversed word characters.
	WordLowercase
)

func isWordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func toUpperByte(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}

	return c
}

func toLowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}

	return c
}

// ForwardWord skips to the end of the mult-th word forward, optionally
// transforming traversed word bytes' case as it goes (mode is one of
// [WordPassthrough], [WordUppercase], [WordLowercase]). Only ASCII
// alphanumerics are considered word material.
func (b *Buffer) ForwardWord(mode, mult int) {
	b.clearSticky()

	changed := false

	for n := 0; n < mult; n++ {
		for b.c < b.e && !isWordByte(b.data[b.c]) {
			b.moveRightOne()
		}

		for b.c < b.e && isWordByte(b.data[b.c]) {
			switch mode {
			case WordUppercase:
				if up := toUpperByte(b.data[b.c]); up != b.data[b.c] {
					b.data[b.c] = up
					changed = true
				}
			case WordLowercase:
				if lo := toLowerByte(b.data[b.c]); lo != b.data[b.c] {
					b.data[b.c] = lo
					changed = true
				}
			}

			b.moveRightOne()
		}
	}

	if changed {
		b.markMutated()
	}
}

func (b *Buffer) moveRightOne() {
	if b.c >= b.e {
		return
	}

	b.data[b.g] = b.data[b.c]

	if b.data[b.g] == '\n' {
		b.r++
	}

	b.g++
	b.c++
}

func (b *Buffer) moveLeftOne() {
	if b.g == 0 {
		return
	}

	b.g--
	b.c--
	b.data[b.c] = b.data[b.g]

	if b.data[b.c] == '\n' {
		b.r--
	}
}

// BackwardWord skips back over non-word bytes then over the mult-th word,
// landing at its start.
func (b *Buffer) BackwardWord(mult int) {
	b.clearSticky()

	for n := 0; n < mult; n++ {
		for b.g > 0 && !isWordByte(b.data[b.g-1]) {
			b.moveLeftOne()
		}

		for b.g > 0 && isWordByte(b.data[b.g-1]) {
			b.moveLeftOne()
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}

// UpLine moves the cursor up mult lines, snapping toward the sticky column
// (recorded on the first vertical move) but never past an intervening '\n'.
func (b *Buffer) UpLine(mult int) {
	if !b.scSet {
		b.sc = b.ColNum()
		b.scSet = true
	}

	j := b.g

	for n := 0; n < mult; n++ {
		lineStart := j
		for lineStart > 0 && b.charAt(lineStart-1) != '\n' {
			lineStart--
		}

		if lineStart == 0 {
			j = lineStart

			break
		}

		prevLineEnd := lineStart - 1

		prevLineStart := prevLineEnd
		for prevLineStart > 0 && b.charAt(prevLineStart-1) != '\n' {
			prevLineStart--
		}

		j = prevLineStart + minInt(b.sc, prevLineEnd-prevLineStart)
	}

	b.moveToIndex(j)
	b.scSet = true // moveToIndex clears it; keep it for the next vertical move
}

// DownLine moves the cursor down mult lines, snapping toward the sticky
// column as in [Buffer.UpLine].
func (b *Buffer) DownLine(mult int) {
	if !b.scSet {
		b.sc = b.ColNum()
		b.scSet = true
	}

	j := b.g
	length := b.Len()

	for n := 0; n < mult; n++ {
		lineEnd := j
		for lineEnd < length && b.charAt(lineEnd) != '\n' {
			lineEnd++
		}

		if lineEnd >= length {
			j = lineEnd

			break
		}

		nextLineStart := lineEnd + 1

		nextLineEnd := nextLineStart
		for nextLineEnd < length && b.charAt(nextLineEnd) != '\n' {
			nextLineEnd++
		}

		j = nextLineStart + minInt(b.sc, nextLineEnd-nextLineStart)
	}

	b.moveToIndex(j)
	b.scSet = true // moveToIndex clears it; keep it for the next vertical move
}

// TrimClean deletes any byte outside {printable graph, space, tab,
// newline}, trims trailing whitespace, ensures exactly one trailing
// newline, and restores the cursor to the closest feasible position.
func (b *Buffer) TrimClean() error {
	oldIdx := b.g

	clean := make([]byte, 0, b.Len())

	for i := 0; i < b.Len(); i++ {
		c := b.charAt(i)
		if isCleanByte(c) {
			clean = append(clean, c)
		}
	}

	end := len(clean)
	for end > 0 && isTrailingWhitespace(clean[end-1]) {
		end--
	}

	clean = append(clean[:end], '\n')

	b.g = 0
	b.c = b.e
	b.r = 0

	if err := b.InsertStr(string(clean)); err != nil {
		return err
	}

	target := oldIdx
	if target > b.Len() {
		target = b.Len()
	}

	b.moveToIndex(target)

	return nil
}

func isCleanByte(c byte) bool {
	return c == '\t' || c == '\n' || (c >= 0x20 && c <= 0x7e)
}

func isTrailingWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// WriteFile streams the buffer's contents to its filename using the
// atomic-write protocol, preserving an existing file's mode, and clears
// [Buffer.Modified] on success. A sibling lock file coordinates the write
// against other processes editing the same path.
func (b *Buffer) WriteFile() error {
	if b.filename == "" {
		return ErrNoFilename
	}

	fsys := fs.NewReal()

	lock, err := fsys.Lock(b.filename)
	if err != nil {
		return err
	}
	defer lock.Close()

	var content bytes.Buffer

	content.Write(b.data[:b.g])
	content.Write(b.data[b.c:b.e])

	writer := fs.NewAtomicWriter(fsys)

	if err := writer.WriteWithDefaults(b.filename, bytes.NewReader(content.Bytes())); err != nil {
		return err
	}

	b.mod = false

	return nil
}
