package gapbuf

// SetMark records the current cursor position and row as the mark.
func (b *Buffer) SetMark() {
	b.m = b.g
	b.mr = b.r
	b.mSet = true
}

// ClearMark drops the mark without affecting text or cursor.
func (b *Buffer) ClearMark() {
	b.mSet = false
	b.m = 0
	b.mr = 1
}

// MarkSet reports whether a mark is currently set.
func (b *Buffer) MarkSet() bool { return b.mSet }

// SwitchCursorAndMark swaps the cursor and the mark, moving the cursor to
// the mark's position.
func (b *Buffer) SwitchCursorAndMark() error {
	if !b.mSet {
		return ErrNoMark
	}

	oldCursor, oldRow := b.g, b.r
	b.moveToIndex(b.m)
	b.m, b.mr = oldCursor, oldRow

	return nil
}

// regionBounds returns the [lo, hi) logical index span between the cursor
// and the mark, ordered low to high.
func (b *Buffer) regionBounds() (lo, hi int, ok bool) {
	if !b.mSet {
		return 0, 0, false
	}

	lo, hi = b.g, b.m
	if lo > hi {
		lo, hi = hi, lo
	}

	return lo, hi, true
}

// regionString returns the text in [lo, hi) as a string.
func (b *Buffer) regionString(lo, hi int) string {
	buf := make([]byte, 0, hi-lo)
	for i := lo; i < hi; i++ {
		buf = append(buf, b.charAt(i))
	}

	return string(buf)
}

// RegionToStr returns the text between the cursor and the mark.
func (b *Buffer) RegionToStr() (string, error) {
	lo, hi, ok := b.regionBounds()
	if !ok {
		return "", ErrNoMark
	}

	return b.regionString(lo, hi), nil
}

// CopyRegion appends the text between the cursor and the mark to dst,
// without modifying the source buffer.
func (b *Buffer) CopyRegion(dst *Buffer) error {
	lo, hi, ok := b.regionBounds()
	if !ok {
		return ErrNoMark
	}

	s := b.regionString(lo, hi)

	dst.moveToIndex(dst.Len())

	return dst.InsertStr(s)
}

// DeleteRegion deletes the text between the cursor and the mark. An empty
// region with the mark set is a no-op success.
func (b *Buffer) DeleteRegion() error {
	lo, hi, ok := b.regionBounds()
	if !ok {
		return ErrNoMark
	}

	if lo == hi {
		return nil
	}

	b.moveToIndex(lo)

	return b.Delete(hi - lo)
}

// CutRegion copies the region to dst, then deletes it from b.
func (b *Buffer) CutRegion(dst *Buffer) error {
	if err := b.CopyRegion(dst); err != nil {
		return err
	}

	return b.DeleteRegion()
}

// CutToEOL sets the mark at the cursor, moves to end-of-line, and cuts the
// resulting region into dst.
func (b *Buffer) CutToEOL(dst *Buffer) error {
	b.SetMark()
	b.EndOfLine()

	return b.CutRegion(dst)
}

// CutToSOL sets the mark at the cursor, moves to start-of-line, and cuts
// the resulting region into dst.
func (b *Buffer) CutToSOL(dst *Buffer) error {
	b.SetMark()
	b.StartOfLine()

	return b.CutRegion(dst)
}

// Paste inserts clip's entire contents at the cursor, mult times.
func (b *Buffer) Paste(clip *Buffer, mult int) error {
	content := clip.String()

	for n := 0; n < mult; n++ {
		if err := b.InsertStr(content); err != nil {
			return err
		}
	}

	return nil
}

var bracketPairs = map[byte]byte{'(': ')', '{': '}', '[': ']', '<': '>'}

var bracketPairsReverse = map[byte]byte{')': '(', '}': '{', ']': '[', '>': '<'}

// MatchBracket moves the cursor to the bracket matching the one under it,
// if any; otherwise the cursor is left unchanged and false is returned.
func (b *Buffer) MatchBracket() bool {
	if b.g >= b.Len() {
		return false
	}

	c := b.charAt(b.g)

	if closeFor, isOpen := bracketPairs[c]; isOpen {
		depth := 1

		for i := b.g + 1; i < b.Len(); i++ {
			switch b.charAt(i) {
			case c:
				depth++
			case closeFor:
				depth--

				if depth == 0 {
					b.moveToIndex(i)

					return true
				}
			}
		}

		return false
	}

	if openFor, isClose := bracketPairsReverse[c]; isClose {
		depth := 1

		for i := b.g - 1; i >= 0; i-- {
			switch b.charAt(i) {
			case c:
				depth++
			case openFor:
				depth--

				if depth == 0 {
					b.moveToIndex(i)

					return true
				}
			}
		}

		return false
	}

	return false
}
