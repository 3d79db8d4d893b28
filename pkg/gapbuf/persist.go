package gapbuf

import "os"

// InsertFile reads path and appends its contents to the right of the gap
// (the suffix), unlike Insert/InsertStr which write to the left of the gap.
// The cursor and row count are left untouched; any mark is cleared, since
// the shift invalidates a mark recorded on the suffix side.
func (b *Buffer) InsertFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if len(content) == 0 {
		return nil
	}

	b.clearSticky()

	if err := b.growGap(len(content)); err != nil {
		return err
	}

	b.c -= len(content)
	copy(b.data[b.c:b.c+len(content)], content)

	b.markMutated()

	return nil
}
