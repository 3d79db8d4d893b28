package gapbuf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avsandbox/spotkit/pkg/rx"
)

// ErrEmptyReplaceSpec is returned by ParseReplaceSpec for a spec shorter
// than a delimiter byte.
var ErrEmptyReplaceSpec = errors.New("gapbuf: empty replace spec")

// ErrMissingDelimiter is returned by ParseReplaceSpec when the closing
// delimiter is absent.
var ErrMissingDelimiter = errors.New("gapbuf: missing delimiter in replace spec")

// buildBadCharTable returns the Quick-Search (Sunday) bad-character shift
// table for pattern: 256 entries initialized to len(pattern)+1, then
// bad[pattern[i]] = len(pattern)-i for each i.
func buildBadCharTable(pattern []byte) [256]int {
	var bad [256]int

	n := len(pattern)
	for i := range bad {
		bad[i] = n + 1
	}

	for i := 0; i < n; i++ {
		bad[pattern[i]] = n - i
	}

	return bad
}

// ForwardSearchLiteral scans strictly after the cursor for pattern using
// the Quick-Search algorithm. On success it moves the cursor to the match
// start and returns true; otherwise the cursor is left unchanged.
func (b *Buffer) ForwardSearchLiteral(pattern []byte) bool {
	n := len(pattern)
	if n == 0 {
		return false
	}

	bad := buildBadCharTable(pattern)

	textLen := b.Len()
	pos := b.g + 1

	for pos+n <= textLen {
		matched := true

		for i := 0; i < n; i++ {
			if b.charAt(pos+i) != pattern[i] {
				matched = false

				break
			}
		}

		if matched {
			b.moveToIndex(pos)

			return true
		}

		if pos+n >= textLen {
			break
		}

		pos += bad[b.charAt(pos+n)]
	}

	return false
}

// suffixAfterCursor returns the bytes strictly after the cursor, truncated
// at the first embedded NUL (regex primitives are NUL-terminated).
func (b *Buffer) suffixAfterCursor() []byte {
	start := b.g + 1
	if start > b.Len() {
		return nil
	}

	out := make([]byte, 0, b.Len()-start)

	for i := start; i < b.Len(); i++ {
		c := b.charAt(i)
		if c == 0 {
			break
		}

		out = append(out, c)
	}

	return out
}

// ForwardSearchRegex compiles and searches for pattern strictly after the
// cursor. On success it moves the cursor to the match start and returns
// the match's [start,end) logical indices and true.
func (b *Buffer) ForwardSearchRegex(pattern string, nlSensitive bool) (start, end int, ok bool, err error) {
	prog, err := rx.Compile(pattern)
	if err != nil {
		return 0, 0, false, err
	}

	text := b.suffixAfterCursor()

	m, found := prog.Find(text, 0, nlSensitive)
	if !found {
		return 0, 0, false, nil
	}

	base := b.g + 1
	absStart := base + m.Start
	absEnd := base + m.End

	b.moveToIndex(absStart)

	return absStart, absEnd, true, nil
}

// ParseReplaceSpec parses a "Dfind Dreplace D"-style spec, where D is an
// arbitrary delimiter byte chosen as spec[0] and the middle D separates
// the find and replace halves. A trailing delimiter is optional.
func ParseReplaceSpec(spec string) (find, replace string, err error) {
	if len(spec) < 1 {
		return "", "", ErrEmptyReplaceSpec
	}

	delim := spec[0]
	rest := spec[1:]

	idx := strings.IndexByte(rest, delim)
	if idx < 0 {
		return "", "", ErrMissingDelimiter
	}

	find = rest[:idx]
	replace = rest[idx+1:]
	replace = strings.TrimSuffix(replace, string(delim))

	return find, replace, nil
}

func stripNUL(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}

	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}

		return r
	}, s)
}

// RegexReplaceRegion parses spec as a delimiter-bounded find/replace pair,
// then runs a regex replace over the text between the mark and the
// cursor, replacing that region's contents in place.
func (b *Buffer) RegexReplaceRegion(spec string, nlSensitive bool) error {
	find, replace, err := ParseReplaceSpec(spec)
	if err != nil {
		return err
	}

	lo, hi, ok := b.regionBounds()
	if !ok {
		return ErrNoMark
	}

	cleaned := stripNUL(b.regionString(lo, hi))

	prog, err := rx.Compile(find)
	if err != nil {
		return err
	}

	result, err := prog.Replace([]byte(cleaned), replace, nlSensitive)
	if err != nil {
		return fmt.Errorf("regex replace region: %w", err)
	}

	b.moveToIndex(lo)

	if err := b.Delete(hi - lo); err != nil {
		return err
	}

	return b.InsertStr(result)
}
