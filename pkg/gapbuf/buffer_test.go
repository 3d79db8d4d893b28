package gapbuf_test

import (
	"testing"

	"github.com/avsandbox/spotkit/pkg/gapbuf"
)

func TestInsert_TextReadableAfterInsert(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("hello"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	if got := b.String(); got != "hello" {
		t.Fatalf("String() = %q, want hello", got)
	}

	if !b.Modified() {
		t.Fatalf("Modified() = false, want true after insert")
	}
}

func TestInsert_RowTracksNewlinesBeforeCursor(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("a\nb\nc"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	if b.Row() != 2 {
		t.Fatalf("Row() = %d, want 2", b.Row())
	}

	b.MoveLeft(3) // back across "b\nc"

	if b.Row() != 1 {
		t.Fatalf("Row() after MoveLeft = %d, want 1", b.Row())
	}
}

func TestDelete_StopsAtSentinelNeverRemovesIt(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("ab"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()

	if err := b.Delete(100); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got := b.String(); got != "" {
		t.Fatalf("String() = %q, want empty", got)
	}
}

func TestMoveLeftRight_RoundTripsCursorAndRow(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("line1\nline2\nline3"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	end := b.CursorIndex()

	b.StartOfBuffer()
	b.MoveRight(end)

	if b.CursorIndex() != end {
		t.Fatalf("CursorIndex() = %d, want %d", b.CursorIndex(), end)
	}

	if b.Row() != 2 {
		t.Fatalf("Row() = %d, want 2", b.Row())
	}
}

func TestMutation_ClearsMark(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("hello world"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()
	b.SetMark()

	if !b.MarkSet() {
		t.Fatalf("MarkSet() = false after SetMark")
	}

	if err := b.Insert('x', 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if b.MarkSet() {
		t.Fatalf("MarkSet() = true after mutation, want cleared")
	}
}

func TestStartEndOfLine(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("foo\nbar\nbaz"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()
	b.DownLine(1)
	b.StartOfLine()

	if b.ColNum() != 0 {
		t.Fatalf("ColNum() = %d, want 0", b.ColNum())
	}

	b.EndOfLine()

	if b.ColNum() != 3 {
		t.Fatalf("ColNum() = %d, want 3", b.ColNum())
	}
}

func TestUpDownLine_StickyColumnClampsToShorterLine(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("longline\nhi\nlongline"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()
	b.EndOfLine() // col 8 on "longline"
	b.DownLine(1) // lands on "hi", clamped to col 2

	if b.ColNum() != 2 {
		t.Fatalf("ColNum() on short line = %d, want 2", b.ColNum())
	}

	b.DownLine(1) // sticky column 8 remembered, back to col 8 on third line

	if b.ColNum() != 8 {
		t.Fatalf("ColNum() after returning to long line = %d, want 8", b.ColNum())
	}
}

func TestForwardWord_UppercaseTransformsWordBytesOnly(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("  hello, world!"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()
	b.ForwardWord(gapbuf.WordUppercase, 1)

	if got := b.String(); got != "  HELLO, world!" {
		t.Fatalf("String() = %q, want %q", got, "  HELLO, world!")
	}
}

func TestBackwardWord_LandsAtWordStart(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("foo bar baz"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.EndOfBuffer()
	b.BackwardWord(1)

	if got := b.ColNum(); got != 8 {
		t.Fatalf("ColNum() = %d, want 8 (start of baz)", got)
	}
}

func TestTrimClean_StripsControlBytesAndEnsuresSingleTrailingNewline(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("hello\x01world   \n\n\n"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	if err := b.TrimClean(); err != nil {
		t.Fatalf("TrimClean: %v", err)
	}

	if got := b.String(); got != "helloworld\n" {
		t.Fatalf("String() = %q, want %q", got, "helloworld\n")
	}
}

func TestMatchBracket_FindsPartnerAndLeavesCursorOnFailure(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("(foo (bar) baz)"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()

	if !b.MatchBracket() {
		t.Fatalf("MatchBracket: expected match")
	}

	if b.ColNum() != 14 {
		t.Fatalf("ColNum() = %d, want 14 (closing paren)", b.ColNum())
	}

	b.StartOfBuffer()
	b.MoveRight(1) // onto 'f', not a bracket

	if b.MatchBracket() {
		t.Fatalf("MatchBracket: expected no match on non-bracket")
	}

	if b.ColNum() != 1 {
		t.Fatalf("cursor moved on failed match: ColNum() = %d, want 1", b.ColNum())
	}
}

func TestRegionOps_CopyCutDeletePaste(t *testing.T) {
	src := gapbuf.New("")
	clip := gapbuf.New("")

	if err := src.InsertStr("hello world"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	src.StartOfBuffer()
	src.SetMark()
	src.MoveRight(5) // region covers "hello"

	if err := src.CopyRegion(clip); err != nil {
		t.Fatalf("CopyRegion: %v", err)
	}

	if got := clip.String(); got != "hello" {
		t.Fatalf("clip = %q, want hello", got)
	}

	if got := src.String(); got != "hello world" {
		t.Fatalf("src mutated by CopyRegion: %q", got)
	}

	src.StartOfBuffer()
	src.SetMark()
	src.MoveRight(6)

	if err := src.DeleteRegion(); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}

	if got := src.String(); got != "world" {
		t.Fatalf("src = %q, want world", got)
	}

	dest := gapbuf.New("")
	if err := dest.Paste(clip, 2); err != nil {
		t.Fatalf("Paste: %v", err)
	}

	if got := dest.String(); got != "hellohello" {
		t.Fatalf("dest = %q, want hellohello", got)
	}
}

func TestCutToEOL_RemovesRestOfLine(t *testing.T) {
	b := gapbuf.New("")
	clip := gapbuf.New("")

	if err := b.InsertStr("keep this, drop this\nnext line"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()
	b.MoveRight(len("keep this,"))

	if err := b.CutToEOL(clip); err != nil {
		t.Fatalf("CutToEOL: %v", err)
	}

	if got := b.String(); got != "keep this,\nnext line" {
		t.Fatalf("b = %q", got)
	}

	if got := clip.String(); got != " drop this" {
		t.Fatalf("clip = %q, want %q", got, " drop this")
	}
}

func TestForwardSearchLiteral_FindsStrictlyAfterCursor(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("foo bar foo baz"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()

	if !b.ForwardSearchLiteral([]byte("foo")) {
		t.Fatalf("ForwardSearchLiteral: expected match")
	}

	if b.CursorIndex() != 8 {
		t.Fatalf("CursorIndex() = %d, want 8 (second foo)", b.CursorIndex())
	}

	if b.ForwardSearchLiteral([]byte("zzz")) {
		t.Fatalf("ForwardSearchLiteral: expected no match")
	}
}

func TestForwardSearchRegex_MovesCursorToMatchStart(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("abc 123 def"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()

	start, end, ok, err := b.ForwardSearchRegex(`\d+`, false)
	if err != nil {
		t.Fatalf("ForwardSearchRegex: %v", err)
	}

	if !ok || start != 4 || end != 7 {
		t.Fatalf("ForwardSearchRegex = (%d,%d,%v), want (4,7,true)", start, end, ok)
	}

	if b.CursorIndex() != start {
		t.Fatalf("CursorIndex() = %d, want %d", b.CursorIndex(), start)
	}
}

func TestParseReplaceSpec_ArbitraryDelimiter(t *testing.T) {
	find, replace, err := gapbuf.ParseReplaceSpec("/foo/bar/")
	if err != nil {
		t.Fatalf("ParseReplaceSpec: %v", err)
	}

	if find != "foo" || replace != "bar" {
		t.Fatalf("ParseReplaceSpec = (%q,%q), want (foo,bar)", find, replace)
	}

	find, replace, err = gapbuf.ParseReplaceSpec("#a.b#c#")
	if err != nil {
		t.Fatalf("ParseReplaceSpec: %v", err)
	}

	if find != "a.b" || replace != "c" {
		t.Fatalf("ParseReplaceSpec = (%q,%q), want (a.b,c)", find, replace)
	}
}

func TestRegexReplaceRegion_ReplacesOnlyWithinRegion(t *testing.T) {
	b := gapbuf.New("")

	if err := b.InsertStr("foo foo\nfoo foo"); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	b.StartOfBuffer()
	b.SetMark()
	b.MoveRight(7) // first line only

	if err := b.RegexReplaceRegion("/foo/bar/", true); err != nil {
		t.Fatalf("RegexReplaceRegion: %v", err)
	}

	if got := b.String(); got != "bar bar\nfoo foo" {
		t.Fatalf("String() = %q", got)
	}
}

func TestGrowGap_LargeInsertPreservesContent(t *testing.T) {
	b := gapbuf.New("")

	big := make([]byte, 0, 10000)
	for i := 0; i < 10000; i++ {
		big = append(big, byte('a'+i%26))
	}

	if err := b.InsertStr(string(big)); err != nil {
		t.Fatalf("InsertStr: %v", err)
	}

	if got := b.String(); got != string(big) {
		t.Fatalf("String() mismatch after large insert, len=%d want %d", len(got), len(big))
	}
}

func TestRing_KillAdvancesAndReportsEmpty(t *testing.T) {
	a := gapbuf.New("a")
	ring := gapbuf.NewRing(a)

	b := gapbuf.New("b")
	ring.Add(b)

	if ring.Active() != b {
		t.Fatalf("Active() after Add should be the new buffer")
	}

	if empty := ring.Kill(); empty {
		t.Fatalf("Kill() reported empty with one buffer remaining")
	}

	if ring.Active() != a {
		t.Fatalf("Active() after killing b should be a")
	}

	if empty := ring.Kill(); !empty {
		t.Fatalf("Kill() on last buffer should report empty")
	}
}
