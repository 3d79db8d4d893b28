package pushbuf_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/avsandbox/spotkit/pkg/pushbuf"
)

func TestUnshiftStr_PopYieldsForwardOrder(t *testing.T) {
	b := pushbuf.New(0)

	if err := b.UnshiftStr("abc"); err != nil {
		t.Fatalf("UnshiftStr: %v", err)
	}

	var got []byte

	for {
		c, eof, err := b.PopOrStdin(false, nil)
		if err != nil {
			t.Fatalf("PopOrStdin: %v", err)
		}

		if eof {
			break
		}

		got = append(got, c)
	}

	if diff := cmp.Diff("abc", string(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIncludeFile_RoundTripsForward(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")

	content := "line one\nline two\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	b := pushbuf.New(0)

	if err := b.IncludeFile(path); err != nil {
		t.Fatalf("IncludeFile: %v", err)
	}

	var got []byte

	for i := 0; i < len(content); i++ {
		c, eof, err := b.PopOrStdin(false, nil)
		if err != nil || eof {
			t.Fatalf("PopOrStdin: c=%v eof=%v err=%v", c, eof, err)
		}

		got = append(got, c)
	}

	_, eof, err := b.PopOrStdin(false, nil)
	if err != nil || !eof {
		t.Fatalf("expected eof after consuming file, got eof=%v err=%v", eof, err)
	}

	if diff := cmp.Diff(content, string(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestGetWord_SplitsIdentifierAndPushesBackTerminator(t *testing.T) {
	input := pushbuf.New(0)

	if err := input.UnshiftStr("foo(bar)"); err != nil {
		t.Fatalf("UnshiftStr: %v", err)
	}

	token, eof, err := pushbuf.GetWord(input, false, nil)
	if err != nil || eof {
		t.Fatalf("GetWord: token=%q eof=%v err=%v", token, eof, err)
	}

	if got, want := string(token), "foo\x00"; got != want {
		t.Fatalf("token=%q, want %q", got, want)
	}

	token, eof, err = pushbuf.GetWord(input, false, nil)
	if err != nil || eof {
		t.Fatalf("GetWord: token=%q eof=%v err=%v", token, eof, err)
	}

	if got, want := string(token), "(\x00"; got != want {
		t.Fatalf("token=%q, want %q", got, want)
	}
}

func TestGetWord_DiscardsCarriageReturn(t *testing.T) {
	input := pushbuf.New(0)

	if err := input.UnshiftStr("a\rb"); err != nil {
		t.Fatalf("UnshiftStr: %v", err)
	}

	token, _, err := pushbuf.GetWord(input, false, nil)
	if err != nil {
		t.Fatalf("GetWord: %v", err)
	}

	if got, want := string(token), "ab\x00"; got != want {
		t.Fatalf("token=%q, want %q", got, want)
	}
}

func TestAtomicWriteTo_WritesContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	b := pushbuf.New(0)
	if err := b.PushStr("hello"); err != nil {
		t.Fatalf("PushStr: %v", err)
	}

	if err := b.AtomicWriteTo(path); err != nil {
		t.Fatalf("AtomicWriteTo: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if string(got) != "hello" {
		t.Fatalf("content=%q, want %q", got, "hello")
	}
}

func TestEsyscmd_InjectsOutputWithTrailingNUL(t *testing.T) {
	input := pushbuf.New(0)
	b := pushbuf.New(0)

	if err := b.Esyscmd(input, "printf ok"); err != nil {
		t.Fatalf("Esyscmd: %v", err)
	}

	var got []byte

	for {
		c, eof, err := input.PopOrStdin(false, nil)
		if err != nil {
			t.Fatalf("PopOrStdin: %v", err)
		}

		if eof {
			break
		}

		got = append(got, c)
	}

	if diff := cmp.Diff("ok\x00", string(got)); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEsyscmd_FailsOnNonZeroExit(t *testing.T) {
	input := pushbuf.New(0)
	b := pushbuf.New(0)

	err := b.Esyscmd(input, "exit 1")
	if err == nil {
		t.Fatalf("Esyscmd: expected error on non-zero exit")
	}
}

func TestTransfer_AppendsAndResetsSource(t *testing.T) {
	src := pushbuf.New(0)
	dst := pushbuf.New(0)

	if err := src.PushStr("hi"); err != nil {
		t.Fatalf("PushStr: %v", err)
	}

	if err := dst.PushStr("pre-"); err != nil {
		t.Fatalf("PushStr: %v", err)
	}

	if err := src.Transfer(dst); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got, want := string(dst.Bytes()), "pre-hi"; got != want {
		t.Fatalf("dst=%q, want %q", got, want)
	}

	if got := src.Len(); got != 0 {
		t.Fatalf("src.Len()=%d, want 0", got)
	}
}

func TestGrow_HandlesLargePushWithoutCorruption(t *testing.T) {
	b := pushbuf.New(0)

	payload := strings.Repeat("x", 1<<16)

	if err := b.PushStr(payload); err != nil {
		t.Fatalf("PushStr: %v", err)
	}

	if got := string(b.Bytes()); got != payload {
		t.Fatalf("len(got)=%d, want %d", len(got), len(payload))
	}
}
