package randname_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avsandbox/spotkit/pkg/randname"
)

func TestGenerate_LengthAndAlphabet(t *testing.T) {
	s, err := randname.Generate(16)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(s) != 16 {
		t.Fatalf("len(s) = %d, want 16", len(s))
	}

	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, c := range s {
		if !strings.ContainsRune(alphabet, c) {
			t.Fatalf("Generate produced non-alphanumeric byte %q", c)
		}
	}
}

func TestGenerate_ZeroLength(t *testing.T) {
	s, err := randname.Generate(0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if s != "" {
		t.Fatalf("Generate(0) = %q, want empty", s)
	}
}

func TestMakeTemp_CreatesFileWithSubstitutedSuffix(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "scratchXXXXXX")

	path, err := randname.MakeTemp(template)
	if err != nil {
		t.Fatalf("MakeTemp: %v", err)
	}

	if !strings.HasPrefix(path, filepath.Join(dir, "scratch")) {
		t.Fatalf("path = %q, want prefix %q", path, filepath.Join(dir, "scratch"))
	}

	if strings.HasSuffix(path, "XXXXXX") {
		t.Fatalf("path = %q, placeholder not substituted", path)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("MakeTemp did not create file: %v", err)
	}
}

func TestMakeTemp_NoPlaceholderIsError(t *testing.T) {
	_, err := randname.MakeTemp(filepath.Join(t.TempDir(), "noplaceholder"))
	if err != randname.ErrNoPlaceholder {
		t.Fatalf("err = %v, want ErrNoPlaceholder", err)
	}
}

func TestHasPlaceholder(t *testing.T) {
	if !randname.HasPlaceholder("fooXXX") {
		t.Fatalf("HasPlaceholder(fooXXX) = false, want true")
	}

	if randname.HasPlaceholder("foo") {
		t.Fatalf("HasPlaceholder(foo) = true, want false")
	}
}
