package symtab_test

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/avsandbox/spotkit/pkg/symtab"
)

func strp(s string) *string { return &s }

func TestUpsert_Idempotent(t *testing.T) {
	a := symtab.New(16)
	a.Upsert("k", strp("v"))
	a.Upsert("k", strp("v"))

	b := symtab.New(16)
	b.Upsert("k", strp("v"))

	if diff := cmp.Diff(b.Names(), a.Names()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	def, hasDef, ok := a.GetDef("k")
	if !ok || !hasDef || def != "v" {
		t.Fatalf("GetDef = %q, %v, %v, want v, true, true", def, hasDef, ok)
	}
}

func TestDelete_ThenLookupAbsent(t *testing.T) {
	tbl := symtab.New(16)
	tbl.Upsert("k", strp("v"))

	if err := tbl.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if tbl.Lookup("k") {
		t.Fatalf("Lookup(k) = true after delete")
	}

	if err := tbl.Delete("k"); !errors.Is(err, symtab.ErrNotFound) {
		t.Fatalf("Delete second time: %v, want ErrNotFound", err)
	}
}

func TestUpsert_NilDefIsBuiltinMarker(t *testing.T) {
	tbl := symtab.New(16)
	tbl.Upsert("define", nil)

	def, hasDef, ok := tbl.GetDef("define")
	if !ok || hasDef || def != "" {
		t.Fatalf("GetDef = %q, %v, %v, want '', false, true", def, hasDef, ok)
	}
}

func TestPersistAndLoad_RoundTrips(t *testing.T) {
	tbl := symtab.New(16)
	tbl.Upsert("a", strp("1"))
	tbl.Upsert("b", strp(""))
	tbl.Upsert("c", strp("hello"))

	path := filepath.Join(t.TempDir(), "syms.ht")

	if err := tbl.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded := symtab.New(16)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	names := loaded.Names()
	sort.Strings(names)

	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	def, hasDef, ok := loaded.GetDef("c")
	if !ok || !hasDef || def != "hello" {
		t.Fatalf("GetDef(c) = %q, %v, %v", def, hasDef, ok)
	}
}

func TestLoadBytes_TruncatedRecordFails(t *testing.T) {
	tbl := symtab.New(16)

	err := tbl.LoadBytes([]byte("name\x00partialdef"))
	if !errors.Is(err, symtab.ErrTruncated) {
		t.Fatalf("LoadBytes = %v, want ErrTruncated", err)
	}
}

func TestHistDist_BucketsChainLengths(t *testing.T) {
	tbl := symtab.New(1)

	for i := 0; i < 5; i++ {
		tbl.Upsert(string(rune('a'+i)), strp("x"))
	}

	var buf structBuf

	if err := tbl.HistDist(&buf); err != nil {
		t.Fatalf("HistDist: %v", err)
	}

	if got, want := buf.String(), "5 1\n"; got != want {
		t.Fatalf("HistDist output = %q, want %q", got, want)
	}
}

type structBuf struct{ data []byte }

func (b *structBuf) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)

	return len(p), nil
}

func (b *structBuf) String() string { return string(b.data) }
