// Package symtab implements the open-chained name -> definition hash table
// (HT) shared by the m4 engine (macro table) and the backup tool (SHA-256
// dedup index).
package symtab

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/avsandbox/spotkit/pkg/fs"
)

// ErrNotFound is returned by Delete when the name is absent.
var ErrNotFound = errors.New("symtab: not found")

// ErrTruncated is returned by Load when a persisted file ends mid-record.
var ErrTruncated = errors.New("symtab: truncated persistence file")

// entry is one chain link. Def is a pointer so nil represents "no
// definition" (the built-in marker), distinct from an empty string.
type entry struct {
	name string
	def  *string
	next *entry
}

// Table is a fixed-bucket-count, open-chained hash table keyed by name.
type Table struct {
	buckets []*entry
	count   int
}

// New returns a table with the given bucket count. The bucket count does
// not change as entries are added; callers size it for their expected load
// (16384 for the m4 engine, 262144 for the backup tool's dedup index).
func New(numBuckets int) *Table {
	if numBuckets < 1 {
		numBuckets = 1
	}

	return &Table{buckets: make([]*entry, numBuckets)}
}

// hash computes djb2: h = 5381, then h = h*33 ^ byte for every byte.
func hash(name string) uint64 {
	h := uint64(5381)

	for i := 0; i < len(name); i++ {
		h = h*33 ^ uint64(name[i])
	}

	return h
}

func (t *Table) bucketIndex(name string) int {
	return int(hash(name) % uint64(len(t.buckets)))
}

// Lookup reports whether name exists.
func (t *Table) Lookup(name string) bool {
	return t.find(name) != nil
}

func (t *Table) find(name string) *entry {
	for e := t.buckets[t.bucketIndex(name)]; e != nil; e = e.next {
		if e.name == name {
			return e
		}
	}

	return nil
}

// GetDef returns the definition for name. ok is false if name is absent;
// hasDef is false if name exists but carries no definition (a built-in
// marker).
func (t *Table) GetDef(name string) (def string, hasDef bool, ok bool) {
	e := t.find(name)
	if e == nil {
		return "", false, false
	}

	if e.def == nil {
		return "", false, true
	}

	return *e.def, true, true
}

// Upsert inserts name with def if absent, or replaces def in place
// (preserving chain position) if present. A nil def represents "no
// definition" (built-in marker).
func (t *Table) Upsert(name string, def *string) {
	if e := t.find(name); e != nil {
		e.def = def

		return
	}

	idx := t.bucketIndex(name)
	t.buckets[idx] = &entry{name: name, def: def, next: t.buckets[idx]}
	t.count++
}

// Delete unlinks name's entry. Returns ErrNotFound if absent.
func (t *Table) Delete(name string) error {
	idx := t.bucketIndex(name)

	var prev *entry

	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.name == name {
			if prev == nil {
				t.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}

			t.count--

			return nil
		}

		prev = e
	}

	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Count returns the number of entries.
func (t *Table) Count() int { return t.count }

// Names returns every entry name in bucket-then-chain traversal order (the
// order Persist writes them in). The order is not sorted; callers needing a
// stable display order should sort it themselves.
func (t *Table) Names() []string {
	names := make([]string, 0, t.count)

	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			names = append(names, e.name)
		}
	}

	return names
}

// HistDist writes a histogram of chain lengths to w: lengths 0-99 exact,
// then a final line bucketing every chain of length >= 100. Format is
// "entries_per_bucket number_of_buckets\n" per line.
func (t *Table) HistDist(w io.Writer) error {
	const overflowBucket = 100

	counts := make(map[int]int)

	for _, head := range t.buckets {
		length := 0
		for e := head; e != nil; e = e.next {
			length++
		}

		if length >= overflowBucket {
			counts[overflowBucket]++
		} else {
			counts[length]++
		}
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%d %d\n", k, counts[k]); err != nil {
			return err
		}
	}

	return nil
}

// Persist writes name\0def\0 pairs for every entry, via the atomic-write
// protocol, terminated by a trailing \0 (an empty def is an immediate
// second \0).
func (t *Table) Persist(path string) error {
	var buf bytes.Buffer

	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			buf.WriteString(e.name)
			buf.WriteByte(0)

			if e.def != nil {
				buf.WriteString(*e.def)
			}

			buf.WriteByte(0)
		}
	}

	writer := fs.NewAtomicWriter(fs.NewReal())

	return writer.WriteWithDefaults(path, bytes.NewReader(buf.Bytes()))
}

// Load reads a file shaped as concatenated name\0def\0 pairs and upserts
// each into t. Every loaded def is a real (possibly empty) string, never a
// built-in marker.
func (t *Table) Load(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled by design
	if err != nil {
		return fmt.Errorf("symtab: load %q: %w", path, err)
	}

	return t.LoadBytes(data)
}

// LoadBytes parses data as concatenated name\0def\0 pairs.
func (t *Table) LoadBytes(data []byte) error {
	r := bufio.NewReader(bytes.NewReader(data))

	for {
		name, err := r.ReadString(0)
		if errors.Is(err, io.EOF) {
			if name != "" {
				return ErrTruncated
			}

			return nil
		}

		if err != nil {
			return err
		}

		name = name[:len(name)-1]

		def, err := r.ReadString(0)
		if err != nil {
			return ErrTruncated
		}

		def = def[:len(def)-1]

		t.Upsert(name, &def)
	}
}
