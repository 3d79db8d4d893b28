// Package charfreq tabulates byte frequencies, the counting core behind the
// freq command. It stays strictly byte-oriented; no UTF-8 decoding.
package charfreq

import (
	"io"
	"sort"
)

// Counter accumulates counts for each of the 256 possible byte values.
type Counter struct {
	counts [256]uint64
}

// New returns an empty Counter.
func New() *Counter {
	return &Counter{}
}

// Write implements io.Writer, counting every byte of p. It never errors.
func (c *Counter) Write(p []byte) (int, error) {
	for _, b := range p {
		c.counts[b]++
	}

	return len(p), nil
}

// Add reads r to completion, counting each byte.
func (c *Counter) Add(r io.Reader) error {
	_, err := io.Copy(c, r)

	return err
}

// Count returns the number of times byte b has been seen.
func (c *Counter) Count(b byte) uint64 {
	return c.counts[b]
}

// Total returns the sum of all byte counts seen so far.
func (c *Counter) Total() uint64 {
	var total uint64
	for _, n := range c.counts {
		total += n
	}

	return total
}

// Entry is one byte value and its observed count.
type Entry struct {
	Byte  byte
	Count uint64
}

// Sorted returns every byte with a nonzero count, ordered by count
// descending and then by byte value ascending for ties.
func (c *Counter) Sorted() []Entry {
	entries := make([]Entry, 0, 256)

	for b := 0; b < 256; b++ {
		if c.counts[b] > 0 {
			entries = append(entries, Entry{Byte: byte(b), Count: c.counts[b]})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}

		return entries[i].Byte < entries[j].Byte
	})

	return entries
}
