// Package sha256store implements a content-addressed file store: files are
// hashed with SHA-256 and saved under their hex digest, with a snapshot
// record mapping original paths to content paths and a dedup index shared
// across snapshots.
package sha256store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/avsandbox/spotkit/pkg/fs"
	"github.com/avsandbox/spotkit/pkg/symtab"
)

// indexBuckets sizes the dedup hash table; it only ever holds one entry per
// distinct digest ever seen, so a fixed size is fine for realistic corpora.
const indexBuckets = 262144

// Digest streams r and returns its SHA-256 digest as lowercase hex, without
// buffering the whole input in memory.
func Digest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("sha256store: digest: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestFile streams path's contents through Digest.
func DigestFile(fsys fs.FS, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("sha256store: open %q: %w", path, err)
	}
	defer f.Close()

	return Digest(f)
}

// Store is a directory with files/ (content-addressed, one file per unique
// digest), snapshots/ (one record file per backup run), and a root-level ht
// file: the serialized dedup index of every digest seen across all runs.
type Store struct {
	fsys fs.FS
	aw   *fs.AtomicWriter
	root string
	seen *symtab.Table
}

// ErrNotStore is returned by Open when root exists but ht is missing.
var ErrNotStore = errors.New("sha256store: not a store (missing ht index)")

// Init creates a new, empty store at root: files/, snapshots/, and an empty
// ht index.
func Init(fsys fs.FS, root string) (*Store, error) {
	for _, sub := range []string{"files", "snapshots"} {
		if err := fsys.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, fmt.Errorf("sha256store: init %q: %w", sub, err)
		}
	}

	s := &Store{fsys: fsys, aw: fs.NewAtomicWriter(fsys), root: root, seen: symtab.New(indexBuckets)}

	if err := s.persistIndex(); err != nil {
		return nil, err
	}

	return s, nil
}

// Open loads an existing store's dedup index from root/ht.
func Open(fsys fs.FS, root string) (*Store, error) {
	htPath := filepath.Join(root, "ht")

	exists, err := fsys.Exists(htPath)
	if err != nil {
		return nil, fmt.Errorf("sha256store: stat %q: %w", htPath, err)
	}

	if !exists {
		return nil, ErrNotStore
	}

	seen := symtab.New(indexBuckets)
	if err := seen.Load(htPath); err != nil {
		return nil, fmt.Errorf("sha256store: load index: %w", err)
	}

	return &Store{fsys: fsys, aw: fs.NewAtomicWriter(fsys), root: root, seen: seen}, nil
}

// lockIndex acquires an exclusive, cross-process lock on the store's ht
// index, coordinating concurrent backup runs writing into the same store.
func (s *Store) lockIndex() (fs.Locker, error) {
	lock, err := s.fsys.Lock(filepath.Join(s.root, "ht"))
	if err != nil {
		return nil, fmt.Errorf("sha256store: lock index: %w", err)
	}

	return lock, nil
}

func (s *Store) persistIndex() error {
	if err := s.seen.Persist(filepath.Join(s.root, "ht")); err != nil {
		return fmt.Errorf("sha256store: persist index: %w", err)
	}

	return nil
}

// contentPath returns the on-disk path for a given digest within files/.
func (s *Store) contentPath(digest string) string {
	return filepath.Join(s.root, "files", digest)
}

// Put hashes srcPath's contents and, if its digest has not been seen before,
// copies it into files/ under that digest. It always returns the digest and
// the resulting content path, whether or not the copy was skipped as a
// duplicate.
func (s *Store) Put(srcPath string) (digest, contentPath string, err error) {
	digest, err = DigestFile(s.fsys, srcPath)
	if err != nil {
		return "", "", err
	}

	contentPath = s.contentPath(digest)

	lock, err := s.lockIndex()
	if err != nil {
		return "", "", err
	}
	defer lock.Close()

	if s.seen.Lookup(digest) {
		return digest, contentPath, nil
	}

	f, err := s.fsys.Open(srcPath)
	if err != nil {
		return "", "", fmt.Errorf("sha256store: open %q: %w", srcPath, err)
	}
	defer f.Close()

	if err := s.aw.WriteWithDefaults(contentPath, f); err != nil {
		return "", "", fmt.Errorf("sha256store: store %q: %w", contentPath, err)
	}

	s.seen.Upsert(digest, nil)

	if err := s.persistIndex(); err != nil {
		return "", "", err
	}

	return digest, contentPath, nil
}

// Snapshot is one backup run's record of source path -> content path.
type Snapshot struct {
	entries []SnapshotEntry
}

// SnapshotEntry is one source path's mapping to a content-addressed path.
type SnapshotEntry struct {
	SourcePath  string
	ContentPath string
}

// Add records one source path's mapping to a content-addressed path.
func (sn *Snapshot) Add(sourcePath, contentPath string) {
	sn.entries = append(sn.entries, SnapshotEntry{SourcePath: sourcePath, ContentPath: contentPath})
}

// Entries returns the snapshot's (sourcePath, contentPath) pairs in record
// order.
func (sn *Snapshot) Entries() []SnapshotEntry {
	return sn.entries
}

// Write serializes the snapshot as concatenated source_path\0content_path\0
// records under snapshots/, named by the given run timestamp, and returns
// the path written.
func (s *Store) Write(sn *Snapshot, runTime time.Time) (string, error) {
	var buf []byte

	for _, e := range sn.entries {
		buf = append(buf, e.SourcePath...)
		buf = append(buf, 0)
		buf = append(buf, e.ContentPath...)
		buf = append(buf, 0)
	}

	name := runTime.UTC().Format("20060102T150405.000000000Z")
	path := filepath.Join(s.root, "snapshots", name)

	lock, err := s.lockIndex()
	if err != nil {
		return "", err
	}
	defer lock.Close()

	if err := s.aw.WriteWithDefaults(path, bytes.NewReader(buf)); err != nil {
		return "", fmt.Errorf("sha256store: write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot parses a snapshot file written by Write.
func LoadSnapshot(fsys fs.FS, path string) (*Snapshot, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sha256store: read snapshot %q: %w", path, err)
	}

	sn := &Snapshot{}

	for len(data) > 0 {
		srcEnd := bytes.IndexByte(data, 0)
		if srcEnd < 0 {
			return nil, fmt.Errorf("sha256store: snapshot %q: %w", path, errTruncated)
		}

		src := string(data[:srcEnd])
		data = data[srcEnd+1:]

		contentEnd := bytes.IndexByte(data, 0)
		if contentEnd < 0 {
			return nil, fmt.Errorf("sha256store: snapshot %q: %w", path, errTruncated)
		}

		content := string(data[:contentEnd])
		data = data[contentEnd+1:]

		sn.Add(src, content)
	}

	return sn, nil
}

var errTruncated = errors.New("truncated record")

