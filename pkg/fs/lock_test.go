package fs

import (
	"path/filepath"
	"testing"
	"time"
)

func Test_RealFS_Lock_ExcludesSecondAcquire(t *testing.T) {
	fsys := NewReal()
	path := filepath.Join(t.TempDir(), "data.ht")

	lock, err := fsys.Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	_, err = fsys.LockTimeout(path, 50*time.Millisecond)
	if err == nil {
		t.Fatalf("second Lock succeeded, want timeout")
	}

	if err := lock.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lock2, err := fsys.LockTimeout(path, time.Second)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}

	if err := lock2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
