// Package capybara implements the capybara command: content-addressed
// backup of a set of files into a sha256store.Store, deduplicating
// byte-identical content across runs.
package capybara

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/avsandbox/spotkit/pkg/fs"
	"github.com/avsandbox/spotkit/pkg/sha256store"
)

// Run parses args and backs up the given files into the store rooted at
// storeDir (created if absent), writing a snapshot record, and printing a
// one-line summary per file to out.
func Run(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("capybara", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	storeDir := flagSet.StringP("store", "s", ".capybara", "backup store directory")

	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: capybara [-s store] file...")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	files := flagSet.Args()
	if len(files) == 0 {
		flagSet.Usage()

		return 1
	}

	fsys := fs.NewReal()

	store, err := openOrInit(fsys, *storeDir)
	if err != nil {
		fmt.Fprintf(errOut, "capybara: %v\n", err)

		return 1
	}

	snapshot := &sha256store.Snapshot{}

	for _, src := range files {
		absSrc, err := filepath.Abs(src)
		if err != nil {
			fmt.Fprintf(errOut, "capybara: %v\n", err)

			return 1
		}

		digest, contentPath, err := store.Put(src)
		if err != nil {
			fmt.Fprintf(errOut, "capybara: %v\n", err)

			return 1
		}

		snapshot.Add(absSrc, contentPath)
		fmt.Fprintf(out, "%s %s\n", digest, src)
	}

	snapPath, err := store.Write(snapshot, runTime())
	if err != nil {
		fmt.Fprintf(errOut, "capybara: %v\n", err)

		return 1
	}

	fmt.Fprintf(out, "snapshot: %s\n", snapPath)

	return 0
}

func openOrInit(fsys fs.FS, dir string) (*sha256store.Store, error) {
	store, err := sha256store.Open(fsys, dir)
	if err == nil {
		return store, nil
	}

	return sha256store.Init(fsys, dir)
}

// runTime is a seam so tests can eventually inject a deterministic clock;
// production always stamps the wall-clock run time.
var runTime = func() time.Time { return time.Now() }
