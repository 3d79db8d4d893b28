// Package lsha256 implements the lsha256 command: prints the SHA-256
// digest of each argument file.
package lsha256

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/avsandbox/spotkit/pkg/fs"
	"github.com/avsandbox/spotkit/pkg/sha256store"
)

// Run parses args and prints "hexdigest path" for each file argument.
func Run(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("lsha256", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: lsha256 file...")
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

	for _, path := range files {
		digest, err := sha256store.DigestFile(fsys, path)
		if err != nil {
			fmt.Fprintf(errOut, "lsha256: %v\n", err)

			return 1
		}

		fmt.Fprintf(out, "%s %s\n", digest, path)
	}

	return 0
}
