// Package freq implements the freq command: a byte-frequency histogram over
// stdin or one or more files.
package freq

import (
	"fmt"
	"io"
	"os"
	"unicode"

	flag "github.com/spf13/pflag"

	"github.com/avsandbox/spotkit/pkg/charfreq"
)

// Run parses args and tabulates byte frequencies, printing results sorted
// by count descending then byte value ascending.
func Run(stdin io.Reader, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("freq", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: freq [file...]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	files := flagSet.Args()

	counter := charfreq.New()

	if len(files) == 0 {
		if err := counter.Add(stdin); err != nil {
			fmt.Fprintf(errOut, "freq: %v\n", err)

			return 1
		}
	} else {
		for _, path := range files {
			if err := addFile(counter, path); err != nil {
				fmt.Fprintf(errOut, "freq: %v\n", err)

				return 1
			}
		}
	}

	for _, e := range counter.Sorted() {
		if unicode.IsGraphic(rune(e.Byte)) && e.Byte < unicode.MaxASCII {
			fmt.Fprintf(out, "%c\t%d\n", e.Byte, e.Count)
		} else {
			fmt.Fprintf(out, "%02X\t%d\n", e.Byte, e.Count)
		}
	}

	return 0
}

func addFile(counter *charfreq.Counter, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return counter.Add(f)
}
