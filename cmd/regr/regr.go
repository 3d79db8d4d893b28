// Package regr implements the regr command: regular-expression find and
// replace over one or more files, writing results to stdout.
package regr

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/avsandbox/spotkit/pkg/rx"
)

// Run parses args and executes regr, writing matched-and-replaced file
// contents to out and diagnostics to errOut. It returns a process exit code.
func Run(out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("regr", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: regr find replace file...")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	rest := flagSet.Args()
	if len(rest) < 3 {
		flagSet.Usage()

		return 1
	}

	find, replace, files := rest[0], rest[1], rest[2:]

	prog, err := rx.Compile(find)
	if err != nil {
		fmt.Fprintf(errOut, "regr: %v\n", err)

		return 1
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "regr: %v\n", err)

			return 1
		}

		result, err := prog.Replace(data, replace, true)
		if err != nil {
			fmt.Fprintf(errOut, "regr: %v\n", err)

			return 1
		}

		fmt.Fprint(out, result)
	}

	return 0
}
