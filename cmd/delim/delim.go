// Package delim implements the delim command: checks that every line of a
// file has the same count of a given one-byte delimiter as the first line.
package delim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

var (
	errDelimiterLength = errors.New("delimiter must be exactly one byte")
	errDelimiterIsNL   = errors.New("delimiter must not be newline")
	errInconsistent    = errors.New("inconsistent delimiter count")
)

// Run parses args and checks delimiter consistency across files (or stdin
// if none are given), reporting the first inconsistent line of each input to
// errOut; checking of that input stops there.
func Run(stdin io.Reader, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("delim", flag.ContinueOnError)
	flagSet.SetOutput(errOut)
	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: delim delimiter [file...]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	rest := flagSet.Args()
	if len(rest) < 1 {
		flagSet.Usage()

		return 1
	}

	delim, err := parseDelimiter(rest[0])
	if err != nil {
		fmt.Fprintf(errOut, "delim: %v\n", err)

		return 1
	}

	files := rest[1:]
	if len(files) == 0 {
		return checkReader("stdin", stdin, delim, errOut)
	}

	exit := 0

	for _, path := range files {
		if code := checkFile(path, delim, errOut); code != 0 {
			exit = code
		}
	}

	return exit
}

// parseDelimiter accepts a literal single byte, or the escapes \t and \0.
func parseDelimiter(s string) (byte, error) {
	switch s {
	case `\t`:
		return '\t', nil
	case `\0`:
		return 0, nil
	}

	if len(s) != 1 {
		return 0, errDelimiterLength
	}

	if s[0] == '\n' {
		return 0, errDelimiterIsNL
	}

	return s[0], nil
}

func checkFile(path string, delim byte, errOut io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(errOut, "delim: %v\n", err)

		return 1
	}
	defer f.Close()

	return checkReader(path, f, delim, errOut)
}

func checkReader(name string, r io.Reader, delim byte, errOut io.Writer) int {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	firstCount := -1
	row := 1
	sawAnyLine := false

	for scanner.Scan() {
		sawAnyLine = true

		count := 0

		for _, b := range scanner.Bytes() {
			if b == delim {
				count++
			}
		}

		if firstCount == -1 {
			firstCount = count
		} else if count != firstCount {
			fmt.Fprintf(errOut, "%s:%d: %v: expected %d, found %d\n", name, row, errInconsistent, firstCount, count)

			return 1
		}

		row++
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "delim: %s: %v\n", name, err)

		return 1
	}

	if sawAnyLine && firstCount == 0 {
		fmt.Fprintf(errOut, "%s: warning: no delimiter characters were found\n", name)
	}

	return 0
}
