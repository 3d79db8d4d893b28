// Package m4 implements the m4 command: a thin argv/stdin front end over
// pkg/m4engine.
package m4

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/avsandbox/spotkit/pkg/m4engine"
)

// Run parses args and drives an Engine to completion. With files given, it
// concatenates them (in argv order) as input; with none, it reads stdin.
func Run(stdin io.Reader, out, errOut io.Writer, args []string) int {
	flagSet := flag.NewFlagSet("m4", flag.ContinueOnError)
	flagSet.SetOutput(errOut)

	defines := flagSet.StringArrayP("define", "D", nil, "predefine name=value (repeatable)")

	flagSet.Usage = func() {
		fmt.Fprintln(errOut, "Usage: m4 [-D name=value]... [file...]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	engine := m4engine.NewEngine(out, errOut)

	for _, d := range *defines {
		name, val := splitDefine(d)
		engine.Define(name, val)
	}

	files := flagSet.Args()

	var stdinReader *byteReader
	if len(files) == 0 {
		stdinReader = &byteReader{r: stdin}
	}

	if err := engine.Run(files, len(files) == 0, stdinReader); err != nil {
		fmt.Fprintf(errOut, "m4: %v\n", err)

		return 1
	}

	return 0
}

func splitDefine(s string) (name, val string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:]
		}
	}

	return s, ""
}

// byteReader adapts an io.Reader to io.ByteReader for the engine's stdin
// fallback path.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	_, err := io.ReadFull(b.r, b.buf[:])
	if err != nil {
		return 0, err
	}

	return b.buf[0], nil
}
