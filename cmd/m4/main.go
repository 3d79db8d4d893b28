// Command m4 runs the m4-style macro processor over files or stdin.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/m4"
)

func main() {
	os.Exit(m4.Run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}
