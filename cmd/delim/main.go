// Command delim checks delimiter-count consistency across a file's lines.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/delim"
)

func main() {
	os.Exit(delim.Run(os.Stdin, os.Stderr, os.Args[1:]))
}
