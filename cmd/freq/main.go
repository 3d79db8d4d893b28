// Command freq tabulates byte frequencies over stdin or one or more files.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/freq"
)

func main() {
	os.Exit(freq.Run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}
