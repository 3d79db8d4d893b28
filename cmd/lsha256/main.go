// Command lsha256 prints the SHA-256 digest of each argument file.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/lsha256"
)

func main() {
	os.Exit(lsha256.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
