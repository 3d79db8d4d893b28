// Command capybara backs up files into a content-addressed store,
// deduplicating identical content across runs.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/capybara"
)

func main() {
	os.Exit(capybara.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
