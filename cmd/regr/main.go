// Command regr applies a regex find/replace to one or more files.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/regr"
)

func main() {
	os.Exit(regr.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
