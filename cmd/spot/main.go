// Command spot is a line-oriented editor front end over the gap-buffered
// text model.
package main

import (
	"os"

	"github.com/avsandbox/spotkit/cmd/spot"
)

func main() {
	os.Exit(spot.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
