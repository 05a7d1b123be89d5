// Command vellum is a small demonstration CLI over the vellum engine:
// it is not the primary way to use the package (most hosts import
// github.com/mtharden/vellum directly), but it exercises the full
// surface from a terminal.
package main

import (
	"os"

	"github.com/mtharden/vellum/cmd/vellum/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
