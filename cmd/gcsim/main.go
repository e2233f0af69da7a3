package main

import (
	"os"

	"github.com/leftmike/gcsim/cmd/gcsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
