package main

import (
	"os"

	"github.com/geoquad/tilebuilder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
