package main

import (
	"os"

	"github.com/conneroisu/xcboot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
