package main

import (
	"os"

	"github.com/msto63/fx/cmd/fxc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
