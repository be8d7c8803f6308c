package main

import (
	"os"

	"github.com/brandlens/brandlens/cmd/brandlensctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
