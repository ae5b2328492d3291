package main

import (
	"os"

	"github.com/cardrl/scopone-training/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
