package main

import (
	"os"

	"github.com/artis-laminates/ledgerimport/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
