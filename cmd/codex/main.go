package main

import (
	"os"

	"github.com/codex-platform/codex-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
