package main

import (
	"os"

	"github.com/wonny/snapboard/cmd/snapboard/commands"
)

// main is the entry point for the snapboard CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/snapboard [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
