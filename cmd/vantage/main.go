package main

import (
	"os"

	"github.com/wonny/vantage/backend/cmd/vantage/commands"
)

// main is the entry point for the Vantage CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/vantage [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
