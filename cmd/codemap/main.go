package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/codemap-dev/codemap/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	// Optional .env for CODEMAP_FILE / CODEMAP_EDITOR; absence is fine.
	_ = godotenv.Load()

	if err := cli.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
