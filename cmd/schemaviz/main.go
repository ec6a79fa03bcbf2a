package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/eleven-am/schemaviz/internal/cli"
	"github.com/eleven-am/schemaviz/internal/logger"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute() error {
	loadEnv()
	defer func() { _ = logger.Sync() }()

	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true
	return cmd.Execute()
}

// loadEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Config().Warn("Failed to load .env file", "error", err)
	}
}
