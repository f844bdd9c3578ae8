package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Best effort: a missing .env just means secrets come from the real
	// environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
