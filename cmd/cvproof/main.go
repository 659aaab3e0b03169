package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dchernyak/cvproof/internal/cli"
)

func main() {
	// A .env file is optional; deployments set the environment directly.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
