package main

import (
	"os"

	"github.com/foodctl/foodctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
