package main

import (
	"os"

	"github.com/spec-kit/support-desk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
