package main

import (
	"os"

	"github.com/premarket-labs/otc-coordinator-svc/internal/cli"
)

func main() {
	if !cli.Run(os.Args) {
		os.Exit(1)
	}
}
