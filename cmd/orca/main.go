package main

import (
	"os"

	"github.com/pablasso/orca/internal/cli"
)

func main() {
	// With no args the root command opens the dashboard.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
