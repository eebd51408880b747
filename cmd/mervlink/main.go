package main

import (
	"os"

	"github.com/trainyourai/mervlink/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
